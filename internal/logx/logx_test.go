package logx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	l, sync, err := New("debug", true)
	require.NoError(t, err)
	require.NotNil(t, sync)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.Same(t, l, zap.L())

	l, _, err = New("nonsense", false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}
