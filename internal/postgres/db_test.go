package postgres

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Apply(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		max, min int32
		health   time.Duration
	}{
		{"defaults", Options{}, 4, 0, 30 * time.Second},
		{"configured", Options{MaxConns: 10, MinConns: 2, HealthCheck: time.Minute}, 10, 2, time.Minute},
		{"min clamped to max", Options{MaxConns: 2, MinConns: 5}, 2, 2, 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := pgxpool.ParseConfig("postgres://u:p@localhost:5432/db")
			require.NoError(t, err)
			tt.opts.apply(cfg)
			assert.Equal(t, tt.max, cfg.MaxConns)
			assert.Equal(t, tt.min, cfg.MinConns)
			assert.Equal(t, tt.health, cfg.HealthCheckPeriod)
		})
	}
}

func TestConnect_BadDSN(t *testing.T) {
	_, err := Connect(t.Context(), "://not a dsn", Options{})
	assert.Error(t, err)
}
