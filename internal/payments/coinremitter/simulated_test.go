package coinremitter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedVerifier_NotVisibleBeforeDelay(t *testing.T) {
	inv := *sampleInvoice("inv-sim")
	clock := &fakeClock{t: inv.CreatedAt.Add(time.Minute)}
	v := NewSimulatedVerifier(SimConfig{Bias: 1, Delay: 2 * time.Minute, BlockInterval: 30 * time.Second, Seed: 7}, clock.Now)

	obs, err := v.FindPayment(context.Background(), inv)
	require.NoError(t, err)
	assert.False(t, obs.Found)
}

func TestSimulatedVerifier_ConfirmationsGrowPerBlock(t *testing.T) {
	inv := *sampleInvoice("inv-sim")
	clock := &fakeClock{t: inv.CreatedAt.Add(2 * time.Minute)}
	v := NewSimulatedVerifier(SimConfig{Bias: 1, Delay: 2 * time.Minute, BlockInterval: 30 * time.Second, Seed: 7}, clock.Now)

	obs, err := v.FindPayment(context.Background(), inv)
	require.NoError(t, err)
	require.True(t, obs.Found)
	assert.Equal(t, 1, obs.Confirmations)
	assert.True(t, obs.Amount.Equal(inv.TotalAmount))
	assert.True(t, hexHash.MatchString(obs.TxHash))

	clock.Advance(65 * time.Second)
	again, err := v.FindPayment(context.Background(), inv)
	require.NoError(t, err)
	assert.Equal(t, 3, again.Confirmations)
	assert.Equal(t, obs.TxHash, again.TxHash)
}

func TestSimulatedVerifier_ZeroBiasNeverFinds(t *testing.T) {
	inv := *sampleInvoice("inv-sim")
	clock := &fakeClock{t: inv.CreatedAt.Add(time.Hour)}
	v := NewSimulatedVerifier(SimConfig{Bias: 0, Delay: time.Minute, BlockInterval: time.Second, Seed: 1}, clock.Now)

	for i := 0; i < 50; i++ {
		obs, err := v.FindPayment(context.Background(), inv)
		require.NoError(t, err)
		assert.False(t, obs.Found)
		obs, err = v.LookupTransaction(context.Background(), inv, btcTx)
		require.NoError(t, err)
		assert.False(t, obs.Found)
	}
}

func TestSimulatedVerifier_SeedIsDeterministic(t *testing.T) {
	inv := *sampleInvoice("inv-sim")
	clock := &fakeClock{t: inv.CreatedAt.Add(time.Hour)}
	cfg := SimConfig{Bias: 0.5, Delay: time.Minute, BlockInterval: time.Second, Seed: 42}
	a := NewSimulatedVerifier(cfg, clock.Now)
	b := NewSimulatedVerifier(cfg, clock.Now)

	for i := 0; i < 20; i++ {
		oa, _ := a.FindPayment(context.Background(), inv)
		ob, _ := b.FindPayment(context.Background(), inv)
		assert.Equal(t, oa.Found, ob.Found)
	}
}

func TestSimulatedVerifier_EVMHashPrefix(t *testing.T) {
	inv := *sampleInvoice("inv-eth")
	inv.Coin = "ETH"
	clock := &fakeClock{t: inv.CreatedAt.Add(time.Hour)}
	v := NewSimulatedVerifier(SimConfig{Bias: 1, Delay: time.Minute, BlockInterval: time.Minute, Seed: 3}, clock.Now)

	obs, err := v.FindPayment(context.Background(), inv)
	require.NoError(t, err)
	assert.True(t, evmHash.MatchString(obs.TxHash))
}

func TestDemoAddresses(t *testing.T) {
	got := DemoAddresses([]string{"BTC", "eth", "XRP"}, map[string]string{"BTC": "bc1qreal"})
	assert.Equal(t, "bc1qreal", got["BTC"], "configured address wins")
	assert.Regexp(t, `^0x[0-9a-f]{40}$`, got["ETH"])
	assert.NotContains(t, got, "XRP")
	assert.Equal(t, got["ETH"], DemoAddresses([]string{"ETH"}, nil)["ETH"])
}
