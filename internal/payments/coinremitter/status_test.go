package coinremitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusWaiting, StatusWaiting, true},
		{StatusWaiting, StatusPending, true},
		{StatusWaiting, StatusConfirmed, true},
		{StatusWaiting, StatusExpired, true},
		{StatusPending, StatusPending, true},
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusExpired, true},
		{StatusPending, StatusWaiting, false},
		{StatusConfirmed, StatusExpired, false},
		{StatusConfirmed, StatusConfirmed, false},
		{StatusExpired, StatusConfirmed, false},
		{StatusExpired, StatusWaiting, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestCoinHashPatterns(t *testing.T) {
	hex64 := "a3f1c2d4e5b6978812345678901234567890abcdefABCDEF1234567890abcdef"
	btc, _ := LookupCoin("btc")
	eth, _ := LookupCoin("ETH")
	usdt, _ := LookupCoin(" usdt ")

	assert.True(t, btc.ValidHash(hex64))
	assert.False(t, btc.ValidHash("0x"+hex64))
	assert.False(t, btc.ValidHash(hex64[:63]))
	assert.False(t, btc.ValidHash("zz"+hex64[2:]))

	assert.True(t, eth.ValidHash("0x"+hex64))
	assert.False(t, eth.ValidHash(hex64))
	assert.True(t, usdt.ValidHash("0x"+hex64))

	_, ok := LookupCoin("XRP")
	assert.False(t, ok)
	assert.Equal(t, []string{"BTC", "DOGE", "ETH", "LTC", "USDT"}, KnownCoins())
}
