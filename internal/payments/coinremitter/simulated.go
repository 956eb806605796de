package coinremitter

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math/rand/v2"
	"sync"
	"time"
)

type SimConfig struct {
	// Bias is the chance a lookup reports the payment as found.
	Bias float64
	// Delay before a payment becomes observable, counted from invoice creation.
	Delay time.Duration
	// BlockInterval adds one confirmation per interval after Delay.
	BlockInterval time.Duration
	// Seed 0 means seed from the clock.
	Seed uint64
}

func DefaultSimConfig() SimConfig {
	return SimConfig{Bias: 0.7, Delay: 2 * time.Minute, BlockInterval: 30 * time.Second}
}

// SimulatedVerifier is demo mode only: there is no chain behind it.
type SimulatedVerifier struct {
	cfg SimConfig
	now func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedVerifier(cfg SimConfig, now func() time.Time) *SimulatedVerifier {
	if now == nil {
		now = time.Now
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	if cfg.BlockInterval <= 0 {
		cfg.BlockInterval = 30 * time.Second
	}
	return &SimulatedVerifier{
		cfg: cfg,
		now: now,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (v *SimulatedVerifier) draw() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rng.Float64() < v.cfg.Bias
}

func (v *SimulatedVerifier) confirmations(inv Invoice) (int, bool) {
	elapsed := v.now().Sub(inv.CreatedAt)
	if elapsed < v.cfg.Delay {
		return 0, false
	}
	return 1 + int((elapsed-v.cfg.Delay)/v.cfg.BlockInterval), true
}

func (v *SimulatedVerifier) FindPayment(_ context.Context, inv Invoice) (Observation, error) {
	n, visible := v.confirmations(inv)
	if !visible || !v.draw() {
		return Observation{}, nil
	}
	return Observation{
		Found:         true,
		TxHash:        simulatedHash(inv),
		Amount:        inv.TotalAmount,
		Confirmations: n,
	}, nil
}

func (v *SimulatedVerifier) LookupTransaction(_ context.Context, inv Invoice, hash string) (Observation, error) {
	if !v.draw() {
		return Observation{}, nil
	}
	n, _ := v.confirmations(inv)
	return Observation{Found: true, TxHash: hash, Amount: inv.TotalAmount, Confirmations: n}, nil
}

// simulatedHash stabil per invoice supaya poll berulang lihat tx yang sama.
func simulatedHash(inv Invoice) string {
	sum := sha256.Sum256([]byte(inv.ID + inv.Address))
	h := hex.EncodeToString(sum[:])
	if c, ok := LookupCoin(inv.Coin); ok && c.hashPattern == evmHash {
		return "0x" + h
	}
	return h
}

// DemoAddresses fills in a placeholder deposit address for every coin that
// has none. Nothing watches these addresses; they exist so demo invoices
// render a QR code.
func DemoAddresses(coins []string, have map[string]string) map[string]string {
	out := make(map[string]string, len(coins))
	for k, v := range have {
		out[k] = v
	}
	for _, sym := range coins {
		c, ok := LookupCoin(sym)
		if !ok || out[c.Symbol] != "" {
			continue
		}
		sum := sha256.Sum256([]byte("demo-address:" + c.Symbol))
		h := hex.EncodeToString(sum[:])
		if c.hashPattern == evmHash {
			out[c.Symbol] = "0x" + h[:40]
		} else {
			out[c.Symbol] = "demo" + h[:30]
		}
	}
	return out
}
