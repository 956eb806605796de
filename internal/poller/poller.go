// Package poller is the client side of crypto checkout: it re-queries an
// invoice until it settles and counts down to its expiry meanwhile.
package poller

import (
	"context"
	"go.uber.org/zap"
	"time"
)

// StatusClient is satisfied by *Client; tests swap in a fake.
type StatusClient interface {
	Status(ctx context.Context, invoiceID string) (Snapshot, error)
}

type StopReason string

const (
	StopTerminal  StopReason = "terminal"
	StopCountdown StopReason = "countdown_elapsed"
	StopCanceled  StopReason = "canceled"
	StopNotFound  StopReason = "not_found"
)

type Config struct {
	// Interval between status queries (30s).
	Interval time.Duration
	// Tick is the countdown resolution (1s).
	Tick time.Duration
	Now  func() time.Time

	// OnStatus dipanggil setiap status baru masuk, termasuk yang final.
	OnStatus func(Snapshot)
	// OnTick receives the time left until expire_at.
	OnTick  func(remaining time.Duration)
	OnError func(error)
}

type Result struct {
	Last   Snapshot
	Reason StopReason
}

type Poller struct {
	client StatusClient
	cfg    Config
	l      *zap.Logger
}

func New(client StatusClient, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Poller{client: client, cfg: cfg, l: zap.L().Named("poller")}
}

// Run queries immediately, then every Interval, until the invoice is terminal,
// the countdown reaches expire_at (one last query is made), or ctx ends.
// Transient query errors never stop the loop; an unknown invoice does, with
// StopNotFound and the 404 error.
func (p *Poller) Run(ctx context.Context, invoiceID string) (Result, error) {
	res := Result{}
	var missing error
	query := func() bool {
		s, err := p.client.Status(ctx, invoiceID)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			if IsNotFound(err) {
				// tidak ada expire_at yang bisa ditunggu
				missing = err
				return true
			}
			p.l.Warn("status query failed", zap.String("invoice_id", invoiceID), zap.Error(err))
			if p.cfg.OnError != nil {
				p.cfg.OnError(err)
			}
			return false
		}
		res.Last = s
		if p.cfg.OnStatus != nil {
			p.cfg.OnStatus(s)
		}
		return s.Terminal()
	}

	stop := func(reason StopReason) (Result, error) {
		if missing != nil {
			res.Reason = StopNotFound
			return res, missing
		}
		res.Reason = reason
		return res, nil
	}

	if query() {
		return stop(StopTerminal)
	}

	statusT := time.NewTicker(p.cfg.Interval)
	defer statusT.Stop()
	countdown := time.NewTicker(p.cfg.Tick)
	defer countdown.Stop()

	for {
		select {
		case <-ctx.Done():
			res.Reason = StopCanceled
			return res, ctx.Err()
		case <-statusT.C:
			if query() {
				return stop(StopTerminal)
			}
		case <-countdown.C:
			// expire_at belum diketahui kalau query pertama gagal
			if res.Last.ExpireAt.IsZero() {
				continue
			}
			remaining := res.Last.ExpireAt.Sub(p.cfg.Now())
			if remaining < 0 {
				remaining = 0
			}
			if p.cfg.OnTick != nil {
				p.cfg.OnTick(remaining)
			}
			if remaining == 0 {
				if query() {
					return stop(StopTerminal)
				}
				return stop(StopCountdown)
			}
		}
	}
}
