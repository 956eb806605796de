package payments

import (
	"context"
	"errors"
	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"time"
)

type GuardConfig struct {
	MaxRetries       uint64
	InitialInterval  time.Duration
	MaxInterval      time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		MaxRetries:       3,
		InitialInterval:  200 * time.Millisecond,
		MaxInterval:      2 * time.Second,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// Guard wraps remote provider calls: circuit breaker plus bounded
// exponential retries for network errors only.
type Guard struct {
	provider Name
	cfg      GuardConfig
	cb       *gobreaker.CircuitBreaker[any]
}

func NewGuard(provider Name, cfg GuardConfig) *Guard {
	l := zap.L().Named("guard")
	st := gobreaker.Settings{
		Name:        string(provider),
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// decline / validation bukan tanda provider down
		IsSuccessful: func(err error) bool {
			return err == nil || KindOf(err) != KindNetwork
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn("circuit breaker state changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &Guard{provider: provider, cfg: cfg, cb: gobreaker.NewCircuitBreaker[any](st)}
}

func (g *Guard) State() gobreaker.State { return g.cb.State() }

func Call[T any](ctx context.Context, g *Guard, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	op := func() error {
		res, err := g.cb.Execute(func() (any, error) { return fn(ctx) })
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(NewError(KindNetwork, g.provider, "payment provider temporarily unavailable", err))
			}
			if KindOf(err) == KindNetwork && ctx.Err() == nil {
				return err
			}
			return backoff.Permanent(err)
		}
		if res != nil {
			out = res.(T)
		}
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = g.cfg.InitialInterval
	exp.MaxInterval = g.cfg.MaxInterval
	exp.MaxElapsedTime = 0
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(exp, g.cfg.MaxRetries), ctx))
	if err != nil {
		if KindOf(err) == KindNetwork {
			var pe *Error
			if !errors.As(err, &pe) {
				err = NewError(KindNetwork, g.provider, "payment provider timed out", err)
			}
		}
		var zero T
		return zero, err
	}
	return out, nil
}
