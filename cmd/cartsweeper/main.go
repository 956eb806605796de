package main

import (
	"context"
	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/config"
	"github.com/ariefcatur/go-storefront.git/internal/events"
	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/ariefcatur/go-storefront.git/internal/logx"
	"github.com/ariefcatur/go-storefront.git/internal/redisx"
	"github.com/ariefcatur/go-storefront.git/internal/sweeper"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	l, sync, err := logx.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		panic(err)
	}
	defer func() { _ = sync() }()

	// cart cuma bisa disapu kalau disimpan di Redis
	if cfg.RedisAddr == "" || len(cfg.KafkaBrokers) == 0 {
		l.Fatal("cartsweeper needs REDIS_ADDR and KAFKA_BROKERS")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		l.Fatal("redis ping", zap.Error(err))
	}

	svc := sweeper.New(cart.NewRedisStore(rdb), rdb, cfg.ServiceName+"-cartsweeper")

	// Consumer
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.SweeperGroup, events.TopicPayments, cfg.SweeperWorkers)
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Info("cartsweeper consumer started",
			zap.String("group", cfg.SweeperGroup),
			zap.String("topic", events.TopicPayments),
			zap.Int("workers", cfg.SweeperWorkers),
		)
		if err := cons.Start(ctx, svc.HandlePaymentEvent); err != nil {
			l.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	l.Info("shutting down consumer...")
	cancel()
	<-done
}
