package main

import (
	"context"
	"github.com/ariefcatur/go-storefront.git/internal/cart"
	"github.com/ariefcatur/go-storefront.git/internal/catalog"
	"github.com/ariefcatur/go-storefront.git/internal/config"
	"github.com/ariefcatur/go-storefront.git/internal/events"
	"github.com/ariefcatur/go-storefront.git/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront.git/internal/kafka"
	"github.com/ariefcatur/go-storefront.git/internal/logx"
	"github.com/ariefcatur/go-storefront.git/internal/payments"
	"github.com/ariefcatur/go-storefront.git/internal/payments/coinremitter"
	"github.com/ariefcatur/go-storefront.git/internal/payments/mastercard"
	"github.com/ariefcatur/go-storefront.git/internal/payments/paypal"
	stripepay "github.com/ariefcatur/go-storefront.git/internal/payments/stripe"
	"github.com/ariefcatur/go-storefront.git/internal/postgres"
	"github.com/ariefcatur/go-storefront.git/internal/redisx"
	"github.com/joho/godotenv"
	paypalsdk "github.com/plutov/paypal/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	l, sync, err := logx.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		panic(err)
	}
	defer func() { _ = sync() }()
	if err := cfg.Validate(); err != nil {
		l.Fatal("invalid config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Secret Manager, kalau ada credential yang dirujuk lewat <KEY>_SECRET
	if pending := cfg.PendingSecrets(); len(pending) > 0 {
		if cfg.GCPProject == "" {
			l.Fatal("GCP_PROJECT is required to resolve secrets", zap.Strings("keys", pending))
		}
		sm, err := config.NewSecretManager(ctx, cfg.GCPProject)
		if err != nil {
			l.Fatal("secret manager", zap.Error(err))
		}
		if err := cfg.ResolveSecrets(ctx, sm); err != nil {
			l.Fatal("resolve secrets", zap.Error(err))
		}
		_ = sm.Close()
		l.Info("secrets resolved", zap.Strings("keys", pending))
	}

	// Redis (opsional)
	var rdb *redis.Client
	carts := cart.Store(cart.NewMemoryStore())
	invoices := coinremitter.Store(coinremitter.NewMemoryStore())
	if cfg.RedisAddr != "" {
		rdb = redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			l.Fatal("redis ping", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		carts = cart.NewRedisStore(rdb)
		invoices = coinremitter.NewRedisStore(rdb)
	}

	// Catalog: Postgres kalau ada DSN
	var products catalog.Lister = catalog.Default()
	if cfg.PostgresDSN != "" {
		db, err := postgres.Connect(ctx, cfg.PostgresDSN, cfg.Postgres)
		if err != nil {
			l.Fatal("db connect", zap.Error(err))
		}
		defer db.Close()
		repo := &catalog.Repo{DB: db}
		if err := repo.Init(ctx, catalog.Default()); err != nil {
			l.Fatal("db init", zap.Error(err))
		}
		products = repo
	}

	// Kafka producer (opsional)
	var emitter events.Emitter = events.Nop{}
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, events.TopicPayments, 1024)
		prod.Start(ctx)
		emitter = events.NewKafkaEmitter(prod, cfg.ServiceName)
	}

	// Providers
	var providers []payments.Provider
	var cryptoSvc *coinremitter.Service
	demo := !cfg.Coinremitter.Live()
	if cfg.ProviderEnabled(string(payments.PayPal)) {
		apiBase := paypalsdk.APIBaseSandBox
		if cfg.PayPal.Env == "live" {
			apiBase = paypalsdk.APIBaseLive
		}
		pp, err := paypal.NewProvider(paypal.Config{
			ClientID:     cfg.PayPal.ClientID,
			ClientSecret: cfg.PayPal.ClientSecret,
			APIBase:      apiBase,
		}, payments.NewGuard(payments.PayPal, payments.DefaultGuardConfig()), emitter)
		if err != nil {
			l.Fatal("paypal", zap.Error(err))
		}
		providers = append(providers, pp)
	}
	if cfg.ProviderEnabled(string(payments.Stripe)) {
		providers = append(providers, stripepay.NewProvider(stripepay.Config{
			SecretKey:      cfg.Stripe.SecretKey,
			PublishableKey: cfg.Stripe.PublishableKey,
		}, payments.NewGuard(payments.Stripe, payments.DefaultGuardConfig())))
	}
	if cfg.ProviderEnabled(string(payments.Mastercard)) {
		providers = append(providers, mastercard.NewProvider(mastercard.Config{
			MerchantID: cfg.Mastercard.MerchantID,
			Username:   cfg.Mastercard.Username,
			Password:   cfg.Mastercard.Password,
		}))
	}
	if cfg.ProviderEnabled(string(payments.Coinremitter)) {
		addresses := cfg.Coinremitter.Addresses
		var verifier coinremitter.TransactionVerifier
		if demo {
			verifier = coinremitter.NewSimulatedVerifier(coinremitter.SimConfig{
				Bias:          cfg.Coinremitter.SimBias,
				Delay:         cfg.Coinremitter.SimDelay,
				BlockInterval: cfg.Coinremitter.SimBlockInterval,
				Seed:          cfg.Coinremitter.SimSeed,
			}, nil)
			addresses = coinremitter.DemoAddresses(cfg.Coinremitter.Coins, addresses)
			l.Warn("coinremitter running in demo mode: payments are simulated")
		} else {
			verifier = coinremitter.NewAPIVerifier(coinremitter.APIConfig{
				BaseURL:  cfg.Coinremitter.BaseURL,
				APIKey:   cfg.Coinremitter.APIKey,
				Password: cfg.Coinremitter.Password,
			}, payments.NewGuard(payments.Coinremitter, payments.DefaultGuardConfig()))
		}
		cryptoSvc = coinremitter.NewService(invoices, verifier, coinremitter.DefaultRates(), emitter, coinremitter.Settings{
			Coins:        cfg.Coinremitter.Coins,
			Addresses:    addresses,
			InvoiceTTL:   cfg.Coinremitter.InvoiceTTL,
			FiatCurrency: cfg.Currency,
		})
		providers = append(providers, coinremitter.NewProvider(cryptoSvc))
	}
	reg := payments.NewRegistry(providers...)

	// Handlers
	router := httpx.NewRouter()
	pages := &httpx.PagesHandler{
		Carts:          carts,
		Catalog:        products,
		Registry:       reg,
		Currency:       cfg.Currency,
		StripeKey:      cfg.Stripe.PublishableKey,
		PayPalClientID: cfg.PayPal.ClientID,
		AssetsDir:      cfg.AssetsDir,
	}
	if cryptoSvc != nil {
		pages.Coins = cryptoSvc.Available()
	}
	pages.Register(router)
	(&httpx.CartHandler{Carts: carts, Catalog: products}).Register(router)
	(&httpx.PaymentsHandler{Registry: reg, Carts: carts, Currency: cfg.Currency}).Register(router)
	if cryptoSvc != nil {
		(&httpx.CryptoHandler{Registry: reg, Service: cryptoSvc, Currency: cfg.Currency, Demo: demo}).Register(router)
	}

	// HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.Instrument(router, cfg.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// graceful shutdown
	go func() {
		l.Info("HTTP listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.Any("providers", reg.Enabled()),
			zap.Bool("redis", rdb != nil),
			zap.Bool("kafka", prod != nil),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal("listen", zap.Error(err))
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	l.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close()      // tutup inbox -> flush & close writer
		cancel()          // stop producer loop
		prod.WaitClosed() // drain
	}
}
