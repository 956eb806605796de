package config

import (
	"fmt"
	"github.com/ariefcatur/go-storefront.git/internal/postgres"
	"os"
	"strconv"
	"strings"
	"time"
)

type PayPal struct {
	ClientID     string
	ClientSecret string
	Env          string // sandbox | live
}

type Stripe struct {
	PublishableKey string
	SecretKey      string
}

type Coinremitter struct {
	APIKey   string
	Password string
	BaseURL  string
	// Addresses per coin; COINREMITTER_ADDRESS fills coins without their own.
	Addresses        map[string]string
	Coins            []string
	InvoiceTTL       time.Duration
	SimBias          float64
	SimSeed          uint64
	SimDelay         time.Duration
	SimBlockInterval time.Duration
}

// Live is true when real API credentials are present; otherwise demo mode.
func (c Coinremitter) Live() bool { return c.APIKey != "" && c.Password != "" }

type Mastercard struct {
	MerchantID string
	Username   string
	Password   string
}

type Config struct {
	HTTPAddr     string
	AssetsDir    string
	ServiceName  string
	LogLevel     string
	LogDev       bool
	PostgresDSN  string
	Postgres     postgres.Options
	RedisAddr    string
	KafkaBrokers []string

	Providers []string
	Currency  string

	PayPal       PayPal
	Stripe       Stripe
	Coinremitter Coinremitter
	Mastercard   Mastercard

	GCPProject string

	SweeperGroup   string
	SweeperWorkers int
}

// Kosong = fitur dimatikan: REDIS_ADDR -> memory store, POSTGRES_DSN -> katalog bawaan, KAFKA_BROKERS -> event off.
func Load() Config {
	coins := upper(splitCSV(getenv("CRYPTO_COINS", "BTC,ETH,LTC,DOGE,USDT")))
	return Config{
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		AssetsDir:    getenv("ASSETS_DIR", "public/assets"),
		ServiceName:  getenv("SERVICE_NAME", "storefront"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		LogDev:       getbool("LOG_DEV", false),
		PostgresDSN:  getenv("POSTGRES_DSN", ""),
		Postgres: postgres.Options{
			MaxConns:    int32(getint("PG_MAX_CONNS", 4)),
			MinConns:    int32(getint("PG_MIN_CONNS", 1)),
			HealthCheck: getduration("PG_HEALTH_CHECK", 30*time.Second),
		},
		RedisAddr:    getenv("REDIS_ADDR", ""),
		KafkaBrokers: splitCSV(getenv("KAFKA_BROKERS", "")),

		Providers: splitCSV(strings.ToLower(getenv("PAYMENT_PROVIDERS", "paypal,stripe,mastercard,coinremitter"))),
		Currency:  strings.ToUpper(getenv("CURRENCY", "USD")),

		PayPal: PayPal{
			ClientID:     getenv("PAYPAL_CLIENT_ID", ""),
			ClientSecret: getenv("PAYPAL_CLIENT_SECRET", ""),
			Env:          strings.ToLower(getenv("PAYPAL_ENV", "sandbox")),
		},
		Stripe: Stripe{
			PublishableKey: getenv("STRIPE_PUBLISHABLE_KEY", ""),
			SecretKey:      getenv("STRIPE_SECRET_KEY", ""),
		},
		Coinremitter: Coinremitter{
			APIKey:           getenv("COINREMITTER_API_KEY", ""),
			Password:         getenv("COINREMITTER_PASSWORD", ""),
			BaseURL:          getenv("COINREMITTER_BASE_URL", ""),
			Addresses:        addresses(coins, getenv("COINREMITTER_ADDRESS", "")),
			Coins:            coins,
			InvoiceTTL:       getduration("INVOICE_TTL", 15*time.Minute),
			SimBias:          getfloat("CRYPTO_SIM_BIAS", 0.7),
			SimSeed:          uint64(getint("CRYPTO_SIM_SEED", 0)),
			SimDelay:         getduration("CRYPTO_SIM_DELAY", 2*time.Minute),
			SimBlockInterval: getduration("CRYPTO_SIM_BLOCK_INTERVAL", 30*time.Second),
		},
		Mastercard: Mastercard{
			MerchantID: getenv("MASTERCARD_MERCHANT_ID", ""),
			Username:   getenv("MASTERCARD_USERNAME", ""),
			Password:   getenv("MASTERCARD_PASSWORD", ""),
		},

		GCPProject: getenv("GCP_PROJECT", ""),

		SweeperGroup:   getenv("SWEEPER_GROUP", "cart-sweeper"),
		SweeperWorkers: getint("SWEEPER_WORKERS", 4),
	}
}

func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is empty")
	}
	if b := c.Coinremitter.SimBias; b < 0 || b > 1 {
		return fmt.Errorf("CRYPTO_SIM_BIAS must be within [0,1], got %v", b)
	}
	if c.Coinremitter.InvoiceTTL <= 0 {
		return fmt.Errorf("INVOICE_TTL must be positive")
	}
	if c.PayPal.Env != "sandbox" && c.PayPal.Env != "live" {
		return fmt.Errorf("PAYPAL_ENV must be sandbox or live, got %q", c.PayPal.Env)
	}
	if c.Postgres.MaxConns < 1 || c.Postgres.MinConns < 0 || c.Postgres.MinConns > c.Postgres.MaxConns {
		return fmt.Errorf("PG_MIN_CONNS/PG_MAX_CONNS invalid: %d/%d", c.Postgres.MinConns, c.Postgres.MaxConns)
	}
	return nil
}

func (c Config) ProviderEnabled(name string) bool {
	for _, p := range c.Providers {
		if p == name {
			return true
		}
	}
	return false
}

func addresses(coins []string, fallback string) map[string]string {
	out := make(map[string]string, len(coins))
	for _, c := range coins {
		if v := getenv("COINREMITTER_ADDRESS_"+c, fallback); v != "" {
			out[c] = v
		}
	}
	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(k)); err == nil {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(k), 64); err == nil {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func upper(in []string) []string {
	for i := range in {
		in[i] = strings.ToUpper(in[i])
	}
	return in
}
