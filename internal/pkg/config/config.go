package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Trial    TrialConfig
	Checkout CheckoutConfig
	Client   ClientConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=clearcut"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// TrialConfig sets the free-trial gate. The defaults follow the product's
// launch values: four free removals per 24-hour window.
type TrialConfig struct {
	Credits     int `env:"TRIAL_CREDITS,      default=4"`
	PeriodHours int `env:"TRIAL_PERIOD_HOURS, default=24"`
}

// CheckoutConfig points at the external payment page. MinAmount is in major
// units; the checkout page pre-fills it and the payer may only increase it.
type CheckoutConfig struct {
	URL       string `env:"CHECKOUT_URL,        default=https://buymeacoffee.com/clearcut"`
	MinAmount int    `env:"CHECKOUT_MIN_AMOUNT, default=30"`
}

// ClientConfig configures the client-resident layer: where the backend lives
// and where the durable local records are kept.
type ClientConfig struct {
	APIBaseURL string `env:"API_BASE_URL, default=http://localhost:8080"`
	StateDir   string `env:"STATE_DIR,    default=.clearcut"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
