package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// DB stores database connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN returns the postgres connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Dispatch stores dispatch engine settings.
type Dispatch struct {
	BatchSize       int           // couriers solicited per round
	BatchWindow     time.Duration // max wait for an acceptance per batch
	MaxBatches      int           // upper bound on batches per order
	InterBatchDelay time.Duration // cool-off between batches
	PollInterval    time.Duration // order poll interval during the batch wait
	MaxConcurrent   int64         // cap on concurrently running dispatches
	StaleAfter      time.Duration // age at which an unassigned ACCEPTED order is reaped
	BaseURL         string        // base for courier acceptance links
}

// Twilio stores SMS gateway settings. Credentials are opaque to the engine.
type Twilio struct {
	AccountSID string
	AuthToken  string
	FromPhone  string
	Enabled    bool
}

// Kafka stores event transport settings. Empty brokers disable the fast path;
// the outbox poller alone then drives dispatch.
type Kafka struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Outbox stores dispatch outbox poller settings.
type Outbox struct {
	PollInterval time.Duration
	BatchSize    int
}

// RateLimit stores HTTP rate limiting settings.
type RateLimit struct {
	Limit  int
	Window time.Duration
}

// Config stores all service settings.
type Config struct {
	Port      int
	PprofPort int
	DB        DB
	Dispatch  Dispatch
	Twilio    Twilio
	Kafka     Kafka
	Outbox    Outbox
	RateLimit RateLimit
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:      envInt("PORT", DefaultPort()),
		PprofPort: envInt("PPROF_PORT", DefaultPprofPort()),
		DB: DB{
			Host: envStr("DB_HOST", defaultDB.Host),
			Port: envStr("DB_PORT", defaultDB.Port),
			User: envStr("DB_USER", defaultDB.User),
			Pass: envStr("DB_PASS", defaultDB.Pass),
			Name: envStr("DB_NAME", defaultDB.Name),
		},
		Dispatch: Dispatch{
			BatchSize:       envInt("DISPATCH_BATCH_SIZE", defaultDispatch.BatchSize),
			BatchWindow:     envDur("DISPATCH_BATCH_WINDOW", defaultDispatch.BatchWindow),
			MaxBatches:      envInt("DISPATCH_MAX_BATCHES", defaultDispatch.MaxBatches),
			InterBatchDelay: envDur("DISPATCH_INTER_BATCH_DELAY", defaultDispatch.InterBatchDelay),
			PollInterval:    envDur("DISPATCH_POLL_INTERVAL", defaultDispatch.PollInterval),
			MaxConcurrent:   int64(envInt("DISPATCH_MAX_CONCURRENT", int(defaultDispatch.MaxConcurrent))),
			StaleAfter:      envDur("DISPATCH_STALE_AFTER", defaultDispatch.StaleAfter),
			BaseURL:         envStr("DISPATCH_BASE_URL", defaultDispatch.BaseURL),
		},
		Twilio: Twilio{
			AccountSID: envStr("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  envStr("TWILIO_AUTH_TOKEN", ""),
			FromPhone:  envStr("TWILIO_FROM_PHONE", ""),
			Enabled:    envBool("TWILIO_ENABLED", false),
		},
		Kafka: Kafka{
			Brokers: envList("KAFKA_BROKERS"),
			Topic:   envStr("KAFKA_TOPIC", defaultKafka.Topic),
			GroupID: envStr("KAFKA_GROUP_ID", defaultKafka.GroupID),
		},
		Outbox: Outbox{
			PollInterval: envDur("OUTBOX_POLL_INTERVAL", defaultOutbox.PollInterval),
			BatchSize:    envInt("OUTBOX_BATCH_SIZE", defaultOutbox.BatchSize),
		},
		RateLimit: RateLimit{
			Limit:  envInt("RATE_LIMIT", defaultRateLimit.Limit),
			Window: envDur("RATE_LIMIT_WINDOW", defaultRateLimit.Window),
		},
	}

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.Parse()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Dispatch.BatchSize < 1 {
		return fmt.Errorf("invalid dispatch batch size: %d", c.Dispatch.BatchSize)
	}
	if c.Dispatch.BatchWindow <= 0 {
		return fmt.Errorf("invalid dispatch batch window: %s", c.Dispatch.BatchWindow)
	}
	if c.Dispatch.MaxBatches < 1 {
		return fmt.Errorf("invalid dispatch max batches: %d", c.Dispatch.MaxBatches)
	}
	if c.Dispatch.InterBatchDelay < 0 {
		return fmt.Errorf("invalid dispatch inter-batch delay: %s", c.Dispatch.InterBatchDelay)
	}
	if c.Dispatch.MaxConcurrent < 1 {
		return fmt.Errorf("invalid dispatch max concurrent: %d", c.Dispatch.MaxConcurrent)
	}
	if c.Twilio.Enabled {
		if c.Twilio.AccountSID == "" || c.Twilio.AuthToken == "" || c.Twilio.FromPhone == "" {
			return fmt.Errorf("twilio enabled but credentials are incomplete")
		}
	}
	return nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
