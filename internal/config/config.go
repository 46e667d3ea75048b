package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// HTTP holds HTTP server configuration.
type HTTP struct {
	Port        int
	MetricsPath string
}

// Storage selects the repository backend.
type Storage struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	Seed            bool
}

// Redis contains redis-specific connection settings.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Dedupe configures the winner notification marker store.
type Dedupe struct {
	Driver string
	TTL    time.Duration
	Redis  Redis
}

// Kafka holds Kafka connection details.
type Kafka struct {
	Brokers        []string
	ClientID       string
	Topic          string
	ConsumerGroup  string
	ConnectTimeout time.Duration
}

// Messaging configures where notifications are published.
type Messaging struct {
	Driver     string
	Kafka      Kafka
	QueueSize  int
	Workers    int
	MaxRetries int
	Backoff    time.Duration
}

// Sweep configures the background lifecycle sweeper.
type Sweep struct {
	Enabled   bool
	Interval  time.Duration
	Retention time.Duration
}

// Auction holds tunables of the auction core.
type Auction struct {
	ChatDuplicateWindow time.Duration
	RecentBidsLimit     int
	ChatHistoryLimit    int
}

// Config wraps all application configuration knobs.
type Config struct {
	LogLevel  string
	HTTP      HTTP
	Storage   Storage
	Dedupe    Dedupe
	Messaging Messaging
	Sweep     Sweep
	Auction   Auction
}

var loadEnvOnce sync.Once

// New builds a Config from environment variables or defaults.
func New() (Config, error) {
	loadEnvOnce.Do(func() {
		_ = godotenv.Load()
	})

	cfg := Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTP: HTTP{
			Port:        getEnvAsInt("PORT", 8080),
			MetricsPath: getEnv("METRICS_PATH", "/metrics"),
		},
		Storage: Storage{
			Driver:          getEnv("STORAGE_DRIVER", "memory"),
			DSN:             getEnv("DATABASE_DSN", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			Seed:            getEnvAsBool("SEED_SAMPLE_DATA", true),
		},
		Dedupe: Dedupe{
			Driver: getEnv("DEDUPE_DRIVER", "memory"),
			TTL:    getEnvAsDuration("DEDUPE_TTL", 720*time.Hour),
			Redis: Redis{
				Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getEnvAsInt("REDIS_DB", 0),
			},
		},
		Messaging: Messaging{
			Driver: getEnv("MESSAGING_DRIVER", "log"),
			Kafka: Kafka{
				Brokers:        getEnvAsStringSlice("KAFKA_BROKERS", []string{"127.0.0.1:9092"}),
				ClientID:       getEnv("KAFKA_CLIENT_ID", "auction-house"),
				Topic:          getEnv("KAFKA_TOPIC", "auctions.notifications"),
				ConsumerGroup:  getEnv("KAFKA_CONSUMER_GROUP", "auction-notify-worker"),
				ConnectTimeout: getEnvAsDuration("KAFKA_CONNECT_TIMEOUT", 5*time.Second),
			},
			QueueSize:  getEnvAsInt("NOTIFY_QUEUE_SIZE", 256),
			Workers:    getEnvAsInt("NOTIFY_WORKERS", 2),
			MaxRetries: getEnvAsInt("NOTIFY_MAX_RETRIES", 3),
			Backoff:    getEnvAsDuration("NOTIFY_BACKOFF", 200*time.Millisecond),
		},
		Sweep: Sweep{
			Enabled:   getEnvAsBool("SWEEP_ENABLED", true),
			Interval:  getEnvAsDuration("SWEEP_INTERVAL", 30*time.Second),
			Retention: getEnvAsDuration("RETENTION", 48*time.Hour),
		},
		Auction: Auction{
			ChatDuplicateWindow: getEnvAsDuration("CHAT_DUPLICATE_WINDOW", 5*time.Second),
			RecentBidsLimit:     getEnvAsInt("RECENT_BIDS_LIMIT", 3),
			ChatHistoryLimit:    getEnvAsInt("CHAT_HISTORY_LIMIT", 50),
		},
	}

	if cfg.HTTP.Port <= 0 {
		return Config{}, fmt.Errorf("invalid HTTP port: %d", cfg.HTTP.Port)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.HTTP.MetricsPath == "" {
		cfg.HTTP.MetricsPath = "/metrics"
	} else if !strings.HasPrefix(cfg.HTTP.MetricsPath, "/") {
		cfg.HTTP.MetricsPath = "/" + cfg.HTTP.MetricsPath
	}

	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	switch cfg.Storage.Driver {
	case "memory":
		// supported
	case "postgres", "sqlite":
		if cfg.Storage.DSN == "" {
			return Config{}, fmt.Errorf("DATABASE_DSN must be provided for %s storage", cfg.Storage.Driver)
		}
	default:
		return Config{}, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}

	switch cfg.Dedupe.Driver {
	case "memory":
		// supported
	case "redis":
		if cfg.Dedupe.Redis.Addr == "" {
			return Config{}, fmt.Errorf("missing REDIS_ADDR for redis dedupe")
		}
	default:
		return Config{}, fmt.Errorf("unsupported dedupe driver: %s", cfg.Dedupe.Driver)
	}
	if cfg.Dedupe.TTL <= 0 {
		cfg.Dedupe.TTL = 720 * time.Hour
	}

	switch cfg.Messaging.Driver {
	case "log":
		// supported
	case "kafka":
		if len(cfg.Messaging.Kafka.Brokers) == 0 {
			return Config{}, fmt.Errorf("KAFKA_BROKERS must be provided")
		}
		if cfg.Messaging.Kafka.Topic == "" {
			return Config{}, fmt.Errorf("KAFKA_TOPIC must be provided")
		}
		if cfg.Messaging.Kafka.ConsumerGroup == "" {
			return Config{}, fmt.Errorf("KAFKA_CONSUMER_GROUP must be provided")
		}
	default:
		return Config{}, fmt.Errorf("unsupported messaging driver: %s", cfg.Messaging.Driver)
	}

	if cfg.Messaging.QueueSize <= 0 {
		cfg.Messaging.QueueSize = 256
	}
	if cfg.Messaging.Workers <= 0 {
		cfg.Messaging.Workers = 1
	}
	if cfg.Messaging.MaxRetries < 0 {
		cfg.Messaging.MaxRetries = 0
	}

	if cfg.Sweep.Interval <= 0 {
		cfg.Sweep.Interval = 30 * time.Second
	}
	if cfg.Sweep.Retention <= 0 {
		cfg.Sweep.Retention = 48 * time.Hour
	}

	if cfg.Auction.ChatDuplicateWindow <= 0 {
		cfg.Auction.ChatDuplicateWindow = 5 * time.Second
	}
	if cfg.Auction.RecentBidsLimit <= 0 {
		cfg.Auction.RecentBidsLimit = 3
	}
	if cfg.Auction.ChatHistoryLimit <= 0 {
		cfg.Auction.ChatHistoryLimit = 50
	}

	return cfg, nil
}
