package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	AdminIdentity string
	JWTSigningKey string
	PostgresURL   string
	Redis         RedisConfig
	KafkaBrokers  []string
	KafkaTopic    string
	LogLevel      string
}

// RedisConfig carries connection settings for the reputation cache.
// An empty URL disables Redis entirely.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CAREHUB_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	admin := os.Getenv("CAREHUB_ADMIN_IDENTITY")

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return Server{
		Addr:          addr,
		AdminIdentity: admin,
		JWTSigningKey: jwtSigningKey,
		PostgresURL:   os.Getenv("POSTGRES_URL"),
		Redis:         redisFromEnv(),
		KafkaBrokers:  brokers,
		KafkaTopic:    os.Getenv("KAFKA_AUDIT_TOPIC"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
	}
}

func redisFromEnv() RedisConfig {
	cfg := RedisConfig{
		URL:          os.Getenv("REDIS_URL"),
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
	}
	if v, err := strconv.Atoi(os.Getenv("REDIS_POOL_SIZE")); err == nil && v > 0 {
		cfg.PoolSize = v
	}
	if v, err := strconv.Atoi(os.Getenv("REDIS_MIN_IDLE_CONNS")); err == nil && v >= 0 {
		cfg.MinIdleConns = v
	}
	return cfg
}
