package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            int
	NatsURL         string
	NatsToken       string
	ChatSubject     string
	DatabaseURL     string
	LogLevel        string
	SlackBotToken   string
	ActivationTable string
	UserTable       string
	RedisAddr       string
	RedisPassword   string
	LockTTL         time.Duration
	LockWait        time.Duration
	CommandTimeout  time.Duration
	JWTSecret       string
	JWTIssuer       string
	JWTTTL          time.Duration
	Timezone        string
}

func Load() Config {
	cfg := Config{
		Port:            envInt("AKTIVASI_PORT", 8760),
		NatsURL:         envStr("NATS_URL", "nats://hermes:4222"),
		NatsToken:       envStr("NATS_TOKEN", ""),
		ChatSubject:     envStr("CHAT_SUBJECT", "swarm.chat.message"),
		DatabaseURL:     envStr("DATABASE_URL", ""),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		SlackBotToken:   envStr("SLACK_BOT_TOKEN", ""),
		ActivationTable: envStr("ACTIVATION_TABLE", "AKTIVASI"),
		UserTable:       envStr("USER_TABLE", "USERS"),
		RedisAddr:       envStr("REDIS_ADDR", ""),
		RedisPassword:   envStr("REDIS_PASSWORD", ""),
		LockTTL:         envDuration("LOCK_TTL", 45*time.Second),
		LockWait:        envDuration("LOCK_WAIT", 5*time.Second),
		CommandTimeout:  envDuration("COMMAND_TIMEOUT", 30*time.Second),
		JWTSecret:       envStr("JWT_SECRET", ""),
		JWTIssuer:       envStr("JWT_ISSUER", "aktivasi"),
		JWTTTL:          envDuration("JWT_TTL", 30*24*time.Hour),
		Timezone:        envStr("TIMEZONE", "Asia/Jakarta"),
	}
	// The writer lock must outlive the longest command holding it.
	if cfg.LockTTL < cfg.CommandTimeout {
		cfg.LockTTL = cfg.CommandTimeout
	}
	return cfg
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// envDuration accepts Go durations ("15s") and bare seconds ("15").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
