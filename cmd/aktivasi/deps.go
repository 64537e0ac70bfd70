package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MikeSquared-Agency/aktivasi/internal/activation"
	"github.com/MikeSquared-Agency/aktivasi/internal/config"
	"github.com/MikeSquared-Agency/aktivasi/internal/lock"
	"github.com/MikeSquared-Agency/aktivasi/internal/store"
)

func openStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.EnsureHeader(ctx, cfg.ActivationTable, activation.Header()); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.EnsureHeader(ctx, cfg.UserTable, activation.UserHeader()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// openLocker returns a Redis-backed lock when REDIS_ADDR is set and an
// in-process lock otherwise. closeFn is never nil.
func openLocker(ctx context.Context, cfg config.Config) (l lock.Locker, closeFn func(), err error) {
	if cfg.RedisAddr == "" {
		slog.Warn("REDIS_ADDR not set, using in-process lock")
		return lock.NewLocal(cfg.LockWait), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	slog.Info("redis connected", "addr", cfg.RedisAddr)
	return lock.NewRedis(client, cfg.LockTTL, cfg.LockWait), func() {
		if err := client.Close(); err != nil {
			slog.Warn("redis close error", "error", err)
		}
	}, nil
}
