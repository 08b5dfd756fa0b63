// Package storage provides the template store backends. Every backend
// implements template.Store; which one runs is a config choice.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ignite/cad-normalizer/internal/config"
	"github.com/ignite/cad-normalizer/internal/template"
	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// New creates the template store selected by cfg.Type.
func New(ctx context.Context, cfg config.StorageConfig) (template.Store, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStore(cfg.LocalPath)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return NewRedisStore(client), nil
	case "postgres":
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		store := NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case "dynamodb":
		return NewDynamoStore(ctx, cfg.DynamoDBTable, cfg.AWSRegion, cfg.AWSProfile)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// prepare assigns an ID and creation time to templates that lack them.
// Shared by every backend so Save semantics stay identical.
func prepare(t *template.Template, newID func() string) {
	if t.ID == "" {
		t.ID = newID()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.Metadata.Version == 0 {
		t.Metadata.Version = 1
	}
}
