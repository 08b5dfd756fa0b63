package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/cad-normalizer/internal/pkg/logger"
	"github.com/ignite/cad-normalizer/internal/template"
	"github.com/redis/go-redis/v9"
)

const (
	redisTemplateKeyPrefix = "cadnorm:template:"
	redisTemplateIndexKey  = "cadnorm:templates"
)

// RedisStore keeps templates as JSON strings under per-template keys
// with a set index for listing. Redis serializes commands, which covers
// the concurrent-writer requirement for use-count bumps.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed template store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisTemplateKey(id string) string { return redisTemplateKeyPrefix + id }

func (s *RedisStore) List(ctx context.Context) ([]template.Template, error) {
	ids, err := s.client.SMembers(ctx, redisTemplateIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("listing template ids: %w", err)
	}

	templates := make([]template.Template, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, redisTemplateKey(id)).Bytes()
		if err == redis.Nil {
			// Index entry without a record; drop it and move on
			s.client.SRem(ctx, redisTemplateIndexKey, id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", id, err)
		}
		var t template.Template
		if err := json.Unmarshal(data, &t); err != nil {
			logger.Warn("skipping corrupt template record", "template_id", id, "error", err.Error())
			continue
		}
		templates = append(templates, t)
	}
	return templates, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (template.Template, error) {
	data, err := s.client.Get(ctx, redisTemplateKey(id)).Bytes()
	if err == redis.Nil {
		return template.Template{}, template.ErrNotFound
	}
	if err != nil {
		return template.Template{}, fmt.Errorf("reading template %s: %w", id, err)
	}
	var t template.Template
	if err := json.Unmarshal(data, &t); err != nil {
		return template.Template{}, fmt.Errorf("parsing template %s: %w", id, err)
	}
	return t, nil
}

func (s *RedisStore) Save(ctx context.Context, t *template.Template) error {
	prepare(t, func() string { return uuid.New().String() })

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling template: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisTemplateKey(t.ID), data, 0)
	pipe.SAdd(ctx, redisTemplateIndexKey, t.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("saving template %s: %w", t.ID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	removed, err := s.client.Del(ctx, redisTemplateKey(id)).Result()
	if err != nil {
		return fmt.Errorf("deleting template %s: %w", id, err)
	}
	s.client.SRem(ctx, redisTemplateIndexKey, id)
	if removed == 0 {
		return template.ErrNotFound
	}
	return nil
}

func (s *RedisStore) TouchUsage(ctx context.Context, id string) error {
	// Read-modify-write under WATCH so concurrent touches don't lose
	// increments.
	key := redisTemplateKey(id)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return template.ErrNotFound
		}
		if err != nil {
			return err
		}
		var t template.Template
		if err := json.Unmarshal(data, &t); err != nil {
			return fmt.Errorf("parsing template %s: %w", id, err)
		}
		now := time.Now().UTC()
		t.UseCount++
		t.LastUsed = &now

		updated, err := json.Marshal(&t)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for i := 0; i < 3; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err != redis.TxFailedErr {
			return err
		}
	}
	return fmt.Errorf("touch usage for %s: too many conflicts", id)
}
