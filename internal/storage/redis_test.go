package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ignite/cad-normalizer/internal/template"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()

	tmpl := sampleTemplate("console-one")
	require.NoError(t, s.Save(ctx, tmpl))
	require.NotEmpty(t, tmpl.ID)

	got, err := s.Get(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "console-one", got.Name)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRedisStoreGetMissing(t *testing.T) {
	s, _ := newRedisStore(t)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, template.ErrNotFound)
}

func TestRedisStoreDelete(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()

	tmpl := sampleTemplate("doomed")
	require.NoError(t, s.Save(ctx, tmpl))

	require.NoError(t, s.Delete(ctx, tmpl.ID))
	assert.ErrorIs(t, s.Delete(ctx, tmpl.ID), template.ErrNotFound)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRedisStoreTouchUsage(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()

	tmpl := sampleTemplate("used")
	require.NoError(t, s.Save(ctx, tmpl))

	require.NoError(t, s.TouchUsage(ctx, tmpl.ID))
	require.NoError(t, s.TouchUsage(ctx, tmpl.ID))

	got, err := s.Get(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.UseCount)
	require.NotNil(t, got.LastUsed)

	assert.ErrorIs(t, s.TouchUsage(ctx, "nope"), template.ErrNotFound)
}

func TestRedisStoreSkipsCorruptRecords(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleTemplate("ok")))

	// Plant a corrupt record by hand
	require.NoError(t, mr.Set(redisTemplateKey("bad"), "{not json"))
	_, err := mr.SetAdd(redisTemplateIndexKey, "bad")
	require.NoError(t, err)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, "ok", all[0].Name)
}
