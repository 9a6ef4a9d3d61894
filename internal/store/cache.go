package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	collectionKeyPrefix = "haulzy:collection:"     // haulzy:collection:{path}:{generation}
	generationKeyPrefix = "haulzy:collection-gen:" // haulzy:collection-gen:{path}
	defaultCacheTTL     = 30 * time.Second
	minGenerationTTL    = 24 * time.Hour
)

// CachedStore caches full-collection reads in Redis. Writes go straight to
// the wrapped store and bump the collection's generation. Cached lists are
// keyed by the generation read before the backing read, so a list that
// raced a write is stored under a generation no reader asks for again.
// Redis failures are logged and never surface to callers.
type CachedStore struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, log *zap.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedStore{next: next, client: client, ttl: ttl, log: log}
}

func (c *CachedStore) List(ctx context.Context, collection string) ([]Document, error) {
	gen, err := c.generation(ctx, collection)
	if err != nil {
		c.log.Warn("cache generation read failed", zap.String("collection", collection), zap.Error(err))
		return c.next.List(ctx, collection)
	}
	key := collectionKey(collection, gen)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var docs []Document
		if jsonErr := json.Unmarshal(raw, &docs); jsonErr == nil {
			return docs, nil
		}
		c.log.Warn("discarding unreadable cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	docs, err := c.next.List(ctx, collection)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(docs); jsonErr != nil {
		c.log.Warn("cache encode failed", zap.String("key", key), zap.Error(jsonErr))
	} else if setErr := c.client.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(setErr))
	}
	return docs, nil
}

func (c *CachedStore) Get(ctx context.Context, docPath string) (Document, error) {
	return c.next.Get(ctx, docPath)
}

func (c *CachedStore) Set(ctx context.Context, docPath string, data map[string]any) error {
	if err := c.next.Set(ctx, docPath, data); err != nil {
		return err
	}
	c.invalidate(ctx, docPath)
	return nil
}

func (c *CachedStore) Update(ctx context.Context, docPath string, fields map[string]any) error {
	if err := c.next.Update(ctx, docPath, fields); err != nil {
		return err
	}
	c.invalidate(ctx, docPath)
	return nil
}

func (c *CachedStore) Delete(ctx context.Context, docPath string) error {
	if err := c.next.Delete(ctx, docPath); err != nil {
		return err
	}
	c.invalidate(ctx, docPath)
	return nil
}

// Flush drops every cached collection.
func (c *CachedStore) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, collectionKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// generation returns the collection's current generation, zero if unset.
func (c *CachedStore) generation(ctx context.Context, collection string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(collection)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *CachedStore) invalidate(ctx context.Context, docPath string) {
	collection := ParentCollection(docPath)
	genKey := generationKey(collection)

	var incr *redis.IntCmd
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, c.generationTTL())
		return nil
	})
	if err != nil {
		c.log.Warn("cache invalidation failed", zap.String("key", genKey), zap.Error(err))
		return
	}

	stale := collectionKey(collection, incr.Val()-1)
	if err := c.client.Del(ctx, stale).Err(); err != nil {
		c.log.Warn("cache cleanup failed", zap.String("key", stale), zap.Error(err))
	}
}

// generationTTL outlives any entry cached under an older generation.
func (c *CachedStore) generationTTL() time.Duration {
	return max(minGenerationTTL, 2*c.ttl)
}

func collectionKey(collection string, gen int64) string {
	return collectionKeyPrefix + collection + ":" + strconv.FormatInt(gen, 10)
}

func generationKey(collection string) string {
	return generationKeyPrefix + collection
}
