package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"sustainability-quiz-service/internal/domain"
	"sustainability-quiz-service/internal/infra/memory"
)

const catalogKey = "quiz:catalog"

// CatalogCache shares the question catalog across instances through Redis and
// falls back to a loader on cache miss.
// Questions are stored as: HSET quiz:catalog {questionID} {question JSON}
type CatalogCache struct {
	client *redis.Client
	loader memory.CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalogCache(client *redis.Client, loader memory.CatalogLoader, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// LoadCatalog serves the catalog from Redis, loading and storing it on a miss.
func (c *CatalogCache) LoadCatalog(ctx context.Context) ([]domain.Question, error) {
	if qs, ok := c.cached(ctx); ok {
		return qs, nil
	}

	result, err, _ := c.sf.Do(catalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if qs, ok := c.cached(ctx); ok {
			return qs, nil
		}

		qs, err := c.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}

		// MULTI/EXEC so readers never see the hash between DEL and HSET
		pipe := c.client.TxPipeline()
		pipe.Del(ctx, catalogKey)
		for _, q := range qs {
			raw, err := json.Marshal(q)
			if err != nil {
				return nil, fmt.Errorf("encode question %d: %w", q.ID, err)
			}
			pipe.HSet(ctx, catalogKey, q.ID, raw)
		}
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, catalogKey, ttl)
		}
		// cache write failures only cost a reload
		_, _ = pipe.Exec(ctx)

		return qs, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *CatalogCache) cached(ctx context.Context) ([]domain.Question, bool) {
	fields, err := c.client.HGetAll(ctx, catalogKey).Result()
	if err != nil || len(fields) == 0 {
		return nil, false
	}
	qs := make([]domain.Question, 0, len(fields))
	for _, raw := range fields {
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, false
		}
		qs = append(qs, q)
	}
	sort.Slice(qs, func(i, j int) bool { return qs[i].ID < qs[j].ID })
	return qs, true
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
