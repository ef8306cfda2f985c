package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"sustainability-quiz-service/internal/domain"
)

// CatalogLoader fetches the question catalog from a backing store.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) ([]domain.Question, error)
}

// CatalogRepository caches the catalog with a TTL so request paths don't hit the loader.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	questions []domain.Question
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Questions returns a copy of the cached catalog, loading it when expired.
func (r *CatalogRepository) Questions(ctx context.Context) ([]domain.Question, error) {
	if qs, ok := r.cached(r.clock()); ok {
		return qs, nil
	}

	result, err, _ := r.sf.Do("catalog", func() (interface{}, error) {
		now := r.clock()
		if qs, ok := r.cached(now); ok {
			return qs, nil
		}
		qs, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		if len(qs) == 0 {
			return nil, domain.ErrQuestionNotFound
		}

		r.mu.Lock()
		r.questions = copyQuestions(qs)
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return copyQuestions(qs), nil
	})
	if err != nil {
		return nil, err
	}
	return copyQuestions(result.([]domain.Question)), nil
}

func (r *CatalogRepository) cached(now time.Time) ([]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.questions == nil || !r.expiresAt.After(now) {
		return nil, false
	}
	return copyQuestions(r.questions), true
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticCatalogLoader serves the built-in catalog.
type StaticCatalogLoader struct{}

func (StaticCatalogLoader) LoadCatalog(context.Context) ([]domain.Question, error) {
	return domain.Catalog(), nil
}

func copyQuestions(qs []domain.Question) []domain.Question {
	out := make([]domain.Question, len(qs))
	for i, q := range qs {
		q.YesReasons = append([]string(nil), q.YesReasons...)
		q.NoReasons = append([]string(nil), q.NoReasons...)
		out[i] = q
	}
	return out
}
