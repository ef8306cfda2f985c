package memory

import (
	"context"
	"sync"
	"time"
)

// ActivityTracker is an expiring set of session ids.
type ActivityTracker struct {
	ttl   time.Duration
	clock func() time.Time

	mu      sync.Mutex
	touched map[string]time.Time
}

func NewActivityTracker(ttl time.Duration) *ActivityTracker {
	return &ActivityTracker{
		ttl:     ttl,
		clock:   time.Now,
		touched: make(map[string]time.Time),
	}
}

// Touch refreshes sessionID and drops every expired entry.
func (t *ActivityTracker) Touch(_ context.Context, sessionID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock()
	for id, expiresAt := range t.touched {
		if !expiresAt.After(now) {
			delete(t.touched, id)
		}
	}
	t.touched[sessionID] = now.Add(t.ttl)
	return nil
}

func (t *ActivityTracker) Clear(_ context.Context, sessionID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.touched, sessionID)
	return nil
}

// Active reports which of the ids were touched within the TTL. Expired entries are dropped.
func (t *ActivityTracker) Active(_ context.Context, sessionIDs []string) (map[string]bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock()
	out := make(map[string]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		expiresAt, ok := t.touched[id]
		if ok && !expiresAt.After(now) {
			delete(t.touched, id)
			ok = false
		}
		out[id] = ok
	}
	return out, nil
}
