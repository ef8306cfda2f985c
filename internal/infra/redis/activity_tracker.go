package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ActivityTracker marks open sessions as live with an expiring key per session.
// A key that expired before completion means the session was abandoned.
type ActivityTracker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewActivityTracker(client *redis.Client, ttl time.Duration) *ActivityTracker {
	return &ActivityTracker{client: client, ttl: ttl}
}

func (t *ActivityTracker) Touch(ctx context.Context, sessionID string) error {
	if err := t.client.Set(ctx, t.key(sessionID), "1", t.ttl).Err(); err != nil {
		return fmt.Errorf("touch %s: %w", sessionID, err)
	}
	return nil
}

func (t *ActivityTracker) Clear(ctx context.Context, sessionID string) error {
	if err := t.client.Del(ctx, t.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear %s: %w", sessionID, err)
	}
	return nil
}

// Active checks all ids in one pipeline round trip.
func (t *ActivityTracker) Active(ctx context.Context, sessionIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return out, nil
	}
	pipe := t.client.Pipeline()
	cmds := make([]*redis.IntCmd, len(sessionIDs))
	for i, id := range sessionIDs {
		cmds[i] = pipe.Exists(ctx, t.key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("check activity: %w", err)
	}
	for i, id := range sessionIDs {
		out[id] = cmds[i].Val() > 0
	}
	return out, nil
}

func (t *ActivityTracker) key(sessionID string) string {
	return "quiz:activity:" + sessionID
}
