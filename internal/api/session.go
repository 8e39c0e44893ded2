package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/recipient-sync/internal/recipient"
)

const sessionTTL = 24 * time.Hour

// SessionStore accumulates the merged summary of a paginated sync sequence
// in Redis. The coordinator itself stays stateless; this is purely the
// caller-side fold, made durable so a dashboard reload (or a second admin
// tab) can pick up the running total.
type SessionStore struct {
	rdb *redis.Client
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func sessionKey(id string) string { return "recipient-sync:session:" + id }

// Fold merges a run's summary into the session and returns the merged view.
func (s *SessionStore) Fold(ctx context.Context, id string, sum recipient.Summary) (recipient.Summary, error) {
	merged := sum
	existing, ok, err := s.Get(ctx, id)
	if err != nil {
		return recipient.Summary{}, err
	}
	if ok {
		merged = existing.Merge(sum)
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return recipient.Summary{}, fmt.Errorf("marshaling session summary: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(id), data, sessionTTL).Err(); err != nil {
		return recipient.Summary{}, fmt.Errorf("storing session %s: %w", id, err)
	}
	return merged, nil
}

// Get returns the merged summary for a session, with ok=false when the
// session does not exist (or has expired).
func (s *SessionStore) Get(ctx context.Context, id string) (recipient.Summary, bool, error) {
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return recipient.Summary{}, false, nil
	}
	if err != nil {
		return recipient.Summary{}, false, fmt.Errorf("loading session %s: %w", id, err)
	}

	var sum recipient.Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		return recipient.Summary{}, false, fmt.Errorf("parsing session %s: %w", id, err)
	}
	return sum, true, nil
}
