package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/haulzy/haulzy-backend/internal/checkout/domain"
)

const keyPrefix = "haulzy:signup:"

// PendingStore holds checkout hand-offs keyed by checkout session id.
type PendingStore interface {
	Save(ctx context.Context, sessionID string, p domain.Pending, ttl time.Duration) error
	Load(ctx context.Context, sessionID string) (domain.Pending, error)
	Delete(ctx context.Context, sessionID string) error
}

func Key(sessionID string) string {
	return keyPrefix + sessionID
}

type RedisPendingStore struct {
	client *redis.Client
}

func NewRedisPendingStore(client *redis.Client) *RedisPendingStore {
	return &RedisPendingStore{client: client}
}

func (r *RedisPendingStore) Save(ctx context.Context, sessionID string, p domain.Pending, ttl time.Duration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode pending checkout: %w", err)
	}
	if err := r.client.Set(ctx, Key(sessionID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("save pending checkout: %w", err)
	}
	return nil
}

// Load returns domain.ErrPendingSignupNotFound for missing or expired entries.
func (r *RedisPendingStore) Load(ctx context.Context, sessionID string) (domain.Pending, error) {
	raw, err := r.client.Get(ctx, Key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Pending{}, domain.ErrPendingSignupNotFound
	}
	if err != nil {
		return domain.Pending{}, fmt.Errorf("load pending checkout: %w", err)
	}
	var p domain.Pending
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Pending{}, fmt.Errorf("decode pending checkout: %w", err)
	}
	return p, nil
}

func (r *RedisPendingStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, Key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete pending checkout: %w", err)
	}
	return nil
}

// MemoryPendingStore is used when no Redis is configured.
type MemoryPendingStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	pending domain.Pending
	expires time.Time
}

func NewMemoryPendingStore() *MemoryPendingStore {
	return &MemoryPendingStore{entries: map[string]memoryEntry{}, now: time.Now}
}

func (m *MemoryPendingStore) Save(_ context.Context, sessionID string, p domain.Pending, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sessionID] = memoryEntry{pending: p, expires: m.now().Add(ttl)}
	return nil
}

func (m *MemoryPendingStore) Load(_ context.Context, sessionID string) (domain.Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[sessionID]
	if !ok || !m.now().Before(e.expires) {
		delete(m.entries, sessionID)
		return domain.Pending{}, domain.ErrPendingSignupNotFound
	}
	return e.pending, nil
}

func (m *MemoryPendingStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sessionID)
	return nil
}
