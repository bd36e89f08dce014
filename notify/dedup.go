package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupStore remembers which (notice, recipient) pairs were already sent, so
// a retried delivery task does not email the same person twice.
type DedupStore interface {
	// MarkSent records the key if it is not yet recorded. It returns true
	// when the caller won the claim and should proceed with the send.
	MarkSent(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Clear releases a claim after a failed send so a retry can claim it
	// again.
	Clear(ctx context.Context, key string) error
}

// deliveryKey identifies one delivery attempt: the notice's category and
// subject fingerprint plus the recipient.
func deliveryKey(n Notice, recipientID string) string {
	return fmt.Sprintf("delivered:%s:%s:%s", n.Category(), n.subjectKey(), recipientID)
}

// MemoryDedupStore is a process-local DedupStore for tests and development.
type MemoryDedupStore struct {
	mu   sync.Mutex
	sent map[string]time.Time
}

// NewMemoryDedupStore creates an empty in-memory dedup store.
func NewMemoryDedupStore() *MemoryDedupStore {
	return &MemoryDedupStore{sent: make(map[string]time.Time)}
}

func (s *MemoryDedupStore) MarkSent(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if expiry, ok := s.sent[key]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	s.sent[key] = time.Now().Add(ttl)
	return true, nil
}

func (s *MemoryDedupStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sent, key)
	return nil
}

// RedisDedupStore is a Redis-backed DedupStore shared across worker
// processes. Claims use SETNX so only one worker wins each key.
type RedisDedupStore struct {
	client redis.UniversalClient
}

// NewRedisDedupStore creates a dedup store over the given Redis client.
func NewRedisDedupStore(client redis.UniversalClient) (*RedisDedupStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis dedup store: %w", ErrNilDependency)
	}
	return &RedisDedupStore{client: client}, nil
}

func (s *RedisDedupStore) MarkSent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark sent: %w", err)
	}
	return ok, nil
}

func (s *RedisDedupStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("clear sent marker: %w", err)
	}
	return nil
}
