package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"clone-llm/internal/domain"
)

// CheckpointStore persists an NCPState between node executions so a run can
// resume after cancellation. Persistence itself is an orchestrator-external
// collaborator; the core only needs this narrow contract.
type CheckpointStore interface {
	Save(ctx context.Context, sessionID string, state *domain.NCPState) error
	Load(ctx context.Context, sessionID string) (*domain.NCPState, error)
}

// NopCheckpointStore never persists anything; runs that don't configure a
// store use this and are not resumable.
type NopCheckpointStore struct{}

func (NopCheckpointStore) Save(context.Context, string, *domain.NCPState) error { return nil }
func (NopCheckpointStore) Load(context.Context, string) (*domain.NCPState, error) {
	return nil, nil
}

// MemoryCheckpointStore keeps the latest checkpoint per session in memory,
// useful for single-process runs and tests.
type MemoryCheckpointStore struct {
	mu    sync.Mutex
	items map[string]*domain.NCPState
}

func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{items: make(map[string]*domain.NCPState)}
}

func (s *MemoryCheckpointStore) Save(_ context.Context, sessionID string, state *domain.NCPState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[sessionID] = state
	return nil
}

func (s *MemoryCheckpointStore) Load(_ context.Context, sessionID string) (*domain.NCPState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[sessionID], nil
}

// RedisCheckpointStore persists NCPState as JSON under a session-scoped key,
// the same SET/GET-with-prefix shape the rest of the codebase uses for
// short-lived keyed state.
type RedisCheckpointStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCheckpointStore(client *redis.Client, ttl time.Duration) *RedisCheckpointStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCheckpointStore{client: client, prefix: "story:checkpoint:", ttl: ttl}
}

func (s *RedisCheckpointStore) Save(ctx context.Context, sessionID string, state *domain.NCPState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+sessionID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

func (s *RedisCheckpointStore) Load(ctx context.Context, sessionID string) (*domain.NCPState, error) {
	payload, err := s.client.Get(ctx, s.prefix+sessionID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	var state domain.NCPState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	return &state, nil
}
