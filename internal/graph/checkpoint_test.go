package graph

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"clone-llm/internal/domain"
)

func TestMemoryCheckpointStoreRoundTrip(t *testing.T) {
	store := NewMemoryCheckpointStore()
	state := domain.NewNCPState()
	state.ActiveTheme = "courage"

	if err := store.Save(context.Background(), "session-1", state); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := store.Load(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded == nil || loaded.ActiveTheme != "courage" {
		t.Fatalf("loaded state mismatch: %+v", loaded)
	}
}

func TestMemoryCheckpointStoreUnknownSession(t *testing.T) {
	store := NewMemoryCheckpointStore()
	loaded, err := store.Load(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected nil for an unknown session, got %+v", loaded)
	}
}

func TestRedisCheckpointStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("starting miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisCheckpointStore(client, time.Minute)

	state := domain.NewNCPState()
	state.ActiveTheme = "betrayal"
	state.CurrentBeatIndex = 2

	if err := store.Save(context.Background(), "session-1", state); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := store.Load(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded == nil || loaded.ActiveTheme != "betrayal" || loaded.CurrentBeatIndex != 2 {
		t.Fatalf("loaded state mismatch: %+v", loaded)
	}
}

func TestRedisCheckpointStoreLoadMissingKeyReturnsNil(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("starting miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisCheckpointStore(client, time.Minute)
	loaded, err := store.Load(context.Background(), "never-saved")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded != nil {
		t.Fatalf("expected nil for a missing key, got %+v", loaded)
	}
}

func TestNopCheckpointStoreIsInert(t *testing.T) {
	var store CheckpointStore = NopCheckpointStore{}
	if err := store.Save(context.Background(), "s", domain.NewNCPState()); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	loaded, err := store.Load(context.Background(), "s")
	if err != nil || loaded != nil {
		t.Fatalf("expected (nil, nil) from the nop store, got (%+v, %v)", loaded, err)
	}
}
