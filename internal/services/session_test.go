package services

import (
	"context"
	"testing"
	"time"

	"github.com/DineVoice/dinevoice-backend/internal/dialogue"
)

func TestMemorySessionStoreRoundTrip(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)
	ctx := context.Background()

	session := dialogue.NewSession("CA-1", "+15551234567", "+15557654321", nil)
	session.Step = dialogue.StepMenuSelection
	if err := store.Put(ctx, session); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "CA-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Step != dialogue.StepMenuSelection {
		t.Fatalf("unexpected session: %+v", got)
	}

	count, err := store.Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("count = %d, err = %v", count, err)
	}
}

func TestMemorySessionStoreMissReturnsNil(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)

	got, err := store.Get(context.Background(), "CA-missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for unknown call, got %+v", got)
	}
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	store := NewMemorySessionStore(10 * time.Millisecond)
	ctx := context.Background()

	session := dialogue.NewSession("CA-2", "+15551234567", "+15557654321", nil)
	session.LastActive = time.Now().Add(-time.Minute)
	if err := store.Put(ctx, session); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "CA-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatal("expected expired session to be invisible")
	}

	if removed := store.SweepExpired(); removed != 1 {
		t.Fatalf("expected 1 swept session, got %d", removed)
	}
	count, _ := store.Count(ctx)
	if count != 0 {
		t.Fatalf("expected empty store after sweep, got %d", count)
	}
}

func TestMemorySessionStoreDelete(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)
	ctx := context.Background()

	session := dialogue.NewSession("CA-3", "+15551234567", "+15557654321", nil)
	if err := store.Put(ctx, session); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, "CA-3"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	sessions, err := store.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected no sessions, got %d", len(sessions))
	}
}
