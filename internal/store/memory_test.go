package store_test

import (
	"context"
	"testing"

	"github.com/robalobadob/wordle-api/internal/game"
	"github.com/robalobadob/wordle-api/internal/store"
	"github.com/robalobadob/wordle-api/internal/store/storetest"
)

func TestMemoryContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Repository {
		m, err := store.NewMemory(storetest.MaxAttempts)
		if err != nil {
			t.Fatalf("NewMemory: %v", err)
		}
		return m
	})
}

func TestNewMemoryRejectsZeroAttempts(t *testing.T) {
	if _, err := store.NewMemory(0); err == nil {
		t.Fatal("expected error for maxAttempts=0")
	}
}

func TestMemoryLen(t *testing.T) {
	m, _ := store.NewMemory(6)
	target, _ := game.ParseTarget("stave")
	_, _ = m.Create(context.Background(), target)
	_, _ = m.Create(context.Background(), nil)
	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
}
