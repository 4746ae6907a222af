// Package storetest is a contract test suite for store.Repository
// implementations. Every adapter runs the same cases.
package storetest

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/wordle-api/internal/game"
	"github.com/robalobadob/wordle-api/internal/store"
)

// MaxAttempts is the limit every Factory must configure.
const MaxAttempts = 2

// Factory returns a fresh, empty repository configured with MaxAttempts.
type Factory func(t *testing.T) store.Repository

func letters(t *testing.T, s string) []game.Letter {
	t.Helper()
	ls, err := game.ParseTarget(s)
	if err != nil {
		t.Fatalf("ParseTarget(%q): %v", s, err)
	}
	return ls
}

func attempt(t *testing.T, target []game.Letter, guess string) game.Attempt {
	t.Helper()
	a, err := game.NewAttempt(target, letters(t, guess), game.ScoreSimple, time.Now())
	if err != nil {
		t.Fatalf("NewAttempt: %v", err)
	}
	return a
}

// Run executes the contract against repositories built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	ctx := context.Background()

	t.Run("create returns an empty unfinished game", func(t *testing.T) {
		repo := newRepo(t)
		target := letters(t, "under")
		g, err := repo.Create(ctx, target)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if g.ID == "" {
			t.Fatal("empty id")
		}
		if game.Word(g.Target) != "under" {
			t.Fatalf("target = %q, want under", game.Word(g.Target))
		}
		if len(g.Attempts) != 0 || g.Finished {
			t.Fatalf("new game = %+v", g)
		}
		if g.CreatedAt.IsZero() {
			t.Fatal("createdAt not set")
		}
	})

	t.Run("create rejects an empty target", func(t *testing.T) {
		repo := newRepo(t)
		if _, err := repo.Create(ctx, nil); !errors.Is(err, game.ErrInvalidLength) {
			t.Fatalf("err = %v, want ErrInvalidLength", err)
		}
	})

	t.Run("ids are unique", func(t *testing.T) {
		repo := newRepo(t)
		a, _ := repo.Create(ctx, letters(t, "under"))
		b, _ := repo.Create(ctx, letters(t, "under"))
		if a.ID == b.ID {
			t.Fatalf("duplicate id %s", a.ID)
		}
	})

	t.Run("get returns the created game", func(t *testing.T) {
		repo := newRepo(t)
		created, _ := repo.Create(ctx, letters(t, "under"))
		got, err := repo.Get(ctx, created.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.ID != created.ID || game.Word(got.Target) != "under" || !got.CreatedAt.Equal(created.CreatedAt) {
			t.Fatalf("got %+v, created %+v", got, created)
		}
	})

	t.Run("get unknown id is not found", func(t *testing.T) {
		repo := newRepo(t)
		if _, err := repo.Get(ctx, game.NewID()); !errors.Is(err, game.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("append to unknown id is not found", func(t *testing.T) {
		repo := newRepo(t)
		target := letters(t, "under")
		if _, err := repo.AppendAttempt(ctx, game.NewID(), attempt(t, target, "xxxxx")); !errors.Is(err, game.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("fewer than max misses leaves the game open", func(t *testing.T) {
		repo := newRepo(t)
		g, _ := repo.Create(ctx, letters(t, "under"))
		got, err := repo.AppendAttempt(ctx, g.ID, attempt(t, g.Target, "xxxxx"))
		if err != nil {
			t.Fatalf("AppendAttempt: %v", err)
		}
		if got.Finished || len(got.Attempts) != 1 {
			t.Fatalf("after one miss: finished=%v attempts=%d", got.Finished, len(got.Attempts))
		}
	})

	t.Run("correct word finishes the game", func(t *testing.T) {
		repo := newRepo(t)
		g, _ := repo.Create(ctx, letters(t, "under"))
		got, err := repo.AppendAttempt(ctx, g.ID, attempt(t, g.Target, "under"))
		if err != nil {
			t.Fatalf("AppendAttempt: %v", err)
		}
		if !got.Finished || !got.Attempts[0].Solved {
			t.Fatalf("solved game not finished: %+v", got)
		}
	})

	t.Run("max attempts finishes the game", func(t *testing.T) {
		repo := newRepo(t)
		g, _ := repo.Create(ctx, letters(t, "under"))
		for i := 0; i < MaxAttempts; i++ {
			var err error
			if g, err = repo.AppendAttempt(ctx, g.ID, attempt(t, g.Target, "xxxxx")); err != nil {
				t.Fatalf("AppendAttempt #%d: %v", i+1, err)
			}
		}
		if !g.Finished {
			t.Fatalf("finished=false after %d misses", MaxAttempts)
		}
		stored, _ := repo.Get(ctx, g.ID)
		if !stored.Finished {
			t.Fatal("finished flag not persisted")
		}
	})

	t.Run("append to a finished game is rejected", func(t *testing.T) {
		repo := newRepo(t)
		g, _ := repo.Create(ctx, letters(t, "under"))
		g, _ = repo.AppendAttempt(ctx, g.ID, attempt(t, g.Target, "under"))

		_, err := repo.AppendAttempt(ctx, g.ID, attempt(t, g.Target, "xxxxx"))
		if !errors.Is(err, game.ErrGameFinished) {
			t.Fatalf("err = %v, want ErrGameFinished", err)
		}
		stored, _ := repo.Get(ctx, g.ID)
		if len(stored.Attempts) != 1 {
			t.Fatalf("attempts = %d, want 1", len(stored.Attempts))
		}
	})

	t.Run("attempts keep order and content", func(t *testing.T) {
		repo := newRepo(t)
		g, _ := repo.Create(ctx, letters(t, "under"))
		first := attempt(t, g.Target, "nerdy")
		second := attempt(t, g.Target, "under")
		_, _ = repo.AppendAttempt(ctx, g.ID, first)
		_, _ = repo.AppendAttempt(ctx, g.ID, second)

		stored, err := repo.Get(ctx, g.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		want := []game.Attempt{first, second}
		if len(stored.Attempts) != len(want) {
			t.Fatalf("attempts = %d, want %d", len(stored.Attempts), len(want))
		}
		for i := range want {
			if !reflect.DeepEqual(stored.Attempts[i].Letters, want[i].Letters) ||
				stored.Attempts[i].Solved != want[i].Solved ||
				!stored.Attempts[i].CreatedAt.Equal(want[i].CreatedAt) {
				t.Fatalf("attempt %d = %+v, want %+v", i, stored.Attempts[i], want[i])
			}
		}
	})

	t.Run("repeated gets are equal", func(t *testing.T) {
		repo := newRepo(t)
		g, _ := repo.Create(ctx, letters(t, "under"))
		_, _ = repo.AppendAttempt(ctx, g.ID, attempt(t, g.Target, "nerdy"))

		a, _ := repo.Get(ctx, g.ID)
		b, _ := repo.Get(ctx, g.ID)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("gets differ:\n%+v\n%+v", a, b)
		}
	})

	t.Run("returned values do not alias stored state", func(t *testing.T) {
		repo := newRepo(t)
		g, _ := repo.Create(ctx, letters(t, "under"))
		g, _ = repo.AppendAttempt(ctx, g.ID, attempt(t, g.Target, "nerdy"))

		g.Target[0] = 'z'
		g.Attempts[0].Letters[0].State = game.Correct
		g.Attempts = append(g.Attempts, game.Attempt{})

		stored, _ := repo.Get(ctx, g.ID)
		if game.Word(stored.Target) != "under" {
			t.Fatalf("target changed to %q", game.Word(stored.Target))
		}
		if len(stored.Attempts) != 1 || stored.Attempts[0].Letters[0].State != game.Present {
			t.Fatalf("attempts changed: %+v", stored.Attempts)
		}
	})

	t.Run("concurrent appends are serialised", func(t *testing.T) {
		repo := newRepo(t)
		g, _ := repo.Create(ctx, letters(t, "under"))
		miss := attempt(t, g.Target, "xxxxx")

		const workers = 8
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			ok, done int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.AppendAttempt(ctx, g.ID, miss)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					ok++
				case errors.Is(err, game.ErrGameFinished):
					done++
				}
			}()
		}
		wg.Wait()

		stored, _ := repo.Get(ctx, g.ID)
		if ok != MaxAttempts || len(stored.Attempts) != MaxAttempts {
			t.Fatalf("accepted=%d stored=%d, want %d (rejected finished=%d)", ok, len(stored.Attempts), MaxAttempts, done)
		}
	})
}
