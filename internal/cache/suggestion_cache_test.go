package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/techpostia/techpost/internal/models"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func sample() []models.RepoSuggestion {
	return []models.RepoSuggestion{{
		RepoName: "widget",
		Ideas:    []models.Idea{{Title: "Launch", ContextPrompt: "Announce widget"}},
	}}
}

func TestGetHonoursTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewInMemorySuggestionCache(24*time.Hour, clock.Now)
	ctx := context.Background()

	c.Put(ctx, "Ada", sample())

	if got, ok := c.Get(ctx, "ada"); !ok || got[0].RepoName != "widget" {
		t.Fatalf("expected hit with case-insensitive key, got %v %v", got, ok)
	}

	clock.Advance(23 * time.Hour)
	if _, ok := c.Get(ctx, "ADA"); !ok {
		t.Fatalf("expected hit before TTL")
	}

	clock.Advance(time.Hour)
	if _, ok := c.Get(ctx, "ada"); ok {
		t.Fatalf("expected miss at TTL")
	}
}

func TestInvalidate(t *testing.T) {
	c := NewInMemorySuggestionCache(time.Hour, nil)
	ctx := context.Background()
	c.Put(ctx, "ada", sample())
	c.Invalidate(ctx, "Ada")
	if _, ok := c.Get(ctx, "ada"); ok {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestPurgeRemovesOnlyExpired(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewInMemorySuggestionCache(time.Hour, clock.Now)
	ctx := context.Background()

	c.Put(ctx, "old", sample())
	clock.Advance(30 * time.Minute)
	c.Put(ctx, "new", sample())
	clock.Advance(45 * time.Minute)

	if n := c.Purge(); n != 1 {
		t.Fatalf("Purge() = %d, want 1", n)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
	if _, ok := c.Get(ctx, "new"); !ok {
		t.Fatalf("fresh entry should survive purge")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	c := NewInMemorySuggestionCache(time.Hour, nil)
	ctx := context.Background()
	c.Put(ctx, "ada", sample())

	got, _ := c.Get(ctx, "ada")
	got[0].Ideas[0].Title = "mutated"

	again, _ := c.Get(ctx, "ada")
	if again[0].Ideas[0].Title != "Launch" {
		t.Fatalf("cached value was mutated through returned slice")
	}
}

func TestStartJanitorRejectsBadSchedule(t *testing.T) {
	c := NewInMemorySuggestionCache(time.Hour, nil)
	if _, err := StartJanitor("not a schedule", c); err == nil {
		t.Fatalf("expected error for invalid schedule")
	}
	cr, err := StartJanitor(DefaultPurgeSchedule, c)
	if err != nil {
		t.Fatalf("StartJanitor: %v", err)
	}
	cr.Stop()
}
