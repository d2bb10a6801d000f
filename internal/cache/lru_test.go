package cache

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestLRUCacheExpiry(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, 5*time.Second).WithClock(clk.now)

	c.Set("a", "first")
	clk.t = clk.t.Add(3 * time.Second)
	c.Set("b", "second")

	if got := c.Values(); len(got) != 2 || got[0] != "second" || got[1] != "first" {
		t.Fatalf("expected newest first, got %v", got)
	}

	clk.t = clk.t.Add(3 * time.Second) // a is 6s old, b 3s
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected a to be expired")
	}
	if v, ok := c.Get("b"); !ok || v != "second" {
		t.Fatalf("expected b to be live, got %q ok=%v", v, ok)
	}
	if c.Size() != 1 {
		t.Fatalf("expired entry should be dropped on read, size=%d", c.Size())
	}
}

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a becomes most recent
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a should survive")
	}
	c.Delete("a")
	if c.Size() != 1 {
		t.Fatalf("unexpected size %d", c.Size())
	}
}

func TestCleanExpiredAndManager(t *testing.T) {
	clk := &fakeClock{t: time.Now()}
	c := NewLRUCache[int](10, time.Second).WithClock(clk.now)
	c.Set("a", 1)
	c.Set("b", 2)
	clk.t = clk.t.Add(2 * time.Second)
	c.Set("c", 3)

	m := NewManager(nil)
	m.Register(c)
	if n := m.CleanAll(); n != 2 {
		t.Fatalf("expected 2 removed, got %d", n)
	}
	if c.Size() != 1 {
		t.Fatalf("expected 1 left, got %d", c.Size())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, time.Millisecond) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("manager did not stop")
	}
}
