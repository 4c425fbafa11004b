package cache_test

import (
	"testing"
	"time"

	"github.com/notesaas/notehub/internal/cache"
)

func TestSetGetDelete(t *testing.T) {
	c := cache.New(time.Minute)

	c.Set("k", "v")

	got, ok := c.Get("k")

	if !ok || got != "v" {
		t.Fatalf("got %v ok=%v, want v", got, ok)
	}

	c.Delete("k")

	_, ok = c.Get("k")

	if ok {
		t.Fatal("expected key deleted")
	}
}

func TestEntriesExpire(t *testing.T) {
	c := cache.New(10 * time.Millisecond)

	c.Set("k", "v")

	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("k")

	if ok {
		t.Fatal("expected entry to expire")
	}
}

func TestClear(t *testing.T) {
	c := cache.New(time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected cache cleared")
	}
}
