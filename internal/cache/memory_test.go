package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemorySetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	if _, ok := c.Get(ctx, "code-1"); ok {
		t.Fatal("empty cache reported a hit")
	}

	c.Set(ctx, "code-1", []byte(`{"status":"Pending"}`))

	got, ok := c.Get(ctx, "code-1")

	if !ok || string(got) != `{"status":"Pending"}` {
		t.Fatalf("got %q ok=%v, want payload hit", got, ok)
	}

	c.Invalidate(ctx, "code-1")

	if _, ok := c.Get(ctx, "code-1"); ok {
		t.Fatal("hit after invalidation")
	}
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(10 * time.Millisecond)

	c.Set(ctx, "code-2", []byte("x"))

	time.Sleep(25 * time.Millisecond)

	if _, ok := c.Get(ctx, "code-2"); ok {
		t.Fatal("hit after ttl expiry")
	}
}
