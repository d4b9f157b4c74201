package redis

import (
	"context"
	"testing"
)

func TestKeyBuilders(t *testing.T) {
	client := &Client{}

	if got := client.IdempotencyKey("checkout", "abc"); got != "fv:idempotency:checkout:abc" {
		t.Fatalf("unexpected idempotency key %q", got)
	}
	if got := client.CartSessionKey("sess-1", "cart"); got != "fv:cartsession:sess-1:cart" {
		t.Fatalf("unexpected cart session key %q", got)
	}
	if got := client.CartSessionKey("sess-1", ""); got != "fv:cartsession:sess-1" {
		t.Fatalf("empty slot should collapse, got %q", got)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	ctx := context.Background()
	if err := client.Set(ctx, "k", "v", 0); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if _, err := client.Get(ctx, "k"); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if err := client.Ping(ctx); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
}
