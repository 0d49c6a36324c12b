package redis

import (
	"context"
	"testing"
	"time"
)

func TestResetThrottle_OnePerWindow(t *testing.T) {
	mr, client := newTestClient(t)
	th := NewResetThrottle(client, time.Minute)
	ctx := context.Background()

	ok, err := th.Allow(ctx, "a@b.com")
	if err != nil || !ok {
		t.Fatalf("first request should pass, got %v, %v", ok, err)
	}

	ok, err = th.Allow(ctx, " A@B.com ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("second request within the window should be throttled")
	}

	ok, _ = th.Allow(ctx, "other@b.com")
	if !ok {
		t.Fatalf("a different email must not be throttled")
	}

	mr.FastForward(61 * time.Second)
	ok, err = th.Allow(ctx, "a@b.com")
	if err != nil || !ok {
		t.Fatalf("request after the window should pass, got %v, %v", ok, err)
	}
}

func TestResetThrottle_Unavailable(t *testing.T) {
	mr, client := newTestClient(t)
	th := NewResetThrottle(client, time.Minute)
	mr.Close()

	if _, err := th.Allow(context.Background(), "a@b.com"); err == nil {
		t.Fatalf("expected error when redis is down")
	}
}
