package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nutridata/portal/internal/core/domain"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []domain.AuthEvent
	err    error
}

func (r *recordingRepo) InsertEvent(_ context.Context, ev *domain.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, *ev)
	return nil
}

func (r *recordingRepo) snapshot() []domain.AuthEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AuthEvent(nil), r.events...)
}

func TestDispatcher_PreservesPerAccountOrder(t *testing.T) {
	repo := &recordingRepo{}
	d := NewDispatcher(4, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	kinds := []domain.AuthEventKind{
		domain.EventLoginFailed,
		domain.EventLoginSucceeded,
		domain.EventLogout,
	}
	for _, k := range kinds {
		if !d.Enqueue(domain.AuthEvent{Kind: k, Email: "doc@example.com"}) {
			t.Fatalf("enqueue failed")
		}
	}
	d.Enqueue(domain.AuthEvent{Kind: domain.EventPasswordResetRequested, Email: "other@example.com"})

	cancel()
	d.Wait()

	var mine []domain.AuthEventKind
	for _, ev := range repo.snapshot() {
		if ev.Email == "doc@example.com" {
			mine = append(mine, ev.Kind)
		}
	}
	if len(mine) != len(kinds) {
		t.Fatalf("expected %d events, got %d", len(kinds), len(mine))
	}
	for i := range kinds {
		if mine[i] != kinds[i] {
			t.Fatalf("event %d out of order: got %s, want %s", i, mine[i], kinds[i])
		}
	}
	if len(repo.snapshot()) != 4 {
		t.Fatalf("expected all events written, got %d", len(repo.snapshot()))
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingRepo{}, zerolog.Nop())
	a := d.shardIndex("Doc@Example.com")
	b := d.shardIndex("doc@example.com")
	if a != b {
		t.Fatalf("shard index should ignore case: %d vs %d", a, b)
	}
	if a < 0 || a >= 8 {
		t.Fatalf("shard index out of range: %d", a)
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	d := NewDispatcher(1, &recordingRepo{}, zerolog.Nop())

	// Not started: nothing consumes the channel.
	for i := 0; i < channelBuffer; i++ {
		if !d.Enqueue(domain.AuthEvent{Email: "a@b.com"}) {
			t.Fatalf("enqueue %d should fit in the buffer", i)
		}
	}
	if d.Enqueue(domain.AuthEvent{Email: "a@b.com"}) {
		t.Fatalf("expected enqueue to report a dropped event")
	}
}

func TestDispatcher_WriteFailureIsNotFatal(t *testing.T) {
	repo := &recordingRepo{err: errors.New("mongo down")}
	d := NewDispatcher(1, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Enqueue(domain.AuthEvent{Kind: domain.EventLogout, Email: "a@b.com"})

	done := make(chan struct{})
	go func() {
		cancel()
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("dispatcher did not stop")
	}
}
