package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/backoffice/users-api/internal/core/domain"
)

type recordingAuditRepo struct {
	mu     sync.Mutex
	events []domain.AuditEvent
	done   chan struct{}
	want   int
}

func newRecordingAuditRepo(want int) *recordingAuditRepo {
	return &recordingAuditRepo{done: make(chan struct{}), want: want}
}

func (r *recordingAuditRepo) Insert(_ context.Context, event *domain.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *event)
	if len(r.events) == r.want {
		close(r.done)
	}
	return nil
}

func (r *recordingAuditRepo) FindByUserID(context.Context, int) ([]domain.AuditEvent, error) {
	return nil, nil
}

func (r *recordingAuditRepo) wait(t *testing.T) []domain.AuditEvent {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %d audit events", r.want)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditEvent, len(r.events))
	copy(out, r.events)
	return out
}

func TestAuditDispatcher_PersistsEvents(t *testing.T) {
	repo := newRecordingAuditRepo(3)
	d := NewAuditDispatcher(2, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Record(domain.AuditEvent{UserID: 1, Action: domain.AuditCreated})
	d.Record(domain.AuditEvent{UserID: 2, Action: domain.AuditUpdated})
	d.Record(domain.AuditEvent{UserID: 3, Action: domain.AuditDeleted})

	events := repo.wait(t)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
}

func TestAuditDispatcher_SameUserStaysOrdered(t *testing.T) {
	const n = 20
	repo := newRecordingAuditRepo(n)
	d := NewAuditDispatcher(4, repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	actions := []domain.AuditAction{domain.AuditCreated, domain.AuditUpdated, domain.AuditDeleted}
	for i := 0; i < n; i++ {
		d.Record(domain.AuditEvent{UserID: 5, Action: actions[i%len(actions)]})
	}

	events := repo.wait(t)
	for i, ev := range events {
		if ev.Action != actions[i%len(actions)] {
			t.Fatalf("event %d out of order: got %s, want %s", i, ev.Action, actions[i%len(actions)])
		}
	}
}

func TestAuditDispatcher_ShardIsDeterministic(t *testing.T) {
	d := NewAuditDispatcher(4, newRecordingAuditRepo(0), zerolog.Nop())

	for _, id := range []int{0, 1, 7, 42, 1000} {
		first := d.shardIndex(id)
		for i := 0; i < 5; i++ {
			if got := d.shardIndex(id); got != first {
				t.Fatalf("shard for user %d changed: %d then %d", id, first, got)
			}
		}
		if first < 0 || first >= 4 {
			t.Fatalf("shard for user %d out of range: %d", id, first)
		}
	}
}

func TestAuditDispatcher_DropsWhenQueueFull(t *testing.T) {
	repo := newRecordingAuditRepo(0)
	d := NewAuditDispatcher(1, repo, zerolog.Nop())
	// No Start: the single worker channel fills up and later records drop
	// instead of blocking the caller.

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Record(domain.AuditEvent{UserID: 1, Action: domain.AuditCreated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on a full queue")
	}
	if got := len(d.workers[0]); got != channelBuffer {
		t.Fatalf("expected buffer to hold %d events, got %d", channelBuffer, got)
	}
}
