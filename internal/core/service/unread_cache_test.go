package service

import (
	"testing"

	"github.com/pharmalink/portal-client/internal/core/domain"
)

func TestUnreadCache_LastWriterWins(t *testing.T) {
	cache := NewUnreadCache()

	slowPoll := cache.Begin()
	manualFetch := cache.Begin()

	if !cache.Reconcile(manualFetch, domain.UnreadSnapshot{Count: 5, HasHighPriority: true}) {
		t.Fatalf("expected newer response to apply")
	}
	if cache.Reconcile(slowPoll, domain.UnreadSnapshot{Count: 2}) {
		t.Fatalf("expected stale response to be discarded")
	}

	snap := cache.Snapshot()
	if snap.Count != 5 || !snap.HasHighPriority {
		t.Fatalf("expected newer snapshot kept whole, got %+v", snap)
	}
}

func TestUnreadCache_AddClampsAtZero(t *testing.T) {
	cache := NewUnreadCache()
	cache.Reconcile(cache.Begin(), domain.UnreadSnapshot{Count: 1, HasHighPriority: true})

	// Concurrent delete and mark-all-read on the same record: two decrements.
	cache.Add(-1)
	cache.Add(-1)

	snap := cache.Snapshot()
	if snap.Count != 0 {
		t.Fatalf("expected count clamped at 0, got %d", snap.Count)
	}
	if snap.HasHighPriority {
		t.Fatalf("expected high-priority flag dropped at zero")
	}
}

func TestUnreadCache_NegativeServerCountClamped(t *testing.T) {
	cache := NewUnreadCache()
	cache.Reconcile(cache.Begin(), domain.UnreadSnapshot{Count: -3})

	if got := cache.Snapshot().Count; got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestUnreadCache_Zero(t *testing.T) {
	cache := NewUnreadCache()
	cache.Reconcile(cache.Begin(), domain.UnreadSnapshot{Count: 7, HasHighPriority: true})
	cache.Zero()

	if snap := cache.Snapshot(); snap.Count != 0 || snap.HasHighPriority {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}
