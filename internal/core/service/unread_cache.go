package service

import (
	"sync"

	"github.com/pharmalink/portal-client/internal/core/domain"
)

// UnreadCache is the single shared unread snapshot behind the badge. Server
// reconciliations (poll ticks, full fetches) race freely; each takes a
// sequence number at request start and the cache applies last-writer-wins, so
// a slow response arriving after a faster one is discarded whole rather than
// merged. Local optimistic deltas bypass the sequence and are clamped at
// zero.
type UnreadCache struct {
	mu      sync.Mutex
	nextSeq uint64
	applied uint64 // highest sequence reconciled so far
	snap    domain.UnreadSnapshot
}

func NewUnreadCache() *UnreadCache {
	return &UnreadCache{}
}

// Begin issues a sequence number for a server round-trip about to start.
func (c *UnreadCache) Begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSeq++
	return c.nextSeq
}

// Reconcile replaces the snapshot with server truth. Returns false when a
// newer response already landed and this one was discarded.
func (c *UnreadCache) Reconcile(seq uint64, snap domain.UnreadSnapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq <= c.applied {
		return false
	}
	if snap.Count < 0 {
		snap.Count = 0
	}
	c.applied = seq
	c.snap = snap
	return true
}

// Add applies a local optimistic delta, clamped so the count never goes
// negative. A concurrent delete and mark-all-read on the same record cannot
// push the badge below zero.
func (c *UnreadCache) Add(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Count += delta
	if c.snap.Count < 0 {
		c.snap.Count = 0
	}
	if c.snap.Count == 0 {
		c.snap.HasHighPriority = false
	}
}

// Zero resets the snapshot after a bulk mark-all-read.
func (c *UnreadCache) Zero() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = domain.UnreadSnapshot{}
}

// Snapshot returns the current badge state.
func (c *UnreadCache) Snapshot() domain.UnreadSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}
