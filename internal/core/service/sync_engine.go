package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pharmalink/portal-client/internal/core/domain"
	"github.com/pharmalink/portal-client/internal/core/ports"
	"github.com/pharmalink/portal-client/internal/pkg/metrics"
)

const (
	defaultPollInterval = 20 * time.Second
	eventBuffer         = 8
)

// EventKind classifies sync engine events.
type EventKind int

const (
	// EventCountChanged fires when the unread count increased without a
	// priority escalation.
	EventCountChanged EventKind = iota

	// EventPriorityEscalated fires when the unread count increased and
	// hasHighPriority transitioned from false to true. It never repeats on
	// consecutive polls while the flag stays elevated.
	EventPriorityEscalated
)

// Event is what subscribers receive on a qualifying poll tick. Exactly one
// event is emitted per tick, and only for count increases.
type Event struct {
	Kind     EventKind
	Snapshot domain.UnreadSnapshot
	Previous domain.UnreadSnapshot
}

// SyncEngine keeps the unread badge synchronized with the backend by polling
// on a fixed interval. It owns only the comparison logic; cues and rendering
// belong to subscribers.
//
// Each tick is an independent goroutine: a slow or never-resolving poll does
// not block the next one. Stale responses are discarded at apply time by
// request-start sequence (last-writer-wins on the snapshot) and by session
// epoch, so results from a just-logged-out session never land.
type SyncEngine struct {
	api      ports.NotificationAPI
	tokens   ports.TokenSource
	cache    *UnreadCache
	archive  ports.NotificationArchive // optional, nil disables
	interval time.Duration
	log      zerolog.Logger

	mu            sync.Mutex
	last          *domain.UnreadSnapshot // nil until the first observation
	baselineEpoch uint64
	subs          map[int]chan Event
	nextSub       int
}

func NewSyncEngine(api ports.NotificationAPI, tokens ports.TokenSource, cache *UnreadCache, archive ports.NotificationArchive, interval time.Duration, log zerolog.Logger) *SyncEngine {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &SyncEngine{
		api:      api,
		tokens:   tokens,
		cache:    cache,
		archive:  archive,
		interval: interval,
		log:      log,
		subs:     make(map[int]chan Event),
	}
}

// Run polls until ctx is cancelled. Cancel on logout or when the owning view
// unmounts; the timer never leaks.
func (e *SyncEngine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	// Immediate first tick so the badge is populated without waiting a full
	// interval.
	go e.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			e.closeSubscribers()
			return
		case <-ticker.C:
			go e.pollOnce(ctx)
		}
	}
}

// RefreshNow performs one immediate poll on behalf of an explicit user
// action. Unlike background ticks, its failure is surfaced to the caller.
func (e *SyncEngine) RefreshNow(ctx context.Context) error {
	return e.pollOnce(ctx)
}

// Subscribe registers an event channel. The returned cancel function removes
// the subscription and closes the channel. Slow subscribers drop events
// rather than stall the engine.
func (e *SyncEngine) Subscribe() (<-chan Event, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextSub
	e.nextSub++
	ch := make(chan Event, eventBuffer)
	e.subs[id] = ch

	return ch, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if sub, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(sub)
		}
	}
}

// Snapshot returns the last applied unread snapshot.
func (e *SyncEngine) Snapshot() domain.UnreadSnapshot {
	return e.cache.Snapshot()
}

func (e *SyncEngine) pollOnce(ctx context.Context) error {
	token, ok := e.tokens.Token()
	if !ok {
		metrics.PollsTotal.WithLabelValues("skipped").Inc()
		return domain.ErrNoSession
	}
	epoch := e.tokens.Epoch()
	seq := e.cache.Begin()

	snap, err := e.api.UnreadCount(ctx, token)
	if err != nil {
		// Best-effort background sync: the baseline stays untouched so a
		// transient failure cannot mask a real increase on the next tick.
		metrics.PollsTotal.WithLabelValues("failed").Inc()
		e.log.Debug().Err(err).Msg("unread poll failed")
		return err
	}

	e.apply(ctx, seq, epoch, snap)
	return nil
}

func (e *SyncEngine) apply(ctx context.Context, seq, epoch uint64, snap domain.UnreadSnapshot) {
	if epoch != e.tokens.Epoch() {
		metrics.PollsTotal.WithLabelValues("stale").Inc()
		e.log.Debug().Msg("discarding poll result from a previous session")
		return
	}
	if !e.cache.Reconcile(seq, snap) {
		metrics.PollsTotal.WithLabelValues("stale").Inc()
		return
	}

	metrics.PollsTotal.WithLabelValues("applied").Inc()
	metrics.UnreadCount.Set(float64(snap.Count))

	if e.archive != nil {
		if err := e.archive.SaveSnapshot(ctx, snap); err != nil {
			e.log.Debug().Err(err).Msg("failed to archive unread snapshot")
		}
	}

	e.mu.Lock()
	prev := e.last
	if e.baselineEpoch != epoch {
		// First observation of this session: establish the baseline without
		// alerting, even if a baseline from a previous session exists.
		prev = nil
		e.baselineEpoch = epoch
	}
	observed := snap
	e.last = &observed
	e.mu.Unlock()

	if prev == nil || snap.Count <= prev.Count {
		return
	}

	event := Event{Kind: EventCountChanged, Snapshot: snap, Previous: *prev}
	if snap.HasHighPriority && !prev.HasHighPriority {
		event.Kind = EventPriorityEscalated
	}
	e.broadcast(event)
}

func (e *SyncEngine) broadcast(event Event) {
	cue := "subtle"
	if event.Kind == EventPriorityEscalated {
		cue = "urgent"
	}
	metrics.AlertsTotal.WithLabelValues(cue).Inc()

	e.mu.Lock()
	defer e.mu.Unlock()
	for id, ch := range e.subs {
		select {
		case ch <- event:
		default:
			e.log.Warn().Str("subscriber", strconv.Itoa(id)).Msg("subscriber full, alert event dropped")
		}
	}
}

func (e *SyncEngine) closeSubscribers() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
}
