package service

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pharmalink/portal-client/internal/core/domain"
	"github.com/pharmalink/portal-client/internal/core/ports"
	"github.com/pharmalink/portal-client/internal/pkg/metrics"
)

// NotificationStore holds the fetched notification list and applies
// optimistic mutations against it.
//
// Rollback policy is declared per operation: MarkRead and MarkAllRead never
// roll back (read state is a low-stakes, eventually-consistent affordance;
// failures are logged), Delete always rolls back (data loss is user-visible
// and retrying a confirmed delete risks duplicate-delete errors).
type NotificationStore struct {
	api     ports.NotificationAPI
	tokens  ports.TokenSource
	cache   *UnreadCache
	archive ports.NotificationArchive // optional, nil disables offline fallback
	log     zerolog.Logger

	mu       sync.Mutex
	records  []domain.Notification
	fetchErr error
}

func NewNotificationStore(api ports.NotificationAPI, tokens ports.TokenSource, cache *UnreadCache, archive ports.NotificationArchive, log zerolog.Logger) *NotificationStore {
	return &NotificationStore{
		api:     api,
		tokens:  tokens,
		cache:   cache,
		archive: archive,
		log:     log,
	}
}

// FetchPage replaces the in-memory list with server truth for that page. On
// failure the list is left as-is and the error is both recorded (for the
// caller to render) and returned. A page at offset 0 also reconciles the
// unread cache with the page's unread tally, sequence-guarded so a racing
// poll response cannot clobber a newer fetch.
func (s *NotificationStore) FetchPage(ctx context.Context, limit, offset int) error {
	token, ok := s.tokens.Token()
	if !ok {
		return domain.ErrNoSession
	}
	epoch := s.tokens.Epoch()
	seq := s.cache.Begin()

	page, err := s.api.List(ctx, token, limit, offset)
	if err != nil {
		s.mu.Lock()
		s.fetchErr = err
		s.mu.Unlock()
		s.log.Warn().Err(err).Int("limit", limit).Int("offset", offset).Msg("notification fetch failed")
		return err
	}

	if epoch != s.tokens.Epoch() {
		s.log.Debug().Msg("discarding notification page from a previous session")
		return nil
	}

	sortNewestFirst(page)

	s.mu.Lock()
	s.records = page
	s.fetchErr = nil
	s.mu.Unlock()

	if offset == 0 {
		unread, hasHigh := tally(page)
		s.cache.Reconcile(seq, domain.UnreadSnapshot{Count: unread, HasHighPriority: hasHigh})
	}

	if s.archive != nil {
		if err := s.archive.ReplaceAll(ctx, page); err != nil {
			s.log.Debug().Err(err).Msg("failed to archive notification page")
		}
	}
	return nil
}

// LoadOffline populates the list from the local archive, for rendering a
// last-known feed while the backend is unreachable. No-op without an archive.
func (s *NotificationStore) LoadOffline(ctx context.Context, limit int) error {
	if s.archive == nil {
		return nil
	}

	records, err := s.archive.LoadRecent(ctx, limit)
	if err != nil {
		return err
	}
	sortNewestFirst(records)

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()

	if snap, err := s.archive.LoadSnapshot(ctx); err == nil && snap != nil {
		s.cache.Reconcile(s.cache.Begin(), *snap)
	}
	return nil
}

// MarkRead optimistically flags one record as read. Read state only ever
// moves false to true; marking an already-read record is a no-op that skips
// the server call. Server failure is logged, never rolled back.
func (s *NotificationStore) MarkRead(ctx context.Context, id string) error {
	token, ok := s.tokens.Token()
	if !ok {
		return domain.ErrNoSession
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.ErrNotificationNotFound
	}
	if s.records[idx].IsRead {
		s.mu.Unlock()
		return nil
	}
	s.records[idx].IsRead = true
	s.mu.Unlock()

	s.cache.Add(-1)

	if _, err := s.api.MarkRead(ctx, token, id); err != nil {
		metrics.MutationsTotal.WithLabelValues("mark_read", "error").Inc()
		s.log.Warn().Err(err).Str("id", id).Msg("mark-read failed server-side, keeping optimistic state")
		return nil
	}
	metrics.MutationsTotal.WithLabelValues("mark_read", "ok").Inc()
	return nil
}

// MarkAllRead optimistically flags the whole list as read and zeroes the
// badge. Idempotent: when nothing is unread it returns without a server
// call. Server failure is logged, never rolled back.
func (s *NotificationStore) MarkAllRead(ctx context.Context) error {
	token, ok := s.tokens.Token()
	if !ok {
		return domain.ErrNoSession
	}

	s.mu.Lock()
	dirty := false
	for i := range s.records {
		if !s.records[i].IsRead {
			s.records[i].IsRead = true
			dirty = true
		}
	}
	s.mu.Unlock()

	if !dirty && s.cache.Snapshot().Count == 0 {
		return nil
	}
	s.cache.Zero()

	if _, err := s.api.MarkAllRead(ctx, token); err != nil {
		metrics.MutationsTotal.WithLabelValues("mark_all_read", "error").Inc()
		s.log.Warn().Err(err).Msg("mark-all-read failed server-side, keeping optimistic state")
		return nil
	}
	metrics.MutationsTotal.WithLabelValues("mark_all_read", "ok").Inc()
	return nil
}

// Delete optimistically removes a record. On confirmed server failure the
// record is restored in sorted position with its original read state and the
// badge is restored, and the error is returned for the caller to render.
func (s *NotificationStore) Delete(ctx context.Context, id string) error {
	token, ok := s.tokens.Token()
	if !ok {
		return domain.ErrNoSession
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return domain.ErrNotificationNotFound
	}
	removed := s.records[idx]
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	s.mu.Unlock()

	if !removed.IsRead {
		s.cache.Add(-1)
	}

	if err := s.api.Delete(ctx, token, id); err != nil {
		s.mu.Lock()
		s.records = append(s.records, removed)
		sortNewestFirst(s.records)
		s.mu.Unlock()
		if !removed.IsRead {
			s.cache.Add(1)
		}
		metrics.MutationsTotal.WithLabelValues("delete", "rolled_back").Inc()
		s.log.Warn().Err(err).Str("id", id).Msg("delete failed server-side, record restored")
		return err
	}
	metrics.MutationsTotal.WithLabelValues("delete", "ok").Inc()
	return nil
}

// Snapshot returns a copy of the current list, newest first.
func (s *NotificationStore) Snapshot() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, len(s.records))
	copy(out, s.records)
	return out
}

// Err returns the error recorded by the last failed fetch, cleared by the
// next successful one.
func (s *NotificationStore) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchErr
}

// Reset drops all local state. Called on logout.
func (s *NotificationStore) Reset() {
	s.mu.Lock()
	s.records = nil
	s.fetchErr = nil
	s.mu.Unlock()
}

// indexOf returns the position of id in records, or -1. Caller holds s.mu.
func (s *NotificationStore) indexOf(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

func sortNewestFirst(records []domain.Notification) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Newer(records[j])
	})
}

func tally(records []domain.Notification) (unread int, hasHigh bool) {
	for _, n := range records {
		if n.IsRead {
			continue
		}
		unread++
		if n.Priority == domain.PriorityHigh {
			hasHigh = true
		}
	}
	return unread, hasHigh
}
