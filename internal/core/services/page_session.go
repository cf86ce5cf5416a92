package services

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/lorrc/smartdesk-web/internal/core/domain"
	apperrors "github.com/lorrc/smartdesk-web/internal/core/errors"
)

// Page names used to scope page sessions.
const (
	PageDashboard = "dashboard"
	PageMyTickets = "my-tickets"
)

// SessionObserver receives page session gauge updates. *metrics.Metrics implements it.
type SessionObserver interface {
	SetPageSessions(n int)
	SessionsSwept(n int)
}

// PageSession is the cached state behind one rendered ticket page.
// Filter and toggle requests re-render from it without refetching.
type PageSession struct {
	ID      string
	Owner   string // digest of the backend session that loaded it
	Page    string
	Sort    domain.TicketSort
	Stats   *domain.Stats
	List    *TicketList

	expiresAt time.Time
}

func (p *PageSession) clone() *PageSession {
	c := *p
	if p.List != nil {
		c.List = p.List.Clone()
	}
	return &c
}

// PageSessionStore keeps page sessions in memory until they expire or a mutation invalidates them.
// Callers always get copies, so concurrent requests on one session cannot race on its filter.
type PageSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*PageSession
	ttl      time.Duration
	now      func() time.Time
	observer SessionObserver
}

// StoreOption configures a PageSessionStore.
type StoreOption func(*PageSessionStore)

// WithStoreClock overrides time.Now, for tests.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *PageSessionStore) { s.now = now }
}

// WithSessionObserver reports the session count after every change.
func WithSessionObserver(o SessionObserver) StoreOption {
	return func(s *PageSessionStore) { s.observer = o }
}

func NewPageSessionStore(ttl time.Duration, opts ...StoreOption) *PageSessionStore {
	s := &PageSessionStore{
		sessions: make(map[string]*PageSession),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stores a new session and returns a copy of it. An empty owner cannot
// be told apart from other anonymous owners, so its session is returned unstored
// and without an id.
func (s *PageSessionStore) Create(owner string, page string, sort domain.TicketSort, stats *domain.Stats, list *TicketList) *PageSession {
	if owner == "" {
		return &PageSession{Page: page, Sort: sort, Stats: stats, List: list}
	}

	p := &PageSession{
		ID:        uuid.NewString(),
		Owner:     owner,
		Page:      page,
		Sort:      sort,
		Stats:     stats,
		List:      list,
		expiresAt: s.now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[p.ID] = p
	n := len(s.sessions)
	s.mu.Unlock()

	s.report(n)
	return p.clone()
}

// Get returns a copy of a live session. A missing or expired id yields
// ErrSessionNotFound; a session owned by another backend session or page yields ErrSessionForbidden.
func (s *PageSessionStore) Get(id string, owner string, page string) (*PageSession, error) {
	if id == "" || owner == "" {
		return nil, apperrors.ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.sessions[id]
	if !ok || !s.now().Before(p.expiresAt) {
		return nil, apperrors.ErrSessionNotFound
	}
	if p.Owner != owner || p.Page != page {
		return nil, apperrors.ErrSessionForbidden
	}
	p.expiresAt = s.now().Add(s.ttl)
	return p.clone(), nil
}

// Save writes back the filter and open row of a session copy.
// A session invalidated in the meantime stays gone.
func (s *PageSessionStore) Save(p *PageSession) {
	if p == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[p.ID]
	if !ok || current.Owner != p.Owner {
		return
	}
	saved := p.clone()
	saved.expiresAt = s.now().Add(s.ttl)
	s.sessions[p.ID] = saved
}

// Invalidate drops a session so the next render refetches.
// Sessions of other owners are left alone.
func (s *PageSessionStore) Invalidate(id string, owner string) {
	s.mu.Lock()
	if p, ok := s.sessions[id]; ok && p.Owner == owner {
		delete(s.sessions, id)
	}
	n := len(s.sessions)
	s.mu.Unlock()

	s.report(n)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *PageSessionStore) Sweep() int {
	s.mu.Lock()
	now := s.now()
	removed := 0
	for id, p := range s.sessions {
		if !now.Before(p.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	s.report(n)
	if s.observer != nil {
		s.observer.SessionsSwept(removed)
	}
	return removed
}

// Len returns the number of stored sessions, expired or not.
func (s *PageSessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *PageSessionStore) report(n int) {
	if s.observer != nil {
		s.observer.SetPageSessions(n)
	}
}

// NewSessionSweeper schedules store.Sweep on a cron spec such as "@every 1m".
// The caller starts and stops the returned scheduler.
func NewSessionSweeper(store *PageSessionStore, spec string, logger *slog.Logger) (*cron.Cron, error) {
	logger = logger.With("component", "page_session_sweeper")

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if removed := store.Sweep(); removed > 0 {
			logger.Debug("expired page sessions removed", "removed", removed, "remaining", store.Len())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	return c, nil
}
