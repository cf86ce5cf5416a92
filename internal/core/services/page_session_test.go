package services_test

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/lorrc/smartdesk-web/internal/core/domain"
	apperrors "github.com/lorrc/smartdesk-web/internal/core/errors"
	"github.com/lorrc/smartdesk-web/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type countingObserver struct {
	last  int
	swept int
}

func (o *countingObserver) SetPageSessions(n int) { o.last = n }
func (o *countingObserver) SessionsSwept(n int)   { o.swept += n }

func newStore(ttl time.Duration) (*services.PageSessionStore, *fakeClock, *countingObserver) {
	clock := &fakeClock{now: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
	obs := &countingObserver{}
	return services.NewPageSessionStore(ttl,
		services.WithStoreClock(clock.Now),
		services.WithSessionObserver(obs),
	), clock, obs
}

func TestPageSessionStore_CreateAndGet(t *testing.T) {
	store, _, obs := newStore(time.Minute)
	list := services.NewTicketList(sampleTickets(), true)

	created := store.Create("owner-7", services.PageDashboard, domain.SortByDate, &domain.Stats{Total: 4}, list)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, 1, obs.last)

	got, err := store.Get(created.ID, "owner-7", services.PageDashboard)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Stats.Total)
	assert.Len(t, got.List.Rows(), 4)
}

func TestPageSessionStore_GetErrors(t *testing.T) {
	store, clock, _ := newStore(time.Minute)
	created := store.Create("owner-7", services.PageDashboard, domain.SortByDate, &domain.Stats{}, services.NewTicketList(nil, true))

	_, err := store.Get("", "owner-7", services.PageDashboard)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	_, err = store.Get("missing", "owner-7", services.PageDashboard)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	_, err = store.Get(created.ID, "owner-8", services.PageDashboard)
	assert.ErrorIs(t, err, apperrors.ErrSessionForbidden)

	_, err = store.Get(created.ID, "owner-7", services.PageMyTickets)
	assert.ErrorIs(t, err, apperrors.ErrSessionForbidden)

	clock.Advance(2 * time.Minute)
	_, err = store.Get(created.ID, "owner-7", services.PageDashboard)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestPageSessionStore_SaveKeepsFilterAndOpenRow(t *testing.T) {
	store, _, _ := newStore(time.Minute)
	created := store.Create("owner-7", services.PageMyTickets, domain.SortByDate, &domain.Stats{}, services.NewTicketList(sampleTickets(), false))

	created.List.SetFilter("Pending")
	created.List.SetOpen(3)

	fresh, err := store.Get(created.ID, "owner-7", services.PageMyTickets)
	require.NoError(t, err)
	assert.Equal(t, domain.FilterAll, fresh.List.Filter(), "copies are not shared until saved")

	store.Save(created)

	saved, err := store.Get(created.ID, "owner-7", services.PageMyTickets)
	require.NoError(t, err)
	assert.Equal(t, "Pending", saved.List.Filter())
	assert.Equal(t, int64(3), openRow(saved.List))
}

func TestPageSessionStore_InvalidateWinsOverSave(t *testing.T) {
	store, _, obs := newStore(time.Minute)
	created := store.Create("owner-7", services.PageDashboard, domain.SortByDate, &domain.Stats{}, services.NewTicketList(nil, true))

	store.Invalidate(created.ID, "owner-7")
	assert.Equal(t, 0, obs.last)

	store.Save(created)
	_, err := store.Get(created.ID, "owner-7", services.PageDashboard)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestPageSessionStore_InvalidateIgnoresOtherOwners(t *testing.T) {
	store, _, _ := newStore(time.Minute)
	created := store.Create("owner-7", services.PageDashboard, domain.SortByDate, &domain.Stats{}, services.NewTicketList(nil, true))

	store.Invalidate(created.ID, "owner-8")
	_, err := store.Get(created.ID, "owner-7", services.PageDashboard)
	assert.NoError(t, err)
}

func TestPageSessionStore_EmptyOwnerIsNeverStored(t *testing.T) {
	store, _, _ := newStore(time.Minute)

	created := store.Create("", services.PageMyTickets, domain.SortByDate, &domain.Stats{Total: 2}, services.NewTicketList(sampleTickets(), false))
	assert.Empty(t, created.ID)
	assert.Equal(t, int64(2), created.Stats.Total)
	assert.Equal(t, 0, store.Len())

	stored := store.Create("owner-7", services.PageMyTickets, domain.SortByDate, &domain.Stats{}, services.NewTicketList(nil, false))
	_, err := store.Get(stored.ID, "", services.PageMyTickets)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestPageSessionStore_SweepRemovesExpired(t *testing.T) {
	store, clock, obs := newStore(time.Minute)
	old := store.Create("owner-1", services.PageDashboard, domain.SortByDate, &domain.Stats{}, services.NewTicketList(nil, true))

	clock.Advance(40 * time.Second)
	fresh := store.Create("owner-2", services.PageDashboard, domain.SortByDate, &domain.Stats{}, services.NewTicketList(nil, true))

	clock.Advance(30 * time.Second)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, obs.swept)
	assert.Equal(t, 1, obs.last)

	_, err := store.Get(old.ID, "owner-1", services.PageDashboard)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	_, err = store.Get(fresh.ID, "owner-2", services.PageDashboard)
	assert.NoError(t, err)
}

func TestPageSessionStore_GetExtendsExpiry(t *testing.T) {
	store, clock, _ := newStore(time.Minute)
	created := store.Create("owner-1", services.PageDashboard, domain.SortByDate, &domain.Stats{}, services.NewTicketList(nil, true))

	for i := 0; i < 3; i++ {
		clock.Advance(45 * time.Second)
		_, err := store.Get(created.ID, "owner-1", services.PageDashboard)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, store.Sweep())
}

func TestNewSessionSweeper(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := services.NewPageSessionStore(time.Minute)

	c, err := services.NewSessionSweeper(store, "@every 1m", logger)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)

	_, err = services.NewSessionSweeper(store, "every now and then", logger)
	assert.Error(t, err)
}
