package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lorrc/smartdesk-web/internal/core/domain"
	apperrors "github.com/lorrc/smartdesk-web/internal/core/errors"
	"github.com/lorrc/smartdesk-web/internal/core/ports"
)

// TicketDesk loads ticket pages and dispatches ticket mutations.
// It never patches cached tickets: a successful mutation drops the page
// session so the next render fetches stats and tickets again.
type TicketDesk struct {
	backend  ports.TicketGateway
	sessions *PageSessionStore
	logger   *slog.Logger
}

func NewTicketDesk(backend ports.TicketGateway, sessions *PageSessionStore, logger *slog.Logger) *TicketDesk {
	return &TicketDesk{
		backend:  backend,
		sessions: sessions,
		logger:   logger.With("service", "ticket_desk"),
	}
}

// OpenParams identifies the page being rendered. Owner is the digest of the
// caller's backend session (see auth.SessionDigest); empty disables caching.
type OpenParams struct {
	SessionID string
	Owner     string
	Page      string
	Sort      domain.TicketSort
}

// PageRef names the page session a mutation was sent from.
type PageRef struct {
	SessionID string
	Owner     string
}

// Open returns the page session to render. A live session of the same owner,
// page and sort is reused; anything else triggers a full fetch.
// The bool result reports whether the session came from the cache.
func (d *TicketDesk) Open(ctx context.Context, p OpenParams) (*PageSession, bool, error) {
	if p.Sort == "" {
		p.Sort = domain.SortByDate
	}

	cached, err := d.sessions.Get(p.SessionID, p.Owner, p.Page)
	switch {
	case err == nil && cached.Sort == p.Sort:
		return cached, true, nil
	case errors.Is(err, apperrors.ErrSessionForbidden):
		d.logger.WarnContext(ctx, "page session owned by another backend session", "page", p.Page)
	}

	session, err := d.load(ctx, p)
	if err != nil {
		return nil, false, err
	}
	return session, false, nil
}

// load fetches stats first, then tickets, as the pages display them in that order.
func (d *TicketDesk) load(ctx context.Context, p OpenParams) (*PageSession, error) {
	stats, err := d.backend.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}

	tickets, err := d.backend.ListTickets(ctx, p.Sort)
	if err != nil {
		return nil, fmt.Errorf("load tickets: %w", err)
	}

	list := NewTicketList(tickets, stats.IsAdmin)
	return d.sessions.Create(p.Owner, p.Page, p.Sort, stats, list), nil
}

// Remember persists the filter and open row of a rendered session.
func (d *TicketDesk) Remember(session *PageSession) {
	d.sessions.Save(session)
}

// UpdateTicket sends a partial update. Only the non-nil fields are sent.
func (d *TicketDesk) UpdateTicket(ctx context.Context, ref PageRef, id int64, params domain.UpdateTicketParams) error {
	if id <= 0 {
		return apperrors.ErrInvalidTicketID
	}
	if params.Status == nil && params.AdminNotes == nil {
		return apperrors.ErrNothingToUpdate
	}
	if params.Status != nil && !params.Status.IsValid() {
		return apperrors.ErrInvalidStatus
	}

	if err := d.backend.UpdateTicket(ctx, id, params); err != nil {
		d.logger.ErrorContext(ctx, "ticket update failed", "ticket_id", id, "error", err)
		return err
	}

	d.sessions.Invalidate(ref.SessionID, ref.Owner)
	d.logger.InfoContext(ctx, "ticket updated", "ticket_id", id)
	return nil
}

// DeleteTicket removes a ticket. The backend enforces ownership.
func (d *TicketDesk) DeleteTicket(ctx context.Context, ref PageRef, id int64) error {
	if id <= 0 {
		return apperrors.ErrInvalidTicketID
	}

	if err := d.backend.DeleteTicket(ctx, id); err != nil {
		d.logger.ErrorContext(ctx, "ticket delete failed", "ticket_id", id, "error", err)
		return err
	}

	d.sessions.Invalidate(ref.SessionID, ref.Owner)
	d.logger.InfoContext(ctx, "ticket deleted", "ticket_id", id)
	return nil
}
