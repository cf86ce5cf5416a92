package http

import (
	"log/slog"
	"net/http"

	mw "github.com/lorrc/smartdesk-web/internal/adapters/primary/http/middleware"
	"github.com/lorrc/smartdesk-web/internal/adapters/primary/validation"
	"github.com/lorrc/smartdesk-web/internal/core/domain"
	"github.com/lorrc/smartdesk-web/internal/core/services"
)

const myTicketsPath = "/my-tickets"

// MyTicketsHandler serves a user's own tickets with expandable detail rows.
type MyTicketsHandler struct {
	desk         *services.TicketDesk
	renderer     *Renderer
	notifier     *Notifier
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewMyTicketsHandler creates a new my-tickets handler
func NewMyTicketsHandler(
	desk *services.TicketDesk,
	renderer *Renderer,
	notifier *Notifier,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *MyTicketsHandler {
	return &MyTicketsHandler{
		desk:         desk,
		renderer:     renderer,
		notifier:     notifier,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "my_tickets"),
	}
}

// HandleMyTickets renders the table. Query parameters: ps (page session),
// status (filter) and open (the one ticket whose details are shown).
func (h *MyTicketsHandler) HandleMyTickets(w http.ResponseWriter, r *http.Request) {
	r, session, source, ok := openTicketPage(w, r, h.desk, h.errorHandler, services.PageMyTickets, domain.SortByDate)
	if !ok {
		return
	}
	session.List.SetFilter(validation.ParseFilterQueryParam(r))
	session.List.SetOpen(validation.ParseIDQueryParam(r, "open"))
	h.desk.Remember(session)

	h.renderer.Render(w, r, http.StatusOK, PageMyTickets, &PageData{
		Title:   "My Tickets | SmartDesk",
		User:    mw.SessionFrom(r.Context()),
		Active:  PageMyTickets,
		Toast:   h.notifier.Pop(w, r),
		Content: newTicketPageView(myTicketsPath, session),
		source:  source,
	})
}
