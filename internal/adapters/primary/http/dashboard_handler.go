package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	mw "github.com/lorrc/smartdesk-web/internal/adapters/primary/http/middleware"
	"github.com/lorrc/smartdesk-web/internal/adapters/primary/validation"
	"github.com/lorrc/smartdesk-web/internal/auth"
	"github.com/lorrc/smartdesk-web/internal/core/domain"
	apperrors "github.com/lorrc/smartdesk-web/internal/core/errors"
	"github.com/lorrc/smartdesk-web/internal/core/services"
	"github.com/lorrc/smartdesk-web/internal/infrastructure/logging"
)

const dashboardPath = "/dashboard"

// DashboardHandler serves the admin ticket table and its mutations.
type DashboardHandler struct {
	desk         *services.TicketDesk
	renderer     *Renderer
	notifier     *Notifier
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(
	desk *services.TicketDesk,
	renderer *Renderer,
	notifier *Notifier,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		desk:         desk,
		renderer:     renderer,
		notifier:     notifier,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "dashboard"),
	}
}

// RegisterRoutes sets up the routing for the dashboard. The caller applies the admin guard.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleDashboard)
	r.Route("/tickets/{ticketID}", func(r chi.Router) {
		r.Post("/status", h.HandleUpdateStatus)
		r.Post("/delete", h.HandleDelete)
	})
}

// HandleDashboard renders the ticket table. Query parameters:
// ps (page session), status (filter), sort and edit (ticket id of the status dialog).
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	r, session, source, ok := openTicketPage(w, r, h.desk, h.errorHandler, services.PageDashboard, validation.ParseSortQueryParam(r))
	if !ok {
		return
	}
	session.List.SetFilter(validation.ParseFilterQueryParam(r))
	h.desk.Remember(session)

	view := newTicketPageView(dashboardPath, session)
	if editID := validation.ParseIDQueryParam(r, "edit"); editID > 0 {
		for i := range view.Rows {
			if view.Rows[i].ID == editID {
				view.Edit = &view.Rows[i]
				break
			}
		}
	}

	title := "Dashboard | SmartDesk"
	if session.Stats.IsAdmin {
		title = "Admin Dashboard | SmartDesk"
	}
	h.renderer.Render(w, r, http.StatusOK, PageDashboard, &PageData{
		Title:   title,
		User:    mw.SessionFrom(r.Context()),
		Active:  PageDashboard,
		Toast:   h.notifier.Pop(w, r),
		Content: view,
		source:  source,
	})
}

// HandleUpdateStatus applies the status dialog: a new status and optional admin notes.
func (h *DashboardHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ret := returnTo(r)

	id, err := validation.ParseTicketID(chi.URLParam(r, "ticketID"))
	if err != nil {
		redirectWithToast(w, r, h.notifier, ret.cached(), dashboardToast(ToastError, "Failed to update ticket"))
		return
	}
	status, err := validation.StatusForm(r)
	if err != nil {
		redirectWithToast(w, r, h.notifier, ret.cached(), dashboardToast(ToastError, apperrors.UserMessage(err, "Failed to update ticket")))
		return
	}

	params := domain.UpdateTicketParams{Status: &status}
	if notes := strings.TrimSpace(r.PostFormValue("admin_notes")); notes != "" {
		params.AdminNotes = &notes
	}

	err = h.desk.UpdateTicket(r.Context(), ret.pageRef(r), id, params)
	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		http.Redirect(w, r, mw.LoginPath, http.StatusSeeOther)
	case err != nil:
		redirectWithToast(w, r, h.notifier, ret.cached(), dashboardToast(ToastError, "Failed to update ticket"))
	default:
		redirectWithToast(w, r, h.notifier, ret.fresh(), dashboardToast(ToastInfo, `Ticket updated to "`+string(status)+`"`))
	}
}

// HandleDelete removes a ticket.
func (h *DashboardHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ret := returnTo(r)

	id, err := validation.ParseTicketID(chi.URLParam(r, "ticketID"))
	if err != nil {
		redirectWithToast(w, r, h.notifier, ret.cached(), dashboardToast(ToastError, "Failed to delete ticket"))
		return
	}

	err = h.desk.DeleteTicket(r.Context(), ret.pageRef(r), id)
	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		http.Redirect(w, r, mw.LoginPath, http.StatusSeeOther)
	case err != nil:
		redirectWithToast(w, r, h.notifier, ret.cached(), dashboardToast(ToastError, "Failed to delete ticket"))
	default:
		redirectWithToast(w, r, h.notifier, ret.fresh(), dashboardToast(ToastInfo, "Ticket deleted"))
	}
}

func dashboardToast(kind ToastKind, message string) *Toast {
	return toast(kind, message, DashboardToastDuration)
}

// openTicketPage resolves the page session for a ticket table and returns the
// request tagged with its id. On failure the response has been written and ok is false.
func openTicketPage(
	w http.ResponseWriter,
	r *http.Request,
	desk *services.TicketDesk,
	errorHandler *ErrorHandler,
	page string,
	sort domain.TicketSort,
) (*http.Request, *services.PageSession, string, bool) {
	user := mw.SessionFrom(r.Context())
	if user == nil {
		http.Redirect(w, r, mw.LoginPath, http.StatusFound)
		return r, nil, "", false
	}

	session, cached, err := desk.Open(r.Context(), services.OpenParams{
		SessionID: r.URL.Query().Get("ps"),
		Owner:     auth.SessionDigest(r.Context()),
		Page:      page,
		Sort:      sort,
	})
	if errors.Is(err, apperrors.ErrUnauthorized) {
		http.Redirect(w, r, mw.LoginPath, http.StatusFound)
		return r, nil, "", false
	}
	if err != nil {
		errorHandler.HandlePage(w, r, err)
		return r, nil, "", false
	}

	r = r.WithContext(logging.WithPageSession(r.Context(), session.ID))
	if cached {
		return r, session, SourceCache, true
	}
	return r, session, SourceBackend, true
}

// returnLocation is where a mutation redirects back to.
type returnLocation struct {
	path      string
	sessionID string
	filter    string
	sort      string
}

func returnTo(r *http.Request) returnLocation {
	return returnLocation{
		path:      dashboardPath,
		sessionID: r.PostFormValue("ps"),
		filter:    r.PostFormValue("filter"),
		sort:      r.PostFormValue("sort"),
	}
}

// pageRef names the session the form was posted from, owned by the poster.
func (l returnLocation) pageRef(r *http.Request) services.PageRef {
	return services.PageRef{SessionID: l.sessionID, Owner: auth.SessionDigest(r.Context())}
}

// cached keeps the page session so the prior table is shown unchanged.
func (l returnLocation) cached() string {
	return l.build(l.sessionID)
}

// fresh drops the page session so stats and tickets are fetched again.
func (l returnLocation) fresh() string {
	return l.build("")
}

func (l returnLocation) build(sessionID string) string {
	q := url.Values{}
	if sessionID != "" {
		q.Set("ps", sessionID)
	}
	if l.filter != "" && l.filter != domain.FilterAll {
		q.Set("status", l.filter)
	}
	if sort := domain.ParseTicketSort(l.sort); sort != domain.SortByDate {
		q.Set("sort", string(sort))
	}
	if len(q) == 0 {
		return l.path
	}
	return l.path + "?" + q.Encode()
}
