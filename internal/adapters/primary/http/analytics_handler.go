package http

import (
	"errors"
	"log/slog"
	"net/http"

	mw "github.com/lorrc/smartdesk-web/internal/adapters/primary/http/middleware"
	apperrors "github.com/lorrc/smartdesk-web/internal/core/errors"
	"github.com/lorrc/smartdesk-web/internal/core/ports"
	"github.com/lorrc/smartdesk-web/internal/core/services"
)

// AnalyticsHandler serves the admin charts, as a page and as JSON.
type AnalyticsHandler struct {
	tickets      ports.TicketGateway
	charts       *services.ChartBuilder
	renderer     *Renderer
	notifier     *Notifier
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(
	tickets ports.TicketGateway,
	charts *services.ChartBuilder,
	renderer *Renderer,
	notifier *Notifier,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		tickets:      tickets,
		charts:       charts,
		renderer:     renderer,
		notifier:     notifier,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "analytics"),
	}
}

// HandleAnalytics renders the analytics page with its chart descriptors inlined.
func (h *AnalyticsHandler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tickets.Stats(r.Context())
	if errors.Is(err, apperrors.ErrUnauthorized) {
		http.Redirect(w, r, mw.LoginPath, http.StatusFound)
		return
	}
	if err != nil {
		h.errorHandler.HandlePage(w, r, err)
		return
	}

	view := h.charts.Analytics(stats)
	h.renderer.Render(w, r, http.StatusOK, PageAnalytics, &PageData{
		Title:   "Analytics | SmartDesk",
		User:    mw.SessionFrom(r.Context()),
		Active:  PageAnalytics,
		Toast:   h.notifier.Pop(w, r),
		Content: &view,
		source:  SourceBackend,
	})
}

// HandleCharts returns the same chart descriptors as JSON.
func (h *AnalyticsHandler) HandleCharts(w http.ResponseWriter, r *http.Request) {
	stats, err := h.tickets.Stats(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.charts.Analytics(stats))
}
