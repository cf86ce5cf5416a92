package http

import (
	"errors"
	"log/slog"
	"net/http"

	mw "github.com/lorrc/smartdesk-web/internal/adapters/primary/http/middleware"
	"github.com/lorrc/smartdesk-web/internal/adapters/primary/validation"
	"github.com/lorrc/smartdesk-web/internal/core/domain"
	apperrors "github.com/lorrc/smartdesk-web/internal/core/errors"
	"github.com/lorrc/smartdesk-web/internal/core/ports"
	"github.com/lorrc/smartdesk-web/internal/core/services"
)

const (
	msgConnectionError = "Connection error. Please try again."
	msgAnalyzeFirst    = "Please analyze the ticket first"
	msgSignInToSubmit  = "Please sign in to submit tickets"
)

// LandingHandler serves the public landing page and its classifier form.
type LandingHandler struct {
	classifier ports.ClassifierGateway
	showcase   []services.Chart
	renderer   *Renderer
	notifier   *Notifier
	logger     *slog.Logger
}

// NewLandingHandler creates a new landing handler. showcase holds the demo charts.
func NewLandingHandler(
	classifier ports.ClassifierGateway,
	showcase []services.Chart,
	renderer *Renderer,
	notifier *Notifier,
	logger *slog.Logger,
) *LandingHandler {
	return &LandingHandler{
		classifier: classifier,
		showcase:   showcase,
		renderer:   renderer,
		notifier:   notifier,
		logger:     logger.With("handler", "landing"),
	}
}

// HandleLanding renders the landing page.
func (h *LandingHandler) HandleLanding(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, &LandingView{}, h.notifier.Pop(w, r))
}

// HandleAnalyze classifies the draft without storing it.
func (h *LandingHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := validation.AnalysisForm(r)
	view := &LandingView{Subject: req.Subject, Body: req.Body}
	if err != nil {
		h.render(w, r, http.StatusUnprocessableEntity, view, landingToast(ToastError, apperrors.UserMessage(err, "")))
		return
	}

	result, err := h.classifier.Analyze(r.Context(), req)
	if err != nil {
		h.logger.WarnContext(r.Context(), "analysis failed", "error", err)
		h.render(w, r, statusFor(err), view, landingToast(ToastError, failureMessage(err, "Analysis failed")))
		return
	}

	view.Result = result
	view.Analyzed = true
	h.render(w, r, http.StatusOK, view, landingToast(ToastInfo, "Analysis complete! Review and submit when ready."))
}

// HandleSubmit classifies and stores the ticket for the signed-in user.
// A draft must have been analyzed first.
func (h *LandingHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	req, err := validation.AnalysisForm(r)
	view := &LandingView{Subject: req.Subject, Body: req.Body}
	if err != nil {
		h.render(w, r, http.StatusUnprocessableEntity, view, landingToast(ToastError, apperrors.UserMessage(err, "")))
		return
	}
	if r.PostFormValue("analyzed") != "1" {
		h.render(w, r, http.StatusUnprocessableEntity, view, landingToast(ToastError, msgAnalyzeFirst))
		return
	}
	view.Analyzed = true

	result, err := h.classifier.Predict(r.Context(), req)
	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		redirectWithToast(w, r, h.notifier, mw.LoginPath, landingToast(ToastError, msgSignInToSubmit))
		return
	case err != nil:
		h.logger.WarnContext(r.Context(), "submission failed", "error", err)
		h.render(w, r, statusFor(err), view, landingToast(ToastError, failureMessage(err, "Submission failed")))
		return
	}

	h.logger.InfoContext(r.Context(), "ticket submitted", "persisted", result.Persisted())
	h.render(w, r, http.StatusOK, &LandingView{Result: result}, landingToast(ToastSuccess, "Ticket submitted successfully!"))
}

func (h *LandingHandler) render(w http.ResponseWriter, r *http.Request, status int, view *LandingView, t *Toast) {
	view.Charts = h.showcase
	h.renderer.Render(w, r, status, PageLanding, &PageData{
		Title:   "SmartDesk | AI-powered helpdesk",
		User:    mw.SessionFrom(r.Context()),
		Active:  PageLanding,
		Toast:   t,
		Content: view,
	})
}

func landingToast(kind ToastKind, message string) *Toast {
	return toast(kind, message, LandingToastDuration)
}

// failureMessage prefers the backend's own error text. Transport failures get a retry hint.
func failureMessage(err error, fallback string) string {
	var backendErr *apperrors.BackendError
	if !errors.As(err, &backendErr) && errors.Is(err, apperrors.ErrBackendUnavailable) {
		return msgConnectionError
	}
	return apperrors.UserMessage(err, fallback)
}

// statusFor picks the response status of a page re-rendered after a failed backend call.
func statusFor(err error) int {
	var backendErr *apperrors.BackendError
	switch {
	case errors.As(err, &backendErr) && backendErr.StatusCode < http.StatusInternalServerError:
		return backendErr.StatusCode
	case errors.Is(err, apperrors.ErrBackendUnavailable), errors.Is(err, apperrors.ErrInvalidResponse):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// homeOf is where a signed-in user lands after authenticating.
func homeOf(user *domain.User) string {
	if user == nil {
		return "/"
	}
	return user.Role.HomePath()
}
