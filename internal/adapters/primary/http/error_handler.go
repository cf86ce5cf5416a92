package http

import (
	"errors"
	"log/slog"
	"net/http"

	mw "github.com/lorrc/smartdesk-web/internal/adapters/primary/http/middleware"
	apperrors "github.com/lorrc/smartdesk-web/internal/core/errors"
)

// ErrorResponse is the standard JSON error response format
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse includes field-level validation errors
type ValidationErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// ErrorView backs the error page.
type ErrorView struct {
	Status  int
	Message string
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger   *slog.Logger
	renderer *Renderer
}

// NewErrorHandler creates a new error handler. renderer may be nil, in which
// case pages fall back to plain text.
func NewErrorHandler(logger *slog.Logger, renderer *Renderer) *ErrorHandler {
	return &ErrorHandler{logger: logger, renderer: renderer}
}

// Handle writes err as JSON. Used by the /ui endpoints.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		h.logError(r, http.StatusUnprocessableEntity, err)
		WriteJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "Validation failed",
			Code:   "VALIDATION_ERROR",
			Fields: validationErrs.Errors,
		})
		return
	}

	statusCode, response := h.mapError(err)
	h.logError(r, statusCode, err)
	WriteJSON(w, statusCode, response)
}

// HandlePage renders the error page for a request that cannot show its page at all.
func (h *ErrorHandler) HandlePage(w http.ResponseWriter, r *http.Request, err error) {
	statusCode, response := h.mapError(err)
	h.logError(r, statusCode, err)

	if h.renderer == nil {
		http.Error(w, response.Error, statusCode)
		return
	}
	h.renderer.Render(w, r, statusCode, PageError, &PageData{
		Title:   "Something went wrong",
		User:    mw.SessionFrom(r.Context()),
		Content: &ErrorView{Status: statusCode, Message: response.Error},
	})
}

// mapError converts errors to HTTP status codes and responses
func (h *ErrorHandler) mapError(err error) (int, ErrorResponse) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode, ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		}
	}

	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorResponse{
			Error: "Authentication required",
			Code:  "UNAUTHORIZED",
		}
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{
			Error: "You do not have permission to perform this action",
			Code:  "FORBIDDEN",
		}
	case errors.Is(err, apperrors.ErrTicketNotFound), errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{
			Error: "Not found",
			Code:  "NOT_FOUND",
		}
	case errors.Is(err, apperrors.ErrInvalidTicketID),
		errors.Is(err, apperrors.ErrInvalidStatus),
		errors.Is(err, apperrors.ErrNothingToUpdate),
		errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, ErrorResponse{
			Error: apperrors.UserMessage(err, err.Error()),
			Code:  "VALIDATION_ERROR",
		}
	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests, ErrorResponse{
			Error: "Too many requests. Please try again later.",
			Code:  "RATE_LIMITED",
		}
	case errors.Is(err, apperrors.ErrBackendUnavailable), errors.Is(err, apperrors.ErrInvalidResponse):
		return http.StatusBadGateway, ErrorResponse{
			Error: "SmartDesk is temporarily unavailable. Please try again.",
			Code:  "BACKEND_UNAVAILABLE",
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error: "An unexpected error occurred",
			Code:  "INTERNAL_ERROR",
		}
	}
}

// logError logs the error with appropriate context. The request id comes from the context handler.
func (h *ErrorHandler) logError(r *http.Request, statusCode int, err error) {
	logAttrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", statusCode,
		"error", err.Error(),
	}

	switch {
	case statusCode >= 500:
		h.logger.ErrorContext(r.Context(), "server error", logAttrs...)
	case statusCode >= 400:
		h.logger.WarnContext(r.Context(), "client error", logAttrs...)
	default:
		h.logger.InfoContext(r.Context(), "request error", logAttrs...)
	}
}
