package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/lorrc/smartdesk-web/internal/auth"
	"github.com/lorrc/smartdesk-web/internal/infrastructure/metrics"
)

// ToastKind selects the toast colour.
type ToastKind string

const (
	ToastInfo    ToastKind = "info"
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
)

// Auto-dismiss delays
const (
	DashboardToastDuration = 3000 * time.Millisecond
	LandingToastDuration   = 3500 * time.Millisecond
)

// ToastCookieName holds the pending toast between a redirect and the next page.
const ToastCookieName = "sd_toast"

// Toast is a transient notification. It disappears on its own after Duration.
type Toast struct {
	Kind     ToastKind
	Message  string
	Duration time.Duration
}

// DurationMS is the dismiss delay handed to the browser.
func (t *Toast) DurationMS() int64 {
	return t.Duration.Milliseconds()
}

func toast(kind ToastKind, message string, d time.Duration) *Toast {
	return &Toast{Kind: kind, Message: message, Duration: d}
}

// Notifier carries at most one toast across a redirect in a signed cookie.
type Notifier struct {
	tokens  *auth.TokenManager
	secure  bool
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewNotifier(tokens *auth.TokenManager, secure bool, m *metrics.Metrics, logger *slog.Logger) *Notifier {
	return &Notifier{
		tokens:  tokens,
		secure:  secure,
		metrics: m,
		logger:  logger.With("component", "notifier"),
	}
}

// Set queues t for the next page, replacing any pending toast.
func (n *Notifier) Set(w http.ResponseWriter, t *Toast) {
	token, err := n.tokens.GenerateToken(string(t.Kind), t.Message, t.Duration)
	if err != nil {
		n.logger.Error("failed to sign toast", "error", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     ToastCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(n.tokens.TTL().Seconds()),
		HttpOnly: true,
		Secure:   n.secure,
		SameSite: http.SameSiteLaxMode,
	})
	n.metrics.ToastQueued(string(t.Kind))
}

// Pop returns the pending toast and clears it. Expired or tampered cookies
// are cleared and yield nil.
func (n *Notifier) Pop(w http.ResponseWriter, r *http.Request) *Toast {
	cookie, err := r.Cookie(ToastCookieName)
	if err != nil {
		return nil
	}
	n.clear(w)

	claims, err := n.tokens.ValidateToken(cookie.Value)
	if err != nil {
		n.logger.DebugContext(r.Context(), "discarding toast cookie", "error", err)
		return nil
	}
	return &Toast{
		Kind:     parseToastKind(claims.Kind),
		Message:  claims.Message,
		Duration: time.Duration(claims.DurationMS) * time.Millisecond,
	}
}

func (n *Notifier) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     ToastCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   n.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func parseToastKind(s string) ToastKind {
	switch ToastKind(s) {
	case ToastSuccess, ToastError:
		return ToastKind(s)
	}
	return ToastInfo
}
