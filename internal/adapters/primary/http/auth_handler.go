package http

import (
	"log/slog"
	"net/http"

	mw "github.com/lorrc/smartdesk-web/internal/adapters/primary/http/middleware"
	"github.com/lorrc/smartdesk-web/internal/adapters/primary/validation"
	"github.com/lorrc/smartdesk-web/internal/auth"
	"github.com/lorrc/smartdesk-web/internal/core/domain"
	apperrors "github.com/lorrc/smartdesk-web/internal/core/errors"
	"github.com/lorrc/smartdesk-web/internal/core/ports"
)

// AuthHandler serves sign in, sign up and sign out. The backend owns the
// session; this handler only relays its cookies.
type AuthHandler struct {
	auth     ports.AuthGateway
	renderer *Renderer
	notifier *Notifier
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth ports.AuthGateway, renderer *Renderer, notifier *Notifier, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		renderer: renderer,
		notifier: notifier,
		logger:   logger.With("handler", "auth"),
	}
}

// HandleLoginPage renders the login form. Signed-in users go straight home.
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if user := mw.SessionFrom(r.Context()); user != nil {
		http.Redirect(w, r, homeOf(user), http.StatusFound)
		return
	}
	h.renderForm(w, r, http.StatusOK, PageLogin, &AuthView{}, h.notifier.Pop(w, r))
}

// HandleLogin authenticates against the backend and relays its session cookie.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	creds, err := validation.LoginForm(r)
	view := &AuthView{Email: creds.Email}
	if err != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, PageLogin, view, authToast(ToastError, apperrors.UserMessage(err, "")))
		return
	}

	user, cookies, err := h.auth.Login(r.Context(), creds)
	if err != nil {
		h.logger.InfoContext(r.Context(), "login rejected", "error", err)
		h.renderForm(w, r, statusFor(err), PageLogin, view, authToast(ToastError, failureMessage(err, "Login failed")))
		return
	}

	auth.RelayCookies(w, cookies)
	h.logger.InfoContext(r.Context(), "user signed in", "user_id", user.ID, "role", user.Role)
	http.Redirect(w, r, homeOf(user), http.StatusSeeOther)
}

// HandleSignupPage renders the registration form.
func (h *AuthHandler) HandleSignupPage(w http.ResponseWriter, r *http.Request) {
	if user := mw.SessionFrom(r.Context()); user != nil {
		http.Redirect(w, r, homeOf(user), http.StatusFound)
		return
	}
	h.renderForm(w, r, http.StatusOK, PageSignup, &AuthView{}, h.notifier.Pop(w, r))
}

// HandleSignup registers a user account. Validation runs before any backend call.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	params, err := validation.SignupForm(r)
	view := &AuthView{Name: params.Name, Email: params.Email}
	if err != nil {
		h.renderForm(w, r, http.StatusUnprocessableEntity, PageSignup, view, authToast(ToastError, apperrors.UserMessage(err, "")))
		return
	}
	params.Role = domain.RoleUser

	cookies, err := h.auth.Signup(r.Context(), params)
	if err != nil {
		h.logger.InfoContext(r.Context(), "signup rejected", "error", err)
		h.renderForm(w, r, statusFor(err), PageSignup, view, authToast(ToastError, failureMessage(err, "Signup failed")))
		return
	}

	auth.RelayCookies(w, cookies)
	redirectWithToast(w, r, h.notifier, mw.LoginPath, authToast(ToastSuccess, "Account created successfully"))
}

// HandleLogout ends the backend session.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	cookies, err := h.auth.Logout(r.Context())
	if err != nil {
		// The browser is sent home regardless; the backend session expires on its own
		h.logger.WarnContext(r.Context(), "logout failed", "error", err)
	}
	auth.RelayCookies(w, cookies)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, page string, view *AuthView, t *Toast) {
	title := "Sign in | SmartDesk"
	if page == PageSignup {
		title = "Create account | SmartDesk"
	}
	h.renderer.Render(w, r, status, page, &PageData{
		Title:   title,
		Active:  page,
		Toast:   t,
		Content: view,
	})
}

func authToast(kind ToastKind, message string) *Toast {
	return toast(kind, message, LandingToastDuration)
}
