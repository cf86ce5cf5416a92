package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/lorrc/smartdesk-web/internal/auth"
)

// FormTokenField is the hidden input every state-changing form carries.
const FormTokenField = "csrf_token"

// FormTokenKey is the key used to store the form token for the current response.
const FormTokenKey contextKey = "formToken"

// FormTokens rejects POSTs whose form token was not issued to the poster's
// backend session, and issues a fresh token for the pages it renders.
// It must run after ForwardCookies.
type FormTokens struct {
	tokens *auth.TokenManager
	logger *slog.Logger
}

// NewFormTokens creates form token middleware signing with tokens.
func NewFormTokens(tokens *auth.TokenManager, logger *slog.Logger) *FormTokens {
	return &FormTokens{tokens: tokens, logger: logger.With("middleware", "form_tokens")}
}

// Protect verifies unsafe requests, then stores a fresh token in the context.
func (f *FormTokens) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		binding := auth.SessionDigest(r.Context())

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if err := f.tokens.ValidateFormToken(r.PostFormValue(FormTokenField), binding); err != nil {
				f.logger.WarnContext(r.Context(), "form token rejected", "path", r.URL.Path, "error", err)
				http.Error(w, "Invalid or expired form. Reload the page and try again.", http.StatusForbidden)
				return
			}
		}

		token, err := f.tokens.GenerateFormToken(binding)
		if err != nil {
			f.logger.ErrorContext(r.Context(), "form token signing failed", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), FormTokenKey, token)))
	})
}

// FormToken returns the token issued for this request, or "" outside Protect.
func FormToken(ctx context.Context) string {
	token, _ := ctx.Value(FormTokenKey).(string)
	return token
}
