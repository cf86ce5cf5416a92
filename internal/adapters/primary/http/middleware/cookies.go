package middleware

import (
	"net/http"

	"github.com/lorrc/smartdesk-web/internal/auth"
)

// ForwardCookies makes the browser's backend cookies available to the API client.
// Cookies owned by this server (the sd_ prefix) stay local.
func ForwardCookies(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.WithBackendCookies(r.Context(), auth.ForwardableCookies(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
