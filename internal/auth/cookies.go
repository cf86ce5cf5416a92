package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"
)

// LocalCookiePrefix marks cookies owned by the web tier. They are never forwarded upstream.
const LocalCookiePrefix = "sd_"

type contextKey string

const backendCookiesKey contextKey = "backend_cookies"

// WithBackendCookies stores the browser cookies that should accompany backend calls.
func WithBackendCookies(ctx context.Context, cookies []*http.Cookie) context.Context {
	return context.WithValue(ctx, backendCookiesKey, cookies)
}

// BackendCookies returns the cookies stored by WithBackendCookies.
func BackendCookies(ctx context.Context) []*http.Cookie {
	cookies, _ := ctx.Value(backendCookiesKey).([]*http.Cookie)
	return cookies
}

// ForwardableCookies drops the web tier's own cookies from a browser request.
func ForwardableCookies(r *http.Request) []*http.Cookie {
	all := r.Cookies()
	out := make([]*http.Cookie, 0, len(all))
	for _, c := range all {
		if strings.HasPrefix(c.Name, LocalCookiePrefix) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// SessionDigest identifies the backend session behind ctx by hashing the
// forwarded cookies. It is empty when no cookie is forwarded.
func SessionDigest(ctx context.Context) string {
	cookies := BackendCookies(ctx)
	if len(cookies) == 0 {
		return ""
	}

	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	sort.Strings(pairs)

	sum := sha256.Sum256([]byte(strings.Join(pairs, "\n")))
	return hex.EncodeToString(sum[:])
}

// RelayCookies copies backend Set-Cookie values onto the browser response.
// Domain is cleared so the cookie binds to this host rather than the backend's.
// A cookie without SameSite is relayed as Lax so cross-site form posts never carry it.
func RelayCookies(w http.ResponseWriter, cookies []*http.Cookie) {
	for _, c := range cookies {
		relayed := *c
		relayed.Domain = ""
		if relayed.Path == "" {
			relayed.Path = "/"
		}
		if relayed.SameSite == http.SameSiteDefaultMode {
			relayed.SameSite = http.SameSiteLaxMode
		}
		http.SetCookie(w, &relayed)
	}
}
