package http

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	mw "github.com/lorrc/smartdesk-web/internal/adapters/primary/http/middleware"
	"github.com/lorrc/smartdesk-web/internal/core/domain"
)

// RouterConfig carries everything the router mounts. Rate limiters are
// optional; nil disables them.
type RouterConfig struct {
	Logger         *slog.Logger
	Guard          *mw.Guard
	FormTokens     *mw.FormTokens
	Landing        *LandingHandler
	Auth           *AuthHandler
	Dashboard      *DashboardHandler
	MyTickets      *MyTicketsHandler
	Analytics      *AnalyticsHandler
	Health         *HealthHandler
	Metrics        http.Handler
	Static         fs.FS
	AllowedOrigins []string
	CORSMaxAge     int
	GeneralLimiter *mw.RateLimiter
	FormLimiter    *mw.RateLimiter
}

// NewRouter wires the pages, form posts, JSON and operational endpoints.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.RequestLogger(cfg.Logger))
	r.Use(mw.RecoveryLogger(cfg.Logger))
	r.Use(mw.ForwardCookies)

	if cfg.GeneralLimiter != nil {
		r.Use(cfg.GeneralLimiter.Middleware)
	}

	// Operational endpoints
	cfg.Health.RegisterRoutes(r)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	if cfg.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(cfg.Static)))
	}

	formLimit := func(next http.Handler) http.Handler { return next }
	if cfg.FormLimiter != nil {
		formLimit = cfg.FormLimiter.Middleware
	}

	// Public pages; the session is optional and only shapes the nav
	r.Group(func(r chi.Router) {
		r.Use(cfg.FormTokens.Protect)
		r.Use(cfg.Guard.OptionalSession)

		r.Get("/", cfg.Landing.HandleLanding)
		r.Get("/login", cfg.Auth.HandleLoginPage)
		r.Get("/signup", cfg.Auth.HandleSignupPage)
		r.Post("/logout", cfg.Auth.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(formLimit)
			r.Post("/login", cfg.Auth.HandleLogin)
			r.Post("/signup", cfg.Auth.HandleSignup)
			r.Post("/analyze", cfg.Landing.HandleAnalyze)
			r.Post("/submit", cfg.Landing.HandleSubmit)
		})
	})

	// Admin pages
	r.Group(func(r chi.Router) {
		r.Use(cfg.FormTokens.Protect)
		r.Use(cfg.Guard.RequireRole(domain.RoleAdmin))
		r.Route("/dashboard", cfg.Dashboard.RegisterRoutes)
		r.Get("/analytics", cfg.Analytics.HandleAnalytics)
	})

	// User pages
	r.Group(func(r chi.Router) {
		r.Use(cfg.FormTokens.Protect)
		r.Use(cfg.Guard.RequireRole(domain.RoleUser))
		r.Get("/my-tickets", cfg.MyTickets.HandleMyTickets)
	})

	// JSON endpoints for chart refreshes from other origins
	r.Route("/ui", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", mw.RequestIDHeader},
			ExposedHeaders:   []string{mw.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           cfg.CORSMaxAge,
		}))
		r.Use(cfg.Guard.RequireRoleAPI(domain.RoleAdmin))
		r.Get("/charts", cfg.Analytics.HandleCharts)
	})

	return r
}
