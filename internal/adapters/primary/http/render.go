package http

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	mw "github.com/lorrc/smartdesk-web/internal/adapters/primary/http/middleware"
	"github.com/lorrc/smartdesk-web/internal/core/domain"
	"github.com/lorrc/smartdesk-web/internal/infrastructure/metrics"
)

// Page template names. Each lives in <name>.html and defines "content", optionally "scripts".
const (
	PageLanding   = "landing"
	PageLogin     = "login"
	PageSignup    = "signup"
	PageDashboard = "dashboard"
	PageMyTickets = "my_tickets"
	PageAnalytics = "analytics"
	PageError     = "error"
)

var pageNames = []string{PageLanding, PageLogin, PageSignup, PageDashboard, PageMyTickets, PageAnalytics, PageError}

// Render sources recorded in metrics
const (
	SourceBackend = "backend"
	SourceCache   = "cache"
	SourceStatic  = "static"
)

// PageData is what the layout receives. Content is the page-specific view.
type PageData struct {
	Title     string
	User      *domain.User
	Active    string
	Toast     *Toast
	Content   any
	FormToken string

	source string
}

// Renderer executes the embedded page templates. html/template escapes every
// interpolated value, so backend text is never interpreted as markup.
type Renderer struct {
	pages   map[string]*template.Template
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewRenderer parses layout.html plus one page file per page.
func NewRenderer(fsys fs.FS, m *metrics.Metrics, logger *slog.Logger) (*Renderer, error) {
	base, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(fsys, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(fsys, name+".html"); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = clone
	}

	return &Renderer{
		pages:   pages,
		metrics: m,
		logger:  logger.With("component", "renderer"),
	}, nil
}

var templateFuncs = template.FuncMap{
	"ticketRef": func(id *int64) string {
		if id == nil {
			return ""
		}
		return domain.FormatTicketReference(*id)
	},
}

// Render writes a full page. The template is executed into a buffer first so a
// template error produces a clean 500 instead of half a page.
func (rr *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data *PageData) {
	tmpl, ok := rr.pages[page]
	if !ok {
		rr.logger.ErrorContext(r.Context(), "unknown page template", "page", page)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data.FormToken = mw.FormToken(r.Context())

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		rr.logger.ErrorContext(r.Context(), "template execution failed", "page", page, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	source := data.source
	if source == "" {
		source = SourceStatic
	}
	rr.metrics.PageRendered(page, source)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
