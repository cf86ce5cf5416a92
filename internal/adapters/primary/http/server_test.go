package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	mw "github.com/lorrc/smartdesk-web/internal/adapters/primary/http/middleware"
	"github.com/lorrc/smartdesk-web/internal/adapters/secondary/smartdesk"
	"github.com/lorrc/smartdesk-web/internal/auth"
	"github.com/lorrc/smartdesk-web/internal/core/domain"
	"github.com/lorrc/smartdesk-web/internal/core/services"
	"github.com/lorrc/smartdesk-web/web"
)

const (
	adminToken     = "admin-token"
	userToken      = "user-token"
	otherUserToken = "other-user-token"
	backendCookie  = "session"
	validPassword  = "secret"
	testToastToken = "test-secret-0123456789abcdef"
	testFormSecret = "form-secret-0123456789abcdef"
)

// fakeBackend is an in-memory SmartDesk API.
type fakeBackend struct {
	mu         sync.Mutex
	users      map[string]domain.User
	tickets    []domain.Ticket
	failDelete bool
	hideIDs    bool
	lastSort   string
	calls      map[string]int
}

func newFakeBackend() *fakeBackend {
	created := domain.Timestamp{Time: time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)}
	updated := domain.Timestamp{Time: time.Date(2026, 10, 15, 16, 5, 0, 0, time.UTC)}
	return &fakeBackend{
		users: map[string]domain.User{
			adminToken: {ID: 1, Name: "Grace Hopper", Email: "grace@example.com", Role: domain.RoleAdmin},
			userToken:      {ID: 2, Name: "Ada Lovelace", Email: "ada@example.com", Role: domain.RoleUser},
			otherUserToken: {ID: 3, Name: "Alan Turing", Email: "alan@example.com", Role: domain.RoleUser},
		},
		tickets: []domain.Ticket{
			{
				ID: 42, Subject: "VPN drops", Body: "Disconnects every 5 minutes",
				Category: "Network", Priority: domain.PriorityHigh, Queue: "Infra",
				Status: domain.StatusPending, CreatedAt: created, UpdatedAt: updated, UserName: "Ada Lovelace",
			},
			{
				ID: 43, Subject: "Printer jam", Category: "Hardware", Priority: domain.PriorityLow,
				Status: domain.StatusResolved, CreatedAt: created, UpdatedAt: updated, UserName: "Ada Lovelace",
				AdminNotes: "Replaced the roller",
			},
		},
		calls: make(map[string]int),
	}
}

func (f *fakeBackend) handler() stdhttp.Handler {
	mux := stdhttp.NewServeMux()
	mux.HandleFunc("GET /api/me", f.me)
	mux.HandleFunc("POST /api/login", f.login)
	mux.HandleFunc("POST /api/signup", f.signup)
	mux.HandleFunc("POST /api/logout", f.logout)
	mux.HandleFunc("GET /api/stats", f.stats)
	mux.HandleFunc("GET /api/tickets", f.list)
	mux.HandleFunc("PATCH /api/tickets/{id}", f.update)
	mux.HandleFunc("DELETE /api/tickets/{id}", f.remove)
	mux.HandleFunc("POST /api/analyze", f.classify)
	mux.HandleFunc("POST /api/predict", f.classify)

	return stdhttp.HandlerFunc(func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		f.mu.Lock()
		f.calls[r.Method+" "+r.URL.Path]++
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

func (f *fakeBackend) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeBackend) sortRequested() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSort
}

// setHideIDs makes /api/me answer without user ids.
func (f *fakeBackend) setHideIDs(hide bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hideIDs = hide
}

func (f *fakeBackend) setFailDelete(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failDelete = fail
}

func (f *fakeBackend) ticket(id int64) (domain.Ticket, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tickets {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Ticket{}, false
}

func (f *fakeBackend) caller(r *stdhttp.Request) (domain.User, bool) {
	cookie, err := r.Cookie(backendCookie)
	if err != nil {
		return domain.User{}, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[cookie.Value]
	return u, ok
}

func writeFake(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeBackend) me(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	u, ok := f.caller(r)
	if !ok {
		writeFake(w, stdhttp.StatusUnauthorized, map[string]any{"authenticated": false})
		return
	}
	f.mu.Lock()
	if f.hideIDs {
		u.ID = 0
	}
	f.mu.Unlock()
	writeFake(w, stdhttp.StatusOK, domain.Session{Authenticated: true, User: &u})
}

func (f *fakeBackend) login(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var creds domain.Credentials
	_ = json.NewDecoder(r.Body).Decode(&creds)

	f.mu.Lock()
	defer f.mu.Unlock()
	for token, u := range f.users {
		if u.Email == creds.Email && creds.Password == validPassword {
			stdhttp.SetCookie(w, &stdhttp.Cookie{Name: backendCookie, Value: token, Path: "/", HttpOnly: true})
			writeFake(w, stdhttp.StatusOK, map[string]any{"success": true, "user": u})
			return
		}
	}
	writeFake(w, stdhttp.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
}

func (f *fakeBackend) signup(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var params domain.SignupParams
	_ = json.NewDecoder(r.Body).Decode(&params)

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == params.Email {
			writeFake(w, stdhttp.StatusConflict, map[string]string{"error": "Email already registered"})
			return
		}
	}
	f.users["new-"+params.Email] = domain.User{ID: int64(len(f.users) + 1), Name: params.Name, Email: params.Email, Role: params.Role}
	writeFake(w, stdhttp.StatusCreated, map[string]any{"success": true})
}

func (f *fakeBackend) logout(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	stdhttp.SetCookie(w, &stdhttp.Cookie{Name: backendCookie, Value: "", Path: "/", MaxAge: -1})
	writeFake(w, stdhttp.StatusOK, map[string]any{"success": true})
}

func (f *fakeBackend) stats(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	u, ok := f.caller(r)
	if !ok {
		writeFake(w, stdhttp.StatusUnauthorized, map[string]string{"error": "Authentication required"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	byStatus := map[domain.TicketStatus]int{}
	for _, t := range f.tickets {
		byStatus[t.Status]++
	}
	var series []map[string]any
	for _, s := range domain.AllStatuses {
		if n := byStatus[s]; n > 0 {
			series = append(series, map[string]any{"status": s, "cnt": n})
		}
	}
	writeFake(w, stdhttp.StatusOK, map[string]any{
		"total":       len(f.tickets),
		"today":       0,
		"pending":     byStatus[domain.StatusPending],
		"resolved":    byStatus[domain.StatusResolved],
		"by_status":   series,
		"by_category": []map[string]any{{"category": "Network", "cnt": 1}, {"category": "Hardware", "cnt": 1}},
		"daily":       []map[string]any{{"day": "2026-10-14", "cnt": len(f.tickets)}},
		"model_stats": map[string]any{"category_accuracy": 94.2, "priority_accuracy": 88},
		"is_admin":    u.IsAdmin(),
	})
}

func (f *fakeBackend) list(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	u, ok := f.caller(r)
	if !ok {
		writeFake(w, stdhttp.StatusUnauthorized, map[string]string{"error": "Authentication required"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSort = r.URL.Query().Get("sort")
	out := make([]domain.Ticket, 0, len(f.tickets))
	for _, t := range f.tickets {
		if u.IsAdmin() {
			out = append(out, t)
			continue
		}
		if t.UserName == u.Name {
			t.UserName = ""
			out = append(out, t)
		}
	}
	writeFake(w, stdhttp.StatusOK, out)
}

func (f *fakeBackend) update(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	u, ok := f.caller(r)
	if !ok || !u.IsAdmin() {
		writeFake(w, stdhttp.StatusForbidden, map[string]string{"error": "Admin only"})
		return
	}
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	var params domain.UpdateTicketParams
	_ = json.NewDecoder(r.Body).Decode(&params)

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tickets {
		if f.tickets[i].ID != id {
			continue
		}
		if params.Status != nil {
			f.tickets[i].Status = *params.Status
		}
		if params.AdminNotes != nil {
			f.tickets[i].AdminNotes = *params.AdminNotes
		}
		writeFake(w, stdhttp.StatusOK, map[string]any{"success": true})
		return
	}
	writeFake(w, stdhttp.StatusNotFound, map[string]string{"error": "Ticket not found"})
}

func (f *fakeBackend) remove(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		w.WriteHeader(stdhttp.StatusInternalServerError)
		return
	}
	for i := range f.tickets {
		if f.tickets[i].ID == id {
			f.tickets = append(f.tickets[:i], f.tickets[i+1:]...)
			writeFake(w, stdhttp.StatusOK, map[string]any{"success": true})
			return
		}
	}
	writeFake(w, stdhttp.StatusNotFound, map[string]string{"error": "Ticket not found"})
}

func (f *fakeBackend) classify(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	var req domain.AnalysisRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	result := map[string]any{
		"subject":             req.Subject,
		"category":            "Network",
		"priority":            "high",
		"queue":               "Infra",
		"confidence_category": 0.91,
		"confidence_priority": 0.77,
		"rule_override":       true,
		"override_keyword":    "urgent",
		"entities":            map[string][]string{"devices": {"vpn"}},
	}
	if r.URL.Path == "/api/predict" {
		if _, ok := f.caller(r); !ok {
			writeFake(w, stdhttp.StatusUnauthorized, map[string]string{"error": "Authentication required"})
			return
		}
		result["ticket_id"] = 44
	}
	writeFake(w, stdhttp.StatusOK, result)
}

type testApp struct {
	backend  *fakeBackend
	router   stdhttp.Handler
	notifier *Notifier
	forms    *auth.TokenManager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	fake := newFakeBackend()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := smartdesk.NewClient(srv.URL, 2*time.Second, logger)

	templates, err := web.Templates()
	require.NoError(t, err)
	static, err := web.Static()
	require.NoError(t, err)
	renderer, err := NewRenderer(templates, nil, logger)
	require.NoError(t, err)

	notifier := NewNotifier(auth.NewTokenManager(testToastToken, time.Minute), false, nil, logger)
	forms := auth.NewTokenManager(testFormSecret, time.Hour)
	errorHandler := NewErrorHandler(logger, renderer)
	desk := services.NewTicketDesk(client, services.NewPageSessionStore(time.Minute), logger)
	charts := services.NewChartBuilder(func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) })

	router := NewRouter(RouterConfig{
		Logger:         logger,
		Guard:          mw.NewGuard(client, logger),
		FormTokens:     mw.NewFormTokens(forms, logger),
		Landing:        NewLandingHandler(client, nil, renderer, notifier, logger),
		Auth:           NewAuthHandler(client, renderer, notifier, logger),
		Dashboard:      NewDashboardHandler(desk, renderer, notifier, errorHandler, logger),
		MyTickets:      NewMyTicketsHandler(desk, renderer, notifier, errorHandler, logger),
		Analytics:      NewAnalyticsHandler(client, charts, renderer, notifier, errorHandler, logger),
		Health:         NewHealthHandler(client, "test"),
		Static:         static,
		AllowedOrigins: []string{"https://ops.example.com"},
	})

	return &testApp{backend: fake, router: router, notifier: notifier, forms: forms}
}

// get sends a GET as the browser holding token; an empty token is anonymous.
func (a *testApp) get(path, token string, cookies ...*stdhttp.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(stdhttp.MethodGet, path, nil)
	return a.send(req, token, cookies)
}

// post submits form as the browser holding token, with the form token a page
// rendered for that browser would carry.
func (a *testApp) post(t *testing.T, path, token string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	signed := url.Values{}
	for k, v := range form {
		signed[k] = v
	}
	if !signed.Has(mw.FormTokenField) {
		signed.Set(mw.FormTokenField, a.formToken(t, token))
	}
	return a.postRaw(path, token, signed)
}

// postRaw submits form exactly as given.
func (a *testApp) postRaw(path, token string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(stdhttp.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.send(req, token, nil)
}

// formToken signs a form token for the browser holding token.
func (a *testApp) formToken(t *testing.T, token string) string {
	t.Helper()
	var cookies []*stdhttp.Cookie
	if token != "" {
		cookies = append(cookies, &stdhttp.Cookie{Name: backendCookie, Value: token})
	}
	signed, err := a.forms.GenerateFormToken(auth.SessionDigest(auth.WithBackendCookies(context.Background(), cookies)))
	require.NoError(t, err)
	return signed
}

// follow GETs the redirect target of rec, carrying any toast cookie it set.
func (a *testApp) follow(t *testing.T, rec *httptest.ResponseRecorder, token string) *httptest.ResponseRecorder {
	t.Helper()
	require.Equal(t, stdhttp.StatusSeeOther, rec.Code)
	var cookies []*stdhttp.Cookie
	if c := cookieNamed(rec, ToastCookieName); c != nil {
		cookies = append(cookies, c)
	}
	return a.get(rec.Header().Get("Location"), token, cookies...)
}

func (a *testApp) send(req *stdhttp.Request, token string, cookies []*stdhttp.Cookie) *httptest.ResponseRecorder {
	req.RemoteAddr = "192.0.2.10:4000"
	if token != "" {
		req.AddCookie(&stdhttp.Cookie{Name: backendCookie, Value: token})
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *stdhttp.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

var (
	sessionFieldPattern   = regexp.MustCompile(`name="ps" value="([^"]+)"`)
	formTokenFieldPattern = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)
)

// renderedFormToken extracts the form token from a rendered page.
func renderedFormToken(t *testing.T, body string) string {
	t.Helper()
	m := formTokenFieldPattern.FindStringSubmatch(body)
	require.Len(t, m, 2, "form token field not rendered")
	return m[1]
}

// pageSessionID extracts the page session id from a rendered ticket table.
func pageSessionID(t *testing.T, body string) string {
	t.Helper()
	m := sessionFieldPattern.FindStringSubmatch(body)
	require.Len(t, m, 2, "page session field not rendered")
	return m[1]
}

// returnForm is the hidden return fields of a dashboard mutation form.
func returnForm(ps string) url.Values {
	return url.Values{"ps": {ps}, "filter": {domain.FilterAll}, "sort": {string(domain.SortByDate)}}
}
