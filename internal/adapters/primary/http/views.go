package http

import (
	"net/url"
	"strconv"

	"github.com/lorrc/smartdesk-web/internal/core/domain"
	"github.com/lorrc/smartdesk-web/internal/core/services"
)

// LandingView backs the public landing page.
type LandingView struct {
	Charts   []services.Chart
	Subject  string
	Body     string
	Result   *domain.AnalysisResult
	Analyzed bool
}

// ResultTitle is the heading of the classifier result card.
func (v *LandingView) ResultTitle() string {
	if v.Result.Persisted() {
		return "Ticket Submitted Successfully!"
	}
	return "AI Analysis Complete"
}

// AuthView backs the login and signup forms.
type AuthView struct {
	Name  string
	Email string
}

// FilterOption is one status filter button.
type FilterOption struct {
	Label  string
	URL    string
	Active bool
}

// TicketPageView backs the dashboard and my-tickets tables.
type TicketPageView struct {
	Path      string
	SessionID string
	Sort      domain.TicketSort
	Stats     *domain.Stats
	List      *services.TicketList
	Rows      []services.TicketRow
	Filters   []FilterOption
	Statuses  []domain.TicketStatus
	Edit      *services.TicketRow
}

func newTicketPageView(path string, session *services.PageSession) *TicketPageView {
	v := &TicketPageView{
		Path:      path,
		SessionID: session.ID,
		Sort:      session.Sort,
		Stats:     session.Stats,
		List:      session.List,
		Rows:      session.List.Rows(),
		Statuses:  domain.AllStatuses,
	}

	current := session.List.Filter()
	v.Filters = append(v.Filters, FilterOption{Label: "All", URL: v.url(domain.FilterAll, 0, 0), Active: current == domain.FilterAll})
	for _, s := range domain.AllStatuses {
		v.Filters = append(v.Filters, FilterOption{
			Label:  string(s),
			URL:    v.url(string(s), 0, 0),
			Active: current == string(s),
		})
	}
	return v
}

// InProgress is the count shown on the my-tickets stat card.
func (v *TicketPageView) InProgress() int64 {
	return v.Stats.StatusCount(domain.StatusInProgress)
}

// SortByPriority reports whether the priority order is selected.
func (v *TicketPageView) SortByPriority() bool {
	return v.Sort == domain.SortByPriority
}

// ToggleURL opens the detail row of id, or closes it when id is 0.
func (v *TicketPageView) ToggleURL(id int64) string {
	return v.url(v.List.Filter(), id, 0)
}

// EditURL opens the status dialog for id.
func (v *TicketPageView) EditURL(id int64) string {
	return v.url(v.List.Filter(), 0, id)
}

// CloseURL returns to the table without a dialog.
func (v *TicketPageView) CloseURL() string {
	return v.url(v.List.Filter(), 0, 0)
}

func (v *TicketPageView) url(filter string, open, edit int64) string {
	q := url.Values{}
	if v.SessionID != "" {
		q.Set("ps", v.SessionID)
	}
	if filter != domain.FilterAll {
		q.Set("status", filter)
	}
	if v.Sort != domain.SortByDate {
		q.Set("sort", string(v.Sort))
	}
	if open > 0 {
		q.Set("open", strconv.FormatInt(open, 10))
	}
	if edit > 0 {
		q.Set("edit", strconv.FormatInt(edit, 10))
	}
	if len(q) == 0 {
		return v.Path
	}
	return v.Path + "?" + q.Encode()
}
