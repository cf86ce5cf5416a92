package services

import (
	"github.com/lorrc/smartdesk-web/internal/core/domain"
)

const (
	dashboardColumns         = 8
	dashboardColumnsWithUser = 9
	myTicketsColumns         = 6
	noDescriptionPlaceholder = "No description provided"
)

// Filter returns the tickets whose status equals f, in their original order.
// FilterAll returns every ticket. Any other value is compared verbatim.
func Filter(tickets []domain.Ticket, f string) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if f == domain.FilterAll || string(t.Status) == f {
			out = append(out, t)
		}
	}
	return out
}

// TicketRow is a ticket formatted for the list templates.
type TicketRow struct {
	ID            int64
	DisplayID     string
	Subject       string
	UserName      string
	Category      string
	Queue         string
	PriorityLabel string
	PriorityClass string
	Status        string
	StatusClass   string
	Created       string
	CreatedShort  string
	UpdatedShort  string
	CreatedFull   string
	UpdatedFull   string
	Body          string
	AdminNotes    string
	HasDetails    bool
	Open          bool
	// ToggleID is the open id that flips this row's detail panel: its own id, or 0 when already open.
	ToggleID int64
}

// TicketList holds one page's fetched tickets together with the filter and
// the single open detail row. The tickets are never modified after fetch.
type TicketList struct {
	tickets []domain.Ticket
	filter  string
	openID  int64
	admin   bool
}

// NewTicketList wraps a fetched ticket list. The filter starts at FilterAll.
func NewTicketList(tickets []domain.Ticket, admin bool) *TicketList {
	return &TicketList{tickets: tickets, filter: domain.FilterAll, admin: admin}
}

// Clone returns a copy that shares the immutable ticket slice.
func (l *TicketList) Clone() *TicketList {
	c := *l
	return &c
}

func (l *TicketList) Filter() string { return l.filter }

// SetFilter changes the active filter. An empty value means FilterAll.
func (l *TicketList) SetFilter(f string) {
	if f == "" {
		f = domain.FilterAll
	}
	l.filter = f
}

// SetOpen makes id the only open detail row. Zero closes all rows.
func (l *TicketList) SetOpen(id int64) {
	if id < 0 {
		id = 0
	}
	l.openID = id
}

// Visible returns the tickets that pass the current filter.
func (l *TicketList) Visible() []domain.Ticket {
	return Filter(l.tickets, l.filter)
}

// ShowUserColumn reports whether the dashboard gets a User column.
// It is decided once per fetch from the first ticket, not per filter.
func (l *TicketList) ShowUserColumn() bool {
	return l.admin && len(l.tickets) > 0 && l.tickets[0].UserName != ""
}

// ShowDelete reports whether rows carry the delete action.
func (l *TicketList) ShowDelete() bool { return l.admin }

// DashboardColspan is the colspan of the dashboard empty-state row.
func (l *TicketList) DashboardColspan() int {
	if l.ShowUserColumn() {
		return dashboardColumnsWithUser
	}
	return dashboardColumns
}

// ListColspan is the colspan of the my-tickets empty-state row.
func (l *TicketList) ListColspan() int { return myTicketsColumns }

// Rows formats the visible tickets.
func (l *TicketList) Rows() []TicketRow {
	visible := l.Visible()
	rows := make([]TicketRow, 0, len(visible))
	for _, t := range visible {
		rows = append(rows, l.row(t))
	}
	return rows
}

func (l *TicketList) row(t domain.Ticket) TicketRow {
	open := t.HasDetails() && t.ID == l.openID
	toggle := t.ID
	if open {
		toggle = 0
	}
	body := t.Body
	if body == "" {
		body = noDescriptionPlaceholder
	}
	return TicketRow{
		ID:            t.ID,
		DisplayID:     domain.FormatTicketID(t.ID),
		Subject:       t.Subject,
		UserName:      domain.OrPlaceholder(t.UserName),
		Category:      domain.OrPlaceholder(t.Category),
		Queue:         domain.OrPlaceholder(t.Queue),
		PriorityLabel: t.Priority.Label(),
		PriorityClass: t.Priority.PillClass(),
		Status:        string(t.Status),
		StatusClass:   t.Status.PillClass(),
		Created:       domain.FormatDate(t.CreatedAt.Time, domain.LayoutDate),
		CreatedShort:  domain.FormatDate(t.CreatedAt.Time, domain.LayoutShortDate),
		UpdatedShort:  domain.FormatDate(t.UpdatedAt.Time, domain.LayoutShortDate),
		CreatedFull:   domain.FormatDate(t.CreatedAt.Time, domain.LayoutDateTime),
		UpdatedFull:   domain.FormatDate(t.UpdatedAt.Time, domain.LayoutDateTime),
		Body:          body,
		AdminNotes:    t.AdminNotes,
		HasDetails:    t.HasDetails(),
		Open:          open,
		ToggleID:      toggle,
	}
}
