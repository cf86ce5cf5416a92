package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TicketStatus represents the lifecycle state of a ticket.
type TicketStatus string

const (
	StatusPending    TicketStatus = "Pending"
	StatusInProgress TicketStatus = "In Progress"
	StatusResolved   TicketStatus = "Resolved"
	StatusClosed     TicketStatus = "Closed"
)

// AllStatuses lists the statuses in the order they are offered to users.
var AllStatuses = []TicketStatus{StatusPending, StatusInProgress, StatusResolved, StatusClosed}

// IsValid reports whether the status is one the backend accepts.
func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// PillClass returns the CSS class for the status pill. Unknown statuses get none.
func (s TicketStatus) PillClass() string {
	switch s {
	case StatusPending:
		return "s-pending"
	case StatusInProgress:
		return "s-inprogress"
	case StatusResolved:
		return "s-resolved"
	case StatusClosed:
		return "s-closed"
	}
	return ""
}

func (s TicketStatus) String() string {
	return string(s)
}

// TicketPriority represents the urgency assigned by the classifier.
type TicketPriority string

const (
	PriorityHigh   TicketPriority = "high"
	PriorityMedium TicketPriority = "medium"
	PriorityLow    TicketPriority = "low"
)

// IsValid reports whether the priority is a known value.
func (p TicketPriority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// PillClass returns the CSS class for the priority pill, defaulting to medium.
func (p TicketPriority) PillClass() string {
	switch p {
	case PriorityHigh:
		return "pill-high"
	case PriorityLow:
		return "pill-low"
	}
	return "pill-medium"
}

// Label returns the capitalised priority, treating an empty value as medium.
func (p TicketPriority) Label() string {
	if p == "" {
		return Capitalize(string(PriorityMedium))
	}
	return Capitalize(string(p))
}

// Ticket is a helpdesk request as returned by the backend.
// The web tier never creates or mutates tickets locally.
type Ticket struct {
	ID                 int64          `json:"id"`
	Subject            string         `json:"subject"`
	Body               string         `json:"body,omitempty"`
	Category           string         `json:"category,omitempty"`
	Priority           TicketPriority `json:"priority,omitempty"`
	Queue              string         `json:"queue,omitempty"`
	Status             TicketStatus   `json:"status"`
	CreatedAt          Timestamp      `json:"created_at"`
	UpdatedAt          Timestamp      `json:"updated_at"`
	UserName           string         `json:"user_name,omitempty"`
	UserEmail          string         `json:"user_email,omitempty"`
	AdminNotes         string         `json:"admin_notes,omitempty"`
	ConfidenceCategory float64        `json:"confidence_category,omitempty"`
	ConfidencePriority float64        `json:"confidence_priority,omitempty"`
}

// HasDetails reports whether the ticket has anything to show in an expandable row.
func (t Ticket) HasDetails() bool {
	return t.Body != "" || t.AdminNotes != ""
}

// UpdateTicketParams is a partial update: nil fields are left untouched.
type UpdateTicketParams struct {
	Status     *TicketStatus `json:"status,omitempty"`
	AdminNotes *string       `json:"admin_notes,omitempty"`
}

// FormatTicketID renders an id as the zero-padded "#00042" form.
func FormatTicketID(id int64) string {
	return fmt.Sprintf("#%05d", id)
}

// FormatTicketReference renders an id as the "#TKT-00042" form shown after submission.
func FormatTicketReference(id int64) string {
	return fmt.Sprintf("#TKT-%05d", id)
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

// Timestamp accepts the handful of layouts the backend emits.
// Unparseable values decode to the zero time instead of failing the whole payload.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses s using the known backend layouts.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		ts.Time = time.Time{}
		return nil
	}
	ts.Time, _ = ParseTimestamp(raw)
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Format("2006-01-02 15:04:05"))
}

// Date layouts used across the views.
const (
	LayoutDate       = "Jan 2, 2006"
	LayoutShortDate  = "Jan 2"
	LayoutDateTime   = "Jan 2, 2006, 03:04 PM"
	placeholderValue = "—"
)

// FormatDate formats t with layout, rendering the zero time as a dash.
func FormatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return placeholderValue
	}
	return t.Format(layout)
}

// OrPlaceholder returns s, or a dash when s is empty.
func OrPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholderValue
	}
	return s
}

// TicketSort is the ordering requested from GET /api/tickets.
type TicketSort string

const (
	SortByDate     TicketSort = "date"
	SortByPriority TicketSort = "priority"
)

// ParseTicketSort maps a query value onto a known ordering, defaulting to date.
func ParseTicketSort(s string) TicketSort {
	if TicketSort(s) == SortByPriority {
		return SortByPriority
	}
	return SortByDate
}

// FilterAll is the status filter value that matches every ticket.
const FilterAll = "all"
