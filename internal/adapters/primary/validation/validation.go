package validation

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lorrc/smartdesk-web/internal/core/domain"
	apperrors "github.com/lorrc/smartdesk-web/internal/core/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Validator validates form data
type Validator struct {
	errors *apperrors.ValidationErrors
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		errors: apperrors.NewValidationErrors(),
	}
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return v.errors.HasErrors()
}

// Err returns the collected errors, or nil when the input is valid.
func (v *Validator) Err() error {
	if v.HasErrors() {
		return v.errors
	}
	return nil
}

// Required validates that a string is not blank
func (v *Validator) Required(field, value, message string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.errors.Add(field, message)
	}
	return v
}

// MinLength validates minimum length in characters
func (v *Validator) MinLength(field, value string, min int, message string) *Validator {
	if value != "" && utf8.RuneCountInString(value) < min {
		v.errors.Add(field, message)
	}
	return v
}

// MaxLength validates maximum length in characters
func (v *Validator) MaxLength(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.errors.Add(field, "Must be at most "+strconv.Itoa(max)+" characters")
	}
	return v
}

// Email validates email format
func (v *Validator) Email(field, value string) *Validator {
	if value != "" && !emailRegex.MatchString(value) {
		v.errors.Add(field, "Please enter a valid email address")
	}
	return v
}

// OneOf validates value is one of the allowed values
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v // Empty is handled by Required
	}

	for _, a := range allowed {
		if value == a {
			return v
		}
	}

	v.errors.Add(field, "Must be one of: "+strings.Join(allowed, ", "))
	return v
}

// Custom adds a custom validation
func (v *Validator) Custom(field string, valid bool, message string) *Validator {
	if !valid {
		v.errors.Add(field, message)
	}
	return v
}

// AnalysisForm reads and checks the subject/body pair of the landing page form.
// Both fields are required and no request may be sent without them.
func AnalysisForm(r *http.Request) (domain.AnalysisRequest, error) {
	req := domain.AnalysisRequest{
		Subject: strings.TrimSpace(r.PostFormValue("subject")),
		Body:    strings.TrimSpace(r.PostFormValue("body")),
	}

	v := NewValidator()
	v.Custom("form", req.Subject != "" && req.Body != "", "Please fill in both subject and description")
	return req, v.Err()
}

// LoginForm reads the login form.
func LoginForm(r *http.Request) (domain.Credentials, error) {
	creds := domain.Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	v := NewValidator()
	v.Custom("form", creds.Email != "" && creds.Password != "", "Please enter your email and password")
	return creds, v.Err()
}

// SignupForm reads the registration form.
func SignupForm(r *http.Request) (domain.SignupParams, error) {
	params := domain.SignupParams{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	v := NewValidator()
	v.Custom("form", params.Name != "" && params.Email != "" && params.Password != "", "All fields are required")
	v.Email("email", params.Email).
		MaxLength("name", params.Name, domain.MaxNameLength).
		MinLength("password", params.Password, domain.MinPasswordLength,
			"Password must be at least "+strconv.Itoa(domain.MinPasswordLength)+" characters")
	return params, v.Err()
}

// StatusForm reads the status select of a dashboard row.
func StatusForm(r *http.Request) (domain.TicketStatus, error) {
	status := domain.TicketStatus(r.PostFormValue("status"))

	allowed := make([]string, len(domain.AllStatuses))
	for i, s := range domain.AllStatuses {
		allowed[i] = string(s)
	}

	v := NewValidator()
	v.Required("status", string(status), "Please choose a status").
		OneOf("status", string(status), allowed)
	return status, v.Err()
}

// ParseTicketID parses a positive ticket id from a path segment.
func ParseTicketID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequestError(apperrors.ErrInvalidTicketID, "Invalid ticket ID")
	}
	return id, nil
}

// ParseIDQueryParam parses an optional positive id from the query string.
// Anything missing or malformed yields 0.
func ParseIDQueryParam(r *http.Request, key string) int64 {
	id, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// ParseFilterQueryParam returns the status filter, defaulting to "all".
// Unknown values are kept verbatim; they match no ticket.
func ParseFilterQueryParam(r *http.Request) string {
	if f := r.URL.Query().Get("status"); f != "" {
		return f
	}
	return domain.FilterAll
}

// ParseSortQueryParam returns the requested ticket order, defaulting to newest first.
func ParseSortQueryParam(r *http.Request) domain.TicketSort {
	return domain.ParseTicketSort(r.URL.Query().Get("sort"))
}
