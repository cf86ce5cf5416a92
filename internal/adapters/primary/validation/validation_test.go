package validation

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/smartdesk-web/internal/core/domain"
	apperrors "github.com/lorrc/smartdesk-web/internal/core/errors"
)

func formRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAnalysisForm(t *testing.T) {
	req, err := AnalysisForm(formRequest(url.Values{"subject": {"  VPN down "}, "body": {"since 9am"}}))
	require.NoError(t, err)
	assert.Equal(t, "VPN down", req.Subject)

	_, err = AnalysisForm(formRequest(url.Values{"subject": {"VPN down"}, "body": {"   "}}))
	require.Error(t, err)
	assert.Equal(t, "Please fill in both subject and description", apperrors.UserMessage(err, ""))
}

func TestSignupForm(t *testing.T) {
	tests := []struct {
		name    string
		values  url.Values
		wantMsg string
	}{
		{
			name:   "valid",
			values: url.Values{"name": {"Ada Lovelace"}, "email": {"ada@example.com"}, "password": {"secret"}},
		},
		{
			name:    "missing name",
			values:  url.Values{"email": {"ada@example.com"}, "password": {"secret"}},
			wantMsg: "All fields are required",
		},
		{
			name:    "short password",
			values:  url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "password": {"12345"}},
			wantMsg: "Password must be at least 6 characters",
		},
		{
			name:    "bad email",
			values:  url.Values{"name": {"Ada"}, "email": {"ada"}, "password": {"secret"}},
			wantMsg: "Please enter a valid email address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := SignupForm(formRequest(tt.values))
			if tt.wantMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, "Ada Lovelace", params.Name)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, apperrors.UserMessage(err, ""))
		})
	}
}

func TestStatusForm(t *testing.T) {
	status, err := StatusForm(formRequest(url.Values{"status": {"In Progress"}}))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, status)

	_, err = StatusForm(formRequest(url.Values{"status": {"Archived"}}))
	assert.Error(t, err)

	_, err = StatusForm(formRequest(url.Values{}))
	assert.Error(t, err)
}

func TestParseTicketID(t *testing.T) {
	id, err := ParseTicketID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "0", "-3", "abc"} {
		_, err := ParseTicketID(raw)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTicketID, raw)
	}
}

func TestQueryParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard?status=Resolved&sort=priority&open=7", nil)
	assert.Equal(t, "Resolved", ParseFilterQueryParam(req))
	assert.Equal(t, domain.SortByPriority, ParseSortQueryParam(req))
	assert.Equal(t, int64(7), ParseIDQueryParam(req, "open"))

	req = httptest.NewRequest(http.MethodGet, "/dashboard?open=x", nil)
	assert.Equal(t, domain.FilterAll, ParseFilterQueryParam(req))
	assert.Equal(t, domain.SortByDate, ParseSortQueryParam(req))
	assert.Equal(t, int64(0), ParseIDQueryParam(req, "open"))
}
