package ports

import (
	"context"
	"net/http"

	"github.com/lorrc/smartdesk-web/internal/core/domain"
)

// The web tier owns no data. These ports describe the SmartDesk REST API it
// reads and writes through. Browser cookies reach the backend via the request
// context; calls that change the backend session return the cookies to relay.

// AuthGateway covers the session endpoints.
type AuthGateway interface {
	Me(ctx context.Context) (*domain.Session, error)
	Login(ctx context.Context, creds domain.Credentials) (*domain.User, []*http.Cookie, error)
	Signup(ctx context.Context, params domain.SignupParams) ([]*http.Cookie, error)
	Logout(ctx context.Context) ([]*http.Cookie, error)
}

// TicketGateway covers the ticket and statistics endpoints.
// The backend scopes every answer to the caller's role.
type TicketGateway interface {
	Stats(ctx context.Context) (*domain.Stats, error)
	ListTickets(ctx context.Context, sort domain.TicketSort) ([]domain.Ticket, error)
	UpdateTicket(ctx context.Context, id int64, params domain.UpdateTicketParams) error
	DeleteTicket(ctx context.Context, id int64) error
}

// ClassifierGateway covers the ticket analysis endpoints.
// Analyze never persists; Predict stores the ticket for a signed-in user.
type ClassifierGateway interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
	Predict(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
}

// Backend is the full SmartDesk API surface.
type Backend interface {
	AuthGateway
	TicketGateway
	ClassifierGateway
	Ping(ctx context.Context) error
}
