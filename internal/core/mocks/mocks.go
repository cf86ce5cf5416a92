package mocks

import (
	"context"
	"net/http"

	"github.com/lorrc/smartdesk-web/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of ports.Backend
type MockBackend struct {
	mock.Mock
}

func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

func (m *MockBackend) Me(ctx context.Context) (*domain.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockBackend) Login(ctx context.Context, creds domain.Credentials) (*domain.User, []*http.Cookie, error) {
	args := m.Called(ctx, creds)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, cookiesArg(args, 1), args.Error(2)
}

func (m *MockBackend) Signup(ctx context.Context, params domain.SignupParams) ([]*http.Cookie, error) {
	args := m.Called(ctx, params)
	return cookiesArg(args, 0), args.Error(1)
}

func (m *MockBackend) Logout(ctx context.Context) ([]*http.Cookie, error) {
	args := m.Called(ctx)
	return cookiesArg(args, 0), args.Error(1)
}

func (m *MockBackend) Stats(ctx context.Context) (*domain.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Stats), args.Error(1)
}

func (m *MockBackend) ListTickets(ctx context.Context, sort domain.TicketSort) ([]domain.Ticket, error) {
	args := m.Called(ctx, sort)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockBackend) UpdateTicket(ctx context.Context, id int64, params domain.UpdateTicketParams) error {
	args := m.Called(ctx, id, params)
	return args.Error(0)
}

func (m *MockBackend) DeleteTicket(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBackend) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func (m *MockBackend) Predict(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisResult), args.Error(1)
}

func (m *MockBackend) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func cookiesArg(args mock.Arguments, i int) []*http.Cookie {
	if args.Get(i) == nil {
		return nil
	}
	return args.Get(i).([]*http.Cookie)
}
