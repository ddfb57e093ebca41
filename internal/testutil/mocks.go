package testutil

import (
	"context"

	"whoisbot/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Upsert(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteNotSeenSince(ctx context.Context, days int) (int64, error) {
	args := m.Called(ctx, days)
	return args.Get(0).(int64), args.Error(1)
}

// MockDirectory is a mock for the Telegram user directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) ResolveUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockDirectory) SearchChatMembers(ctx context.Context, chatID int64, query string) ([]domain.User, error) {
	args := m.Called(ctx, chatID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

// MockRegistry is a mock for the seen-user registry
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) Remember(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockUserGetter is a mock for the lookup service
type MockUserGetter struct {
	mock.Mock
}

func (m *MockUserGetter) GetUser(ctx context.Context, q domain.LookupQuery) (*domain.User, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
