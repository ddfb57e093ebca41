package testutil

import (
	"context"
	"time"

	"whoisbot/internal/domain"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestUser creates a test user
func NewTestUser(id int64, username, firstName, lastName string) *domain.User {
	return &domain.User{
		ID:           id,
		FirstName:    firstName,
		LastName:     lastName,
		Username:     username,
		LanguageCode: "en",
	}
}

// SleepRecorder replaces real sleeping in tests and remembers requested durations
type SleepRecorder struct {
	Calls []time.Duration
}

// Sleep records d and returns immediately unless ctx is already done
func (s *SleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.Calls = append(s.Calls, d)
	return ctx.Err()
}
