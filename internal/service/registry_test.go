package service

import (
	"context"
	"fmt"
	"testing"

	"whoisbot/internal/domain"
	"whoisbot/internal/testutil"

	"github.com/stretchr/testify/assert"
)

func TestRegistryService_Remember(t *testing.T) {
	tests := []struct {
		name          string
		user          domain.User
		mockError     error
		expectCall    bool
		expectedError bool
	}{
		{
			name:       "known user",
			user:       *testutil.NewTestUser(123, "johnny", "John", "Smith"),
			expectCall: true,
		},
		{
			name:          "database error",
			user:          *testutil.NewTestUser(456, "", "Jane", ""),
			mockError:     fmt.Errorf("db error"),
			expectCall:    true,
			expectedError: true,
		},
		{
			name:       "user without id",
			user:       domain.User{FirstName: "Anonymous"},
			expectCall: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mockRepo := new(testutil.MockUserRepository)
			if tt.expectCall {
				mockRepo.On("Upsert", ctx, tt.user).Return(tt.mockError)
			}

			service := NewRegistryService(mockRepo)

			err := service.Remember(ctx, tt.user)

			if tt.expectedError {
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.mockError)
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
			if !tt.expectCall {
				mockRepo.AssertNotCalled(t, "Upsert")
			}
		})
	}
}
