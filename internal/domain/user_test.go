package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_FullName(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		expected string
	}{
		{
			name:     "first and last name",
			user:     User{FirstName: "John", LastName: "Smith"},
			expected: "John Smith",
		},
		{
			name:     "first name only",
			user:     User{FirstName: "John"},
			expected: "John",
		},
		{
			name:     "last name only",
			user:     User{LastName: "Smith"},
			expected: "Smith",
		},
		{
			name:     "no name",
			user:     User{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.user.FullName())
		})
	}
}

func TestUser_Mention(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		expected string
	}{
		{
			name:     "username wins",
			user:     User{ID: 1, FirstName: "John", Username: "johnny"},
			expected: "@johnny",
		},
		{
			name:     "full name without username",
			user:     User{ID: 1, FirstName: "John", LastName: "Smith"},
			expected: "John Smith",
		},
		{
			name:     "id as last resort",
			user:     User{ID: 42},
			expected: "id42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.user.Mention())
		})
	}
}

func TestAsFloodWait(t *testing.T) {
	wrapped := fmt.Errorf("resolve username: %w", &FloodWaitError{Wait: 30 * time.Second})

	wait, ok := AsFloodWait(wrapped)
	assert.True(t, ok)
	assert.Equal(t, 30*time.Second, wait)

	_, ok = AsFloodWait(ErrUserNotFound)
	assert.False(t, ok)
}
