package repository

import (
	"context"

	"whoisbot/internal/domain"
)

// UserRepository defines seen-user data operations
type UserRepository interface {
	Upsert(ctx context.Context, user domain.User) error
	DeleteNotSeenSince(ctx context.Context, days int) (int64, error)
}
