package service

import (
	"context"
	"fmt"

	"whoisbot/internal/domain"
	"whoisbot/internal/repository"
)

// RegistryService remembers users the bot has seen
type RegistryService struct {
	userRepo repository.UserRepository
}

// NewRegistryService creates a new registry service
func NewRegistryService(userRepo repository.UserRepository) *RegistryService {
	return &RegistryService{
		userRepo: userRepo,
	}
}

// Remember stores or refreshes a user record.
// Users without an ID (anonymous admins, channel posts) are skipped.
func (s *RegistryService) Remember(ctx context.Context, user domain.User) error {
	if user.ID == 0 {
		return nil
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return fmt.Errorf("remember user %d: %w", user.ID, err)
	}
	return nil
}
