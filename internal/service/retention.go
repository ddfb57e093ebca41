package service

import (
	"context"

	"whoisbot/internal/repository"

	"go.uber.org/zap"
)

// RetentionService purges users the bot has not seen for a while
type RetentionService struct {
	userRepo      repository.UserRepository
	retentionDays int
	logger        *zap.Logger
}

// NewRetentionService creates a new retention service
func NewRetentionService(userRepo repository.UserRepository, retentionDays int, logger *zap.Logger) *RetentionService {
	return &RetentionService{
		userRepo:      userRepo,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// PurgeStale removes users not seen within the retention window
func (s *RetentionService) PurgeStale(ctx context.Context) error {
	s.logger.Info("Starting cleanup of stale users", zap.Int("retention_days", s.retentionDays))

	deleted, err := s.userRepo.DeleteNotSeenSince(ctx, s.retentionDays)
	if err != nil {
		s.logger.Error("Failed to cleanup stale users", zap.Error(err))
		return err
	}

	s.logger.Info("Cleanup completed successfully", zap.Int64("deleted", deleted))
	return nil
}
