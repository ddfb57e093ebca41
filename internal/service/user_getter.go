package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"whoisbot/internal/domain"
	"whoisbot/internal/ratelimit"

	"go.uber.org/zap"
)

// Cooldown keys, one per lookup method
const (
	usernameLookupKey = "user_getter.by_username"
	fullnameLookupKey = "user_getter.by_fullname"
)

// Directory is the Telegram side of user lookups
type Directory interface {
	ResolveUsername(ctx context.Context, username string) (*domain.User, error)
	SearchChatMembers(ctx context.Context, chatID int64, query string) ([]domain.User, error)
}

// UserGetter resolves users from a username, a display name within a chat, or both
type UserGetter struct {
	directory Directory
	cooldown  *ratelimit.Cooldown
	logger    *zap.Logger

	// retryFlooded retries once after a flood wait instead of reporting not found
	retryFlooded bool
	sleep        func(ctx context.Context, d time.Duration) error
}

// UserGetterOption configures a UserGetter
type UserGetterOption func(*UserGetter)

// WithFloodWaitRetry makes lookups retry once after sleeping out a flood wait
func WithFloodWaitRetry(enabled bool) UserGetterOption {
	return func(g *UserGetter) {
		g.retryFlooded = enabled
	}
}

// NewUserGetter creates a new user getter
func NewUserGetter(directory Directory, cooldown *ratelimit.Cooldown, logger *zap.Logger, opts ...UserGetterOption) *UserGetter {
	g := &UserGetter{
		directory: directory,
		cooldown:  cooldown,
		logger:    logger,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GetUser tries the username first and falls back to a fullname search in the chat.
// It returns nil without an error when nothing matches.
func (g *UserGetter) GetUser(ctx context.Context, q domain.LookupQuery) (*domain.User, error) {
	if q.Username != "" {
		user, err := g.GetUserByUsername(ctx, q.Username)
		if err == nil {
			return user, nil
		}
		if !isLookupMiss(err) {
			return nil, err
		}
		g.logger.Debug("Username lookup missed, trying fullname",
			zap.String("username", q.Username),
			zap.Int64("chat_id", q.ChatID),
			zap.Error(err),
		)
	}

	user, err := g.GetUserByFullname(ctx, q.ChatID, q.Fullname)
	if err != nil {
		if isLookupMiss(err) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// GetUserByUsername resolves a username, with or without the leading @
func (g *UserGetter) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, domain.ErrUserNotFound
	}

	return ratelimit.Call(ctx, g.cooldown, usernameLookupKey, func(ctx context.Context) (*domain.User, error) {
		g.logger.Info("Getting user by username", zap.String("username", username))

		user, err := g.withFloodWait(ctx, usernameLookupKey, func(ctx context.Context) (*domain.User, error) {
			return g.directory.ResolveUsername(ctx, username)
		})
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				g.logger.Info("Username not found", zap.String("username", username))
			}
			return nil, err
		}

		g.logger.Info("Found user", userFields(user)...)
		return user, nil
	})
}

// GetUserByFullname returns the first member of the chat matching fullname
func (g *UserGetter) GetUserByFullname(ctx context.Context, chatID int64, fullname string) (*domain.User, error) {
	fullname = strings.TrimSpace(fullname)
	if fullname == "" || chatID == 0 {
		return nil, domain.ErrUserNotFound
	}

	return ratelimit.Call(ctx, g.cooldown, fullnameLookupKey, func(ctx context.Context) (*domain.User, error) {
		g.logger.Info("Getting user by name",
			zap.String("name", fullname),
			zap.Int64("chat_id", chatID),
		)

		user, err := g.withFloodWait(ctx, fullnameLookupKey, func(ctx context.Context) (*domain.User, error) {
			members, err := g.directory.SearchChatMembers(ctx, chatID, fullname)
			if err != nil {
				return nil, err
			}

			ids := make([]int64, 0, len(members))
			for _, m := range members {
				ids = append(ids, m.ID)
			}
			g.logger.Info("Chat members found", zap.Int64s("user_ids", ids))

			if len(members) == 0 {
				return nil, domain.ErrUserNotFound
			}
			first := members[0]
			return &first, nil
		})
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				g.logger.Info("Name not found", zap.String("name", fullname), zap.Int64("chat_id", chatID))
			}
			return nil, err
		}

		return user, nil
	})
}

// withFloodWait sleeps out a flood wait and then reports not found,
// or retries once when retryFlooded is set. The retry waits for the cooldown of key again.
func (g *UserGetter) withFloodWait(ctx context.Context, key string, call func(context.Context) (*domain.User, error)) (*domain.User, error) {
	attempts := 1
	if g.retryFlooded {
		attempts = 2
	}

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if waitErr := g.cooldown.Wait(ctx, key); waitErr != nil {
				return nil, waitErr
			}
		}

		var user *domain.User
		user, err = call(ctx)
		wait, flooded := domain.AsFloodWait(err)
		if !flooded {
			return user, err
		}

		g.logger.Error("Flood wait", zap.Duration("wait", wait), zap.Int("attempt", i+1))
		if sleepErr := g.sleep(ctx, wait); sleepErr != nil {
			return nil, sleepErr
		}
	}

	return nil, fmt.Errorf("%w: %v", domain.ErrUserNotFound, err)
}

// isLookupMiss reports errors that mean "try something else" rather than failure
func isLookupMiss(err error) bool {
	return errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrLookupRejected)
}

func userFields(u *domain.User) []zap.Field {
	return []zap.Field{
		zap.Int64("user_id", u.ID),
		zap.Bool("is_bot", u.IsBot),
		zap.String("first_name", u.FirstName),
		zap.String("last_name", u.LastName),
		zap.String("username", u.Username),
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
