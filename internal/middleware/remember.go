package middleware

import (
	"context"
	"time"

	"whoisbot/internal/domain"
	"whoisbot/internal/telegram"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// rememberTimeout bounds the write done before every update
const rememberTimeout = 3 * time.Second

// Registry stores users seen by the bot
type Registry interface {
	Remember(ctx context.Context, user domain.User) error
}

// RememberSender records every message sender before the handler runs.
// Storage failures are logged and never block the update.
func RememberSender(registry Registry, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(context.Background(), rememberTimeout)
			err := registry.Remember(ctx, telegram.FromBotUser(sender))
			cancel()
			if err != nil {
				logger.Error("Failed to remember sender",
					zap.Int64("user_id", sender.ID),
					zap.Error(err),
				)
			}

			return next(c)
		}
	}
}
