package handler

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const usageText = `I look up Telegram users.

/whois @username
/whois @username Full Name
/whois Full Name (in groups, searches chat members)

Reply to a message with /whois to see who sent it.`

// handleStart handles /start and /help commands
func (h *Handler) handleStart(c tele.Context) error {
	h.logger.Info("User started bot",
		zap.Int64("user_id", c.Sender().ID),
		zap.String("username", c.Sender().Username),
	)

	return c.Send(usageText)
}
