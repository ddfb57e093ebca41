package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"whoisbot/internal/domain"
	"whoisbot/internal/telegram"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	notFoundText = "User not found."
	failureText  = "Lookup failed. Try again later."
)

// handleWhois handles /whois command
func (h *Handler) handleWhois(c tele.Context) error {
	msg := c.Message()
	payload := strings.TrimSpace(msg.Payload)

	// Bare /whois in reply to a message describes that message's sender
	if payload == "" && msg.ReplyTo != nil && msg.ReplyTo.Sender != nil {
		user := telegram.FromBotUser(msg.ReplyTo.Sender)
		return c.Reply(formatUser(user))
	}

	q, ok := parseLookupArgs(payload)
	if !ok {
		return c.Reply(usageText)
	}
	if !msg.Private() {
		q.ChatID = c.Chat().ID
	}

	h.logger.Info("Whois request",
		zap.Int64("user_id", c.Sender().ID),
		zap.Int64("chat_id", c.Chat().ID),
		zap.String("username", q.Username),
		zap.String("name", q.Fullname),
	)

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	text, err := h.lookup(ctx, q)
	if err != nil {
		h.logger.Error("Failed to look up user", zap.Error(err))
		return c.Reply(failureText)
	}
	return c.Reply(text)
}

// lookup resolves q and renders the reply text
func (h *Handler) lookup(ctx context.Context, q domain.LookupQuery) (string, error) {
	user, err := h.getter.GetUser(ctx, q)
	if err != nil {
		// Long flood waits outlive the request budget; nothing was found in time
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
			h.logger.Warn("Lookup ran out of time", zap.Duration("timeout", lookupTimeout), zap.Error(err))
			return notFoundText, nil
		}
		return "", err
	}
	if user == nil {
		return notFoundText, nil
	}

	if err := h.registry.Remember(ctx, *user); err != nil {
		h.logger.Error("Failed to remember resolved user",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}

	return formatUser(*user), nil
}

// parseLookupArgs splits a /whois payload into lookup hints.
// "@name rest" is a username plus a display name, a lone word is tried as both,
// anything else is a display name.
func parseLookupArgs(payload string) (domain.LookupQuery, bool) {
	fields := strings.Fields(payload)
	if len(fields) == 0 {
		return domain.LookupQuery{}, false
	}

	if strings.HasPrefix(fields[0], "@") {
		username := strings.TrimPrefix(fields[0], "@")
		if username == "" {
			return domain.LookupQuery{}, false
		}
		return domain.LookupQuery{
			Username: username,
			Fullname: strings.Join(fields[1:], " "),
		}, true
	}

	if len(fields) == 1 {
		return domain.LookupQuery{Username: fields[0], Fullname: fields[0]}, true
	}

	return domain.LookupQuery{Fullname: strings.Join(fields, " ")}, true
}

// formatUser renders a user record as reply text
func formatUser(u domain.User) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ID: %d\n", u.ID)
	if name := u.FullName(); name != "" {
		fmt.Fprintf(&b, "Name: %s\n", name)
	}
	if u.Username != "" {
		fmt.Fprintf(&b, "Username: @%s\n", u.Username)
	}
	if u.LanguageCode != "" {
		fmt.Fprintf(&b, "Language: %s\n", u.LanguageCode)
	}
	if u.IsBot {
		b.WriteString("Bot: yes\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
