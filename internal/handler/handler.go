package handler

import (
	"context"
	"time"

	"whoisbot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// lookupTimeout bounds one /whois request, flood waits included
const lookupTimeout = 2 * time.Minute

// UserGetter resolves users from lookup hints
type UserGetter interface {
	GetUser(ctx context.Context, q domain.LookupQuery) (*domain.User, error)
}

// Registry stores users seen by the bot
type Registry interface {
	Remember(ctx context.Context, user domain.User) error
}

// Handler manages all bot interactions
type Handler struct {
	bot      *tele.Bot
	getter   UserGetter
	registry Registry
	logger   *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	getter UserGetter,
	registry Registry,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:      bot,
		getter:   getter,
		registry: registry,
		logger:   logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/help", h.handleStart)
	h.bot.Handle("/whois", h.handleWhois)
}
