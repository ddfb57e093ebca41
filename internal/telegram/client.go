package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"whoisbot/internal/config"
)

// ErrNotConnected is returned by lookups made while the client is stopped
var ErrNotConnected = errors.New("telegram client is not connected")

// runner is one MTProto connection. A runner is used for a single Run.
type runner interface {
	Run(ctx context.Context, f func(ctx context.Context) error) error
	API() *tg.Client
	Authorize(ctx context.Context, botToken string) error
}

// Client owns the MTProto connection used for user lookups.
// Start and Stop are idempotent and Start works again after Stop.
type Client struct {
	botToken string
	logger   *zap.Logger

	// newRunner builds a fresh connection for every Start, gotd clients cannot be rerun
	newRunner func() runner

	mu   sync.Mutex
	conn *connection
}

// connection is one run of the MTProto loop
type connection struct {
	runner runner
	cancel context.CancelFunc
	exited chan struct{}
	// err is set before exited is closed
	err error
}

func (c *connection) alive() bool {
	select {
	case <-c.exited:
		return false
	default:
		return true
	}
}

// NewClient creates a bot-authorised MTProto client. Nothing is dialed until Start.
func NewClient(cfg config.TelegramConfig, botToken string, logger *zap.Logger) *Client {
	opts := telegram.Options{
		SessionStorage: &session.FileStorage{Path: cfg.SessionPath},
		Logger:         logger.Named("mtproto"),
		NoUpdates:      true,
	}

	return &Client{
		botToken: botToken,
		logger:   logger,
		newRunner: func() runner {
			return &gotdRunner{
				Client: telegram.NewClient(cfg.APIID, cfg.APIHash, opts),
				logger: logger,
			}
		},
	}
}

// API returns the RPC client of the current connection, or nil when stopped
func (c *Client) API() *tg.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	return c.conn.runner.API()
}

// IsConnected reports whether the connection loop is running and logged in
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && c.conn.alive()
}

// Start connects and logs in as the bot. It returns once the session is ready.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		if c.conn.alive() {
			return nil
		}
		// Previous loop died on its own
		c.logger.Warn("Telegram client connection was lost, reconnecting", zap.Error(c.conn.err))
		c.conn.cancel()
		c.conn = nil
	}

	runCtx, cancel := context.WithCancel(context.Background())
	conn := &connection{
		runner: c.newRunner(),
		cancel: cancel,
		exited: make(chan struct{}),
	}
	ready := make(chan struct{})

	go func() {
		defer close(conn.exited)
		conn.err = conn.runner.Run(runCtx, func(ctx context.Context) error {
			if err := conn.runner.Authorize(ctx, c.botToken); err != nil {
				return err
			}
			close(ready)
			<-ctx.Done()
			return ctx.Err()
		})
	}()

	select {
	case <-ready:
		c.conn = conn
		c.logger.Info("Telegram client connected")
		return nil
	case <-conn.exited:
		cancel()
		return fmt.Errorf("failed to start telegram client: %w", conn.err)
	case <-ctx.Done():
		cancel()
		<-conn.exited
		return ctx.Err()
	}
}

// Stop closes the connection and waits for the run loop to exit
func (c *Client) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	conn := c.conn
	c.conn = nil
	conn.cancel()
	<-conn.exited

	err := conn.err
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	c.logger.Info("Telegram client stopped")
	return err
}

// gotdRunner adapts a gotd client to runner
type gotdRunner struct {
	*telegram.Client
	logger *zap.Logger
}

func (r *gotdRunner) Authorize(ctx context.Context, botToken string) error {
	status, err := r.Auth().Status(ctx)
	if err != nil {
		return fmt.Errorf("auth status: %w", err)
	}
	if status.Authorized {
		r.logger.Debug("Telegram session restored")
		return nil
	}

	if _, err := r.Auth().Bot(ctx, botToken); err != nil {
		return fmt.Errorf("bot login: %w", err)
	}
	r.logger.Info("Telegram bot session authorized")
	return nil
}
