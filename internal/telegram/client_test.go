package telegram

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"whoisbot/internal/config"
)

var errConnectionLost = errors.New("connection lost")

// fakeRunner behaves like a gotd client: it runs once and refuses to run again
type fakeRunner struct {
	api     *tg.Client
	authErr error
	die     chan struct{}

	mu   sync.Mutex
	runs int
}

func (r *fakeRunner) Run(ctx context.Context, f func(ctx context.Context) error) error {
	r.mu.Lock()
	r.runs++
	runs := r.runs
	r.mu.Unlock()
	if runs > 1 {
		return errors.New("client already closed")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-r.die:
			cancel()
		case <-runCtx.Done():
		}
	}()

	err := f(runCtx)
	select {
	case <-r.die:
		return errConnectionLost
	default:
		return err
	}
}

func (r *fakeRunner) API() *tg.Client {
	return r.api
}

func (r *fakeRunner) Authorize(ctx context.Context, botToken string) error {
	return r.authErr
}

// runnerFactory hands out fake runners and remembers them
type runnerFactory struct {
	mu      sync.Mutex
	runners []*fakeRunner
	authErr error
}

func (f *runnerFactory) newRunner() runner {
	f.mu.Lock()
	defer f.mu.Unlock()

	r := &fakeRunner{
		api:     tg.NewClient(nil),
		authErr: f.authErr,
		die:     make(chan struct{}),
	}
	f.runners = append(f.runners, r)
	return r
}

func (f *runnerFactory) created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.runners)
}

func (f *runnerFactory) runner(i int) *fakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runners[i]
}

func newFakeClient() (*Client, *runnerFactory) {
	factory := &runnerFactory{}
	c := &Client{
		botToken:  "123:token",
		logger:    zap.NewNop(),
		newRunner: factory.newRunner,
	}
	return c, factory
}

func TestClient_StartIsIdempotent(t *testing.T) {
	c, factory := newFakeClient()
	ctx := context.Background()

	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Start(ctx))

	assert.True(t, c.IsConnected())
	assert.Equal(t, 1, factory.created())
	assert.Same(t, factory.runner(0).api, c.API())

	require.NoError(t, c.Stop())
	assert.False(t, c.IsConnected())
	assert.Nil(t, c.API())
}

func TestClient_StartAfterStop(t *testing.T) {
	c, factory := newFakeClient()
	ctx := context.Background()

	require.NoError(t, c.Start(ctx))
	require.NoError(t, c.Stop())
	require.NoError(t, c.Stop())

	require.NoError(t, c.Start(ctx))

	assert.True(t, c.IsConnected())
	assert.Equal(t, 2, factory.created())
	assert.Same(t, factory.runner(1).api, c.API())
	assert.NotSame(t, factory.runner(0).api, c.API())

	require.NoError(t, c.Stop())
}

func TestClient_StartAfterLoopDied(t *testing.T) {
	c, factory := newFakeClient()
	ctx := context.Background()

	require.NoError(t, c.Start(ctx))
	close(factory.runner(0).die)

	assert.Eventually(t, func() bool { return !c.IsConnected() }, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Start(ctx))

	assert.True(t, c.IsConnected())
	assert.Equal(t, 2, factory.created())
	assert.Same(t, factory.runner(1).api, c.API())

	require.NoError(t, c.Stop())
}

func TestClient_StopReportsLostConnection(t *testing.T) {
	c, factory := newFakeClient()

	require.NoError(t, c.Start(context.Background()))
	close(factory.runner(0).die)

	assert.Eventually(t, func() bool { return !c.IsConnected() }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, c.Stop(), errConnectionLost)
	assert.NoError(t, c.Stop())
}

func TestClient_StartAfterFailedLogin(t *testing.T) {
	c, factory := newFakeClient()
	factory.authErr = errors.New("ACCESS_TOKEN_INVALID")
	ctx := context.Background()

	err := c.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ACCESS_TOKEN_INVALID")
	assert.False(t, c.IsConnected())
	assert.Nil(t, c.API())

	factory.authErr = nil
	require.NoError(t, c.Start(ctx))

	assert.True(t, c.IsConnected())
	assert.Equal(t, 2, factory.created())
	require.NoError(t, c.Stop())
}

func TestClient_StartCancelled(t *testing.T) {
	cfg := config.TelegramConfig{
		APIID:          12345,
		APIHash:        "0123456789abcdef0123456789abcdef",
		SessionPath:    filepath.Join(t.TempDir(), "session.json"),
		LookupCooldown: 100 * time.Millisecond,
		StartTimeout:   time.Second,
	}
	c := NewClient(cfg, "123:token", zap.NewNop())

	assert.False(t, c.IsConnected())
	assert.NoError(t, c.Stop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Start(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, c.IsConnected())
	assert.Nil(t, c.API())

	// A failed start leaves nothing to stop
	assert.NoError(t, c.Stop())
}
