// Package poller drives the engine from getUpdates long polling, the
// transport for development and for hosts without a public HTTPS endpoint.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/akbarishahpar/tgmvc/bot"
	"github.com/akbarishahpar/tgmvc/internal/worker"
	"github.com/akbarishahpar/tgmvc/telegramapi"
)

// API is the slice of the platform client the poller drives.
type API interface {
	GetMe(ctx context.Context) (*telegramapi.User, error)
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]bot.Update, int64, error)
}

type UpdateHandler interface {
	HandleUpdate(ctx context.Context, u *bot.Update)
}

// Options configures a Poller. Client and Handler are required.
type Options struct {
	Client  API
	Handler UpdateHandler

	// Timeout is the long-poll duration; zero means 30 seconds.
	Timeout time.Duration

	// MaxConcurrency bounds simultaneously processed updates across all
	// chats. Updates for the same chat always run serially.
	MaxConcurrency int

	Logger *slog.Logger
}

type Poller struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options) (*Poller, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("poller requires a client")
	}
	if opts.Handler == nil {
		return nil, fmt.Errorf("poller requires an update handler")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 4
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{opts: opts, logger: logger}, nil
}

// Run polls until ctx is cancelled. Transient poll errors back off and
// retry; only cancellation ends the loop.
func (p *Poller) Run(ctx context.Context) error {
	me, err := p.identify(ctx)
	if err != nil {
		return err
	}
	p.logger.Info("poll_started", "bot_username", me.Username, "timeout", p.opts.Timeout.String())

	group := worker.NewGroup[int64, bot.Update](ctx, p.opts.MaxConcurrency, 16, func(jobCtx context.Context, u bot.Update) {
		p.opts.Handler.HandleUpdate(jobCtx, &u)
	})

	var offset int64
	for {
		updates, next, err := p.opts.Client.GetUpdates(ctx, offset, p.opts.Timeout)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				p.logger.Info("poll_stopped", "reason", "context_canceled")
				return nil
			}
			if telegramapi.IsPollTimeout(err) {
				p.logger.Debug("poll_timeout", "error", err.Error())
			} else {
				p.logger.Warn("poll_error", "error", err.Error())
			}
			if !sleepCtx(ctx, time.Second) {
				return nil
			}
			continue
		}
		offset = next

		for _, u := range updates {
			if err := group.Enqueue(ctx, u.ChatID(), u); err != nil {
				p.logger.Info("poll_stopped", "reason", "context_canceled")
				return nil
			}
		}
	}
}

// identify confirms the token against getMe before polling, retrying a few
// times so a bot starting before its network is up still comes online.
func (p *Poller) identify(ctx context.Context) (*telegramapi.User, error) {
	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		me, err := p.opts.Client.GetMe(ctx)
		if err == nil {
			return me, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.logger.Warn("get_me_error", "attempt", attempt+1, "error", err.Error())
		if !sleepCtx(ctx, time.Duration(attempt+1)*time.Second) {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("identify bot: %w", lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
