package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// maxRedirects bounds the internal redirect loop. A handler chain that
// bounces more often than this is treated as a fault instead of spinning
// until the request is cancelled.
const maxRedirects = 16

// RouterOptions wires a Router. Mux and Gateway are required; Store, Tokens
// and Limiter default to the in-process implementations.
type RouterOptions struct {
	Settings Settings
	Mux      *Mux
	Gateway  Gateway

	Store      ChatStore
	Tokens     TokenStore
	Limiter    *RateLimiter
	MessageLog MessageLog
	Logger     *slog.Logger
}

// Router is the control loop: it validates an inbound update, applies rate
// limiting, resolves the route, invokes the bound handler and dispatches
// its results, looping internally on redirects.
type Router struct {
	settings Settings
	mux      *Mux
	gateway  Gateway
	store    ChatStore
	tokens   TokenStore
	limiter  *RateLimiter
	msgLog   MessageLog
	logger   *slog.Logger

	dispatcher *Dispatcher
}

func NewRouter(opts RouterOptions) (*Router, error) {
	if opts.Mux == nil {
		return nil, fmt.Errorf("router requires a mux")
	}
	if opts.Gateway == nil {
		return nil, fmt.Errorf("router requires a gateway")
	}
	store := opts.Store
	if store == nil {
		store = NewMemoryChatStore(0)
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = NewEncoder()
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = NewRateLimiter()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		settings:   opts.Settings,
		mux:        opts.Mux,
		gateway:    opts.Gateway,
		store:      store,
		tokens:     tokens,
		limiter:    limiter,
		msgLog:     opts.MessageLog,
		logger:     logger,
		dispatcher: NewDispatcher(opts.Gateway, store, opts.Settings.HistoryLevel, opts.MessageLog, logger),
	}, nil
}

// Tokens exposes the router's token store so handler registration code can
// share it when building buttons.
func (r *Router) Tokens() TokenStore { return r.tokens }

// HandleUpdate processes one inbound delivery end to end. It never reports
// failure to the caller: faults are converted into a generic message to the
// chat plus a logged error, so the webhook response to the platform stays a
// success and no retry storm builds up.
func (r *Router) HandleUpdate(ctx context.Context, u *Update) {
	kind := u.Kind()
	if kind == KindUnsupported {
		r.logger.Warn("update_rejected", "reason", "unsupported_kind", "update_id", u.UpdateID)
		return
	}

	chatID := u.ChatID()
	// The limiter write runs no matter how processing ends.
	defer r.limiter.UpdateLastAccessTime(chatID)

	if rl := r.settings.RateLimit; rl != nil && r.limiter.ShouldLimit(chatID, rl.Delay) {
		r.answerRateLimited(ctx, u, rl)
		r.logger.Warn("update_rate_limited", "chat_id", chatID, "update_id", u.UpdateID)
		return
	}

	if err := r.process(ctx, u); err != nil {
		traceID := uuid.NewString()
		r.logger.Error("update_failed", "chat_id", chatID, "update_id", u.UpdateID, "trace_id", traceID, "error", err.Error())
		notice := fmt.Sprintf("An error occurred while processing this request (trace %s).", traceID)
		if _, sendErr := r.gateway.SendMessage(ctx, chatID, notice, nil); sendErr != nil {
			r.logger.Warn("failure_notice_error", "chat_id", chatID, "trace_id", traceID, "error", sendErr.Error())
		}
	}
}

func (r *Router) process(ctx context.Context, u *Update) error {
	chatID := u.ChatID()

	if err := r.store.SetProfile(ctx, u.Chat()); err != nil {
		return fmt.Errorf("record profile: %w", err)
	}

	payload := u.Payload()

	freeText := ""
	if kind := u.Kind(); kind == KindText || kind == KindEditedText {
		freeText = payload
	}

	if r.msgLog != nil {
		if err := r.msgLog.Write(ctx, chatID, payload, DirectionIn); err != nil {
			return fmt.Errorf("message log: %w", err)
		}
	}

	routeShaped := isRouteShaped(payload)
	if !routeShaped {
		// Free-form text implicitly dismisses the previous interactive
		// card and addresses the chat's current screen.
		prevID, hasPrev, err := r.store.PreviousMessageID(ctx, chatID)
		if err != nil {
			return err
		}
		if hasPrev {
			r.dispatcher.tryTrimHistory(ctx, chatID, prevID)
			if err := r.store.ForgetPreviousMessageID(ctx, chatID); err != nil {
				return err
			}
		}
		stored, err := r.store.Path(ctx, chatID)
		if err != nil {
			return err
		}
		payload = stored
	}

	for i := 0; ; i++ {
		if i > maxRedirects {
			return fmt.Errorf("redirect limit exceeded after %d hops", maxRedirects)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if routeShaped {
			path := r.tokens.Pop(payload)
			if prefix := r.settings.AreaName; prefix != "" && !strings.HasPrefix(strings.ToLower(path), strings.ToLower(prefix)) {
				path = prefix + path
			}
			if err := r.store.SetPath(ctx, chatID, path); err != nil {
				return err
			}
			payload = path
		}

		path, query := splitRoute(payload)
		handler := r.mux.Lookup(path)
		if handler == nil {
			return fmt.Errorf("no handler bound to route %q", path)
		}

		req := &Request{
			Update: u,
			ChatID: chatID,
			Route:  path,
			Query:  query,
			Text:   freeText,
			Tokens: r.tokens,
			Store:  r.store,
		}
		view, err := handler(ctx, req)
		if err != nil {
			return fmt.Errorf("handler %q: %w", path, err)
		}

		var results []Result
		if view != nil {
			results = view.Results()
		}
		outcome, err := r.dispatcher.Dispatch(ctx, chatID, results)
		if err != nil {
			return fmt.Errorf("dispatch %q: %w", path, err)
		}
		if !outcome.Redirected {
			return nil
		}

		r.logger.Debug("internal_redirect", "chat_id", chatID, "from", path, "to", outcome.RedirectPath)
		payload = outcome.RedirectPath
		routeShaped = true
	}
}

// answerRateLimited shows the configured notice on a limited callback tap.
// Text and edited-text updates have no lightweight ack channel, so they are
// dropped silently.
func (r *Router) answerRateLimited(ctx context.Context, u *Update, rl *RateLimitSettings) {
	if u.CallbackQuery == nil || rl.Message == "" {
		return
	}
	if err := r.gateway.AnswerCallbackQuery(ctx, u.CallbackQuery.ID, rl.Message, rl.Delay); err != nil {
		r.logger.Warn("rate_limit_notice_error", "chat_id", u.ChatID(), "error", err.Error())
	}
}
