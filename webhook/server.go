// Package webhook serves the HTTP endpoint the chat platform delivers
// updates to. The endpoint path embeds the bot token, so possession of the
// URL is the authentication.
package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/akbarishahpar/tgmvc/bot"
)

// UpdateHandler is the engine entry point the server feeds. bot.Router
// satisfies it.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, u *bot.Update)
}

// Options configures a Server. Handler and Token are required.
type Options struct {
	Bind    string
	Port    int
	Token   string
	Handler UpdateHandler
	Logger  *slog.Logger
}

// Server is the webhook HTTP front. It always acknowledges deliveries with
// 200 once the token matched: the engine owns failure reporting, and a
// non-2xx ack would only make the platform redeliver the same update.
type Server struct {
	opts   Options
	logger *slog.Logger
	http   *http.Server
}

func NewServer(opts Options) (*Server, error) {
	if opts.Handler == nil {
		return nil, fmt.Errorf("webhook server requires an update handler")
	}
	if opts.Token == "" {
		return nil, fmt.Errorf("webhook server requires the bot token")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{opts: opts, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/bot/{token}", s.handleDelivery)

	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.Bind, opts.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler exposes the HTTP handler for tests and embedding.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("webhook_listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleDelivery(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.opts.Token)) != 1 {
		http.NotFound(w, r)
		return
	}

	var u bot.Update
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		// Acknowledge anyway: a malformed body will not improve on retry.
		s.logger.Warn("webhook_bad_payload", "error", err.Error())
		w.WriteHeader(http.StatusOK)
		return
	}

	s.opts.Handler.HandleUpdate(r.Context(), &u)
	w.WriteHeader(http.StatusOK)
}
