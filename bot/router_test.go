package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestRouter(t *testing.T, mux *Mux, gw *fakeGateway, settings Settings) *Router {
	t.Helper()
	r, err := NewRouter(RouterOptions{
		Settings: settings,
		Mux:      mux,
		Gateway:  gw,
		Logger:   slog.New(slog.DiscardHandler),
	})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	return r
}

func TestRouterFreeTextHitsCurrentScreen(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	mux := NewMux()
	mux.NotFound(func(ctx context.Context, req *Request) (*View, error) {
		return NewView().AddMessage("Hi, " + req.Text), nil
	})
	r := newTestRouter(t, mux, gw, Settings{})

	// A brand-new chat has no stored path, so free text lands on the
	// not-found handler with the raw text available.
	r.HandleUpdate(ctx, textUpdate(42, "hello"))

	sends := gw.callsFor("sendMessage")
	if len(sends) != 1 || sends[0].Text != "Hi, hello" {
		t.Fatalf("sendMessage calls = %+v, want greeting with the free text", sends)
	}
}

func TestRouterFreeTextDoesNotMovePath(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	mux := NewMux()
	mux.NotFound(noopHandler)
	r := newTestRouter(t, mux, gw, Settings{})

	r.HandleUpdate(ctx, textUpdate(42, "hello"))

	path, err := r.store.Path(ctx, 42)
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	if path != "" {
		t.Fatalf("Path() = %q after free text, want unchanged empty path", path)
	}
}

func TestRouterRouteUpdatesPath(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	mux := NewMux()
	mux.Handle("/tickets", func(ctx context.Context, req *Request) (*View, error) {
		return NewView().AddMessage("tickets"), nil
	})
	r := newTestRouter(t, mux, gw, Settings{})

	r.HandleUpdate(ctx, textUpdate(42, "/tickets"))

	if path, _ := r.store.Path(ctx, 42); path != "/tickets" {
		t.Fatalf("Path() = %q, want %q", path, "/tickets")
	}
}

func TestRouterAreaPrefix(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	mux := NewMux()
	hit := ""
	mux.Handle("/support/tickets", func(ctx context.Context, req *Request) (*View, error) {
		hit = req.Route
		return NewView(), nil
	})
	r := newTestRouter(t, mux, gw, Settings{AreaName: "/support"})

	r.HandleUpdate(ctx, textUpdate(42, "/tickets"))
	if hit != "/support/tickets" {
		t.Fatalf("resolved route = %q, want area-prefixed path", hit)
	}

	// Already-prefixed routes are not prefixed twice.
	hit = ""
	r.HandleUpdate(ctx, textUpdate(42, "/support/tickets"))
	if hit != "/support/tickets" {
		t.Fatalf("resolved route = %q, want single prefix", hit)
	}
}

func TestRouterTokenRoundTripViaCallback(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	mux := NewMux()
	var submitted []string
	mux.Handle("/tickets", func(ctx context.Context, req *Request) (*View, error) {
		code := req.Tokens.Push("/tickets/submit?id=7")
		return NewView().
			AddMessage("pick one").
			AddInlineKeyboard(InlineRow(CallbackButton("Submit", code))), nil
	})
	mux.Handle("/tickets/submit", func(ctx context.Context, req *Request) (*View, error) {
		submitted = append(submitted, req.Query.Get("id"))
		return NewView().AddMessage("done"), nil
	})
	mux.Handle(FallbackRoute, func(ctx context.Context, req *Request) (*View, error) {
		return NewView().AddMessage("start over"), nil
	})
	r := newTestRouter(t, mux, gw, Settings{})

	r.HandleUpdate(ctx, textUpdate(42, "/tickets"))

	sends := gw.callsFor("sendMessage")
	if len(sends) != 1 {
		t.Fatalf("sendMessage calls = %d, want 1", len(sends))
	}
	markup, ok := sends[0].Markup.(InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("sent markup = %T, want InlineKeyboardMarkup", sends[0].Markup)
	}
	code := markup.InlineKeyboard[0][0].CallbackData
	if !strings.HasPrefix(code, tokenPrefix) {
		t.Fatalf("button data = %q, want an issued token", code)
	}

	// First tap resolves the hidden route with its query intact.
	r.HandleUpdate(ctx, callbackUpdate(42, code))
	if len(submitted) != 1 || submitted[0] != "7" {
		t.Fatalf("submitted = %v, want one submission with id 7", submitted)
	}

	// Replaying the same token lands on the fallback route.
	r.HandleUpdate(ctx, callbackUpdate(42, code))
	sends = gw.callsFor("sendMessage")
	if last := sends[len(sends)-1]; last.Text != "start over" {
		t.Fatalf("replayed token produced %q, want the fallback screen", last.Text)
	}
}

func TestRouterRateLimitDoubleTap(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	mux := NewMux()
	calls := 0
	mux.Handle("/tickets", func(ctx context.Context, req *Request) (*View, error) {
		calls++
		return NewView().AddMessage("tickets"), nil
	})
	r := newTestRouter(t, mux, gw, Settings{
		RateLimit: &RateLimitSettings{Delay: 5 * time.Second, Message: "Slow down"},
	})
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	r.limiter.now = func() time.Time { return clock }

	r.HandleUpdate(ctx, callbackUpdate(42, "/tickets"))

	clock = clock.Add(2 * time.Second)
	r.HandleUpdate(ctx, callbackUpdate(42, "/tickets"))

	if calls != 1 {
		t.Fatalf("handler calls = %d, want the second tap limited", calls)
	}
	acks := gw.callsFor("answerCallbackQuery")
	if len(acks) != 1 || acks[0].Text != "Slow down" {
		t.Fatalf("answerCallbackQuery calls = %+v, want one notice", acks)
	}

	// A limited turn still refreshes the window.
	clock = clock.Add(4 * time.Second)
	r.HandleUpdate(ctx, callbackUpdate(42, "/tickets"))
	if calls != 1 {
		t.Fatalf("handler calls = %d, want the third tap limited too", calls)
	}

	clock = clock.Add(6 * time.Second)
	r.HandleUpdate(ctx, callbackUpdate(42, "/tickets"))
	if calls != 2 {
		t.Fatalf("handler calls = %d, want the cooled-down tap served", calls)
	}
}

func TestRouterInternalRedirect(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	mux := NewMux()
	mux.Handle("/old", func(ctx context.Context, req *Request) (*View, error) {
		return NewView().AddRedirect("/new"), nil
	})
	mux.Handle("/new", func(ctx context.Context, req *Request) (*View, error) {
		return NewView().AddMessage("arrived"), nil
	})
	r := newTestRouter(t, mux, gw, Settings{})

	r.HandleUpdate(ctx, textUpdate(42, "/old"))

	sends := gw.callsFor("sendMessage")
	if len(sends) != 1 || sends[0].Text != "arrived" {
		t.Fatalf("sendMessage calls = %+v, want redirect target output", sends)
	}
	if path, _ := r.store.Path(ctx, 42); path != "/new" {
		t.Fatalf("Path() = %q, want the redirect target recorded", path)
	}
}

func TestRouterRedirectLoopFaults(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	mux := NewMux()
	mux.Handle("/ping", func(ctx context.Context, req *Request) (*View, error) {
		return NewView().AddRedirect("/pong"), nil
	})
	mux.Handle("/pong", func(ctx context.Context, req *Request) (*View, error) {
		return NewView().AddRedirect("/ping"), nil
	})
	r := newTestRouter(t, mux, gw, Settings{})

	r.HandleUpdate(ctx, textUpdate(42, "/ping"))

	sends := gw.callsFor("sendMessage")
	if len(sends) != 1 || !strings.Contains(sends[0].Text, "trace ") {
		t.Fatalf("sendMessage calls = %+v, want one failure notice with a trace id", sends)
	}
}

func TestRouterHandlerErrorSendsTraceNotice(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	mux := NewMux()
	mux.Handle("/boom", func(ctx context.Context, req *Request) (*View, error) {
		return nil, errors.New("kaput")
	})
	r := newTestRouter(t, mux, gw, Settings{})

	r.HandleUpdate(ctx, textUpdate(42, "/boom"))

	sends := gw.callsFor("sendMessage")
	if len(sends) != 1 {
		t.Fatalf("sendMessage calls = %d, want one failure notice", len(sends))
	}
	if !strings.Contains(sends[0].Text, "An error occurred while processing this request") {
		t.Fatalf("notice = %q, want the generic failure text", sends[0].Text)
	}
}

func TestRouterUnsupportedUpdateIsDropped(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	mux := NewMux()
	mux.NotFound(noopHandler)
	r := newTestRouter(t, mux, gw, Settings{})

	r.HandleUpdate(ctx, &Update{UpdateID: 9})

	if len(gw.calls) != 0 {
		t.Fatalf("gateway calls = %+v, want none for an unsupported update", gw.calls)
	}
}

func TestRouterUnboundRouteFaults(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	r := newTestRouter(t, NewMux(), gw, Settings{})

	r.HandleUpdate(ctx, textUpdate(42, "/nowhere"))

	sends := gw.callsFor("sendMessage")
	if len(sends) != 1 || !strings.Contains(sends[0].Text, "trace ") {
		t.Fatalf("sendMessage calls = %+v, want a failure notice", sends)
	}
}

func TestRouterFreeTextDismissesPreviousCard(t *testing.T) {
	ctx := context.Background()
	gw := newFakeGateway()
	mux := NewMux()
	mux.NotFound(noopHandler)
	r := newTestRouter(t, mux, gw, Settings{HistoryLevel: HistoryDelete})
	r.store.SetPreviousMessageID(ctx, 42, 77)

	r.HandleUpdate(ctx, textUpdate(42, "just chatting"))

	dels := gw.callsFor("deleteMessage")
	if len(dels) != 1 || dels[0].MessageID != 77 {
		t.Fatalf("deleteMessage calls = %+v, want the stale card removed", dels)
	}
	if _, ok, _ := r.store.PreviousMessageID(ctx, 42); ok {
		t.Fatal("previous message id still set after dismissal")
	}
}
