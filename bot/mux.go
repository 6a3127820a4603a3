package bot

import (
	"context"
	"net/url"
	"strings"
	"sync"
)

// Request is the context a handler receives: the raw update, the resolved
// route, its parsed query, and the collaborators handlers commonly need
// (the token store for building buttons, the chat store for extra state).
type Request struct {
	Update *Update
	ChatID int64

	// Route is the resolved path without its query string; Query holds the
	// parsed query values.
	Route string
	Query url.Values

	// Text is the message text of text-kind updates (caption fallback),
	// empty for callbacks. This is the free-form input a screen collects.
	Text string

	Tokens TokenStore
	Store  ChatStore
}

// HandlerFunc processes one resolved route and returns the results to
// dispatch. Returning an error routes through the engine's fault path.
type HandlerFunc func(ctx context.Context, req *Request) (*View, error)

// Mux maps route paths to handlers. Lookup is case-insensitive on the
// cleaned path; the not-found handler (when set) catches everything else,
// including the empty path of a brand-new chat.
type Mux struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	notFound HandlerFunc
}

func NewMux() *Mux {
	return &Mux{handlers: make(map[string]HandlerFunc)}
}

func (m *Mux) Handle(path string, h HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[normalizePath(path)] = h
}

func (m *Mux) NotFound(h HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notFound = h
}

// Lookup returns the handler bound to path, falling back to the not-found
// handler. Returns nil when neither exists.
func (m *Mux) Lookup(path string) HandlerFunc {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if h, ok := m.handlers[normalizePath(path)]; ok {
		return h
	}
	return m.notFound
}

func normalizePath(path string) string {
	path = strings.ToLower(strings.TrimSpace(path))
	return strings.TrimSuffix(path, "/")
}

// splitRoute separates a route string into its path and parsed query.
// A malformed query is treated as empty rather than failing the request.
func splitRoute(route string) (string, url.Values) {
	path, rawQuery, _ := strings.Cut(route, "?")
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		values = url.Values{}
	}
	return path, values
}
