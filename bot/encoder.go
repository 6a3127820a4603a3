package bot

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// tokenPrefix marks an opaque callback token as opposed to a literal
	// route path.
	tokenPrefix = "encode:"

	// FallbackRoute is returned when a token is unknown or already spent.
	FallbackRoute = "/start"

	defaultTokenTTL = 24 * time.Hour
)

// TokenStore maps opaque single-use tokens to literal route strings, so an
// arbitrary path+query fits inside a button's size-limited callback payload.
type TokenStore interface {
	// Push stores a route and returns the token encoding it.
	Push(route string) string
	// Pop resolves a token back to its route, consuming it. Input without
	// the token marker passes through unchanged; an unknown or spent token
	// resolves to FallbackRoute.
	Pop(code string) string
}

// Encoder is the in-process TokenStore. Tokens are popped at most once;
// unpopped tokens are swept after a TTL so abandoned buttons don't grow the
// map forever.
type Encoder struct {
	mu     sync.Mutex
	routes map[string]tokenEntry
	ttl    time.Duration
	now    func() time.Time
}

type tokenEntry struct {
	route    string
	storedAt time.Time
}

func NewEncoder() *Encoder {
	return &Encoder{
		routes: make(map[string]tokenEntry),
		ttl:    defaultTokenTTL,
		now:    time.Now,
	}
}

func (e *Encoder) Push(route string) string {
	code := tokenPrefix + uuid.NewString()

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	for k, entry := range e.routes {
		if now.Sub(entry.storedAt) > e.ttl {
			delete(e.routes, k)
		}
	}
	e.routes[code] = tokenEntry{route: route, storedAt: now}
	return code
}

func (e *Encoder) Pop(code string) string {
	if !isToken(code) {
		return code
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.routes[code]
	if !ok {
		return FallbackRoute
	}
	delete(e.routes, code)
	return entry.route
}

func isToken(s string) bool {
	return len(s) >= len(tokenPrefix) && s[:len(tokenPrefix)] == tokenPrefix
}
