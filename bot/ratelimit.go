package bot

import (
	"sync"
	"time"
)

// sessionIdleTimeout is how long a rate-limit session may sit idle before
// the next write sweeps it away.
const sessionIdleTimeout = 60 * time.Second

// RateLimiter throttles per-chat request frequency. Sessions are pruned on
// write rather than by a background task; a session may transiently outlive
// the idle window if no writes occur, which is harmless.
type RateLimiter struct {
	mu       sync.Mutex
	sessions map[int64]time.Time
	now      func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		sessions: make(map[int64]time.Time),
		now:      time.Now,
	}
}

// ShouldLimit reports whether the chat hit the bot again within cooldown of
// its last recorded access. A zero cooldown disables limiting; a chat with
// no recorded access is never limited.
func (l *RateLimiter) ShouldLimit(chatID int64, cooldown time.Duration) bool {
	if cooldown <= 0 {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	last, ok := l.sessions[chatID]
	if !ok {
		return false
	}
	return l.now().Sub(last) < cooldown
}

// UpdateLastAccessTime records now for the chat, then sweeps every session
// idle longer than sessionIdleTimeout. Called once per inbound update, in
// the cleanup phase that runs regardless of the outcome.
func (l *RateLimiter) UpdateLastAccessTime(chatID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sessions[chatID] = now

	for id, last := range l.sessions {
		if now.Sub(last) > sessionIdleTimeout {
			delete(l.sessions, id)
		}
	}
}
