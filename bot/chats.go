package bot

import (
	"context"
	"sync"
	"time"
)

// ChatStore keeps each conversation's current screen across stateless
// webhook turns: the route path the chat is "on", the id of the last
// message the bot sent there, and the profile fields of the peer.
//
// Implementations must create a default record on first access for a chat
// id and must not lose concurrent mutations for the same chat;
// last-write-wins across chats is acceptable.
type ChatStore interface {
	Path(ctx context.Context, chatID int64) (string, error)
	SetPath(ctx context.Context, chatID int64, path string) error

	PreviousMessageID(ctx context.Context, chatID int64) (int64, bool, error)
	SetPreviousMessageID(ctx context.Context, chatID int64, messageID int64) error
	ForgetPreviousMessageID(ctx context.Context, chatID int64) error

	SetProfile(ctx context.Context, chat *Chat) error
}

type chatRecord struct {
	path          string
	prevMessageID int64
	hasPrev       bool
	firstName     string
	lastName      string
	userName      string
	touchedAt     time.Time
}

// MemoryChatStore is the in-process reference ChatStore. With maxIdle > 0,
// records idle longer than maxIdle are swept on write; with maxIdle == 0
// records are never evicted.
type MemoryChatStore struct {
	mu      sync.Mutex
	chats   map[int64]*chatRecord
	maxIdle time.Duration
	now     func() time.Time
}

func NewMemoryChatStore(maxIdle time.Duration) *MemoryChatStore {
	return &MemoryChatStore{
		chats:   make(map[int64]*chatRecord),
		maxIdle: maxIdle,
		now:     time.Now,
	}
}

func (s *MemoryChatStore) Path(ctx context.Context, chatID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(chatID).path, nil
}

func (s *MemoryChatStore) SetPath(ctx context.Context, chatID int64, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(chatID).path = path
	s.sweep()
	return nil
}

func (s *MemoryChatStore) PreviousMessageID(ctx context.Context, chatID int64) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.get(chatID)
	return rec.prevMessageID, rec.hasPrev, nil
}

func (s *MemoryChatStore) SetPreviousMessageID(ctx context.Context, chatID int64, messageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.get(chatID)
	rec.prevMessageID = messageID
	rec.hasPrev = true
	s.sweep()
	return nil
}

func (s *MemoryChatStore) ForgetPreviousMessageID(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.get(chatID)
	rec.prevMessageID = 0
	rec.hasPrev = false
	return nil
}

func (s *MemoryChatStore) SetProfile(ctx context.Context, chat *Chat) error {
	if chat == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.get(chat.ID)
	rec.firstName = chat.FirstName
	rec.lastName = chat.LastName
	rec.userName = chat.Username
	s.sweep()
	return nil
}

// get returns the record for chatID, creating the default on first access.
// Callers hold s.mu.
func (s *MemoryChatStore) get(chatID int64) *chatRecord {
	rec, ok := s.chats[chatID]
	if !ok {
		rec = &chatRecord{}
		s.chats[chatID] = rec
	}
	rec.touchedAt = s.now()
	return rec
}

func (s *MemoryChatStore) sweep() {
	if s.maxIdle <= 0 {
		return
	}
	now := s.now()
	for id, rec := range s.chats {
		if now.Sub(rec.touchedAt) > s.maxIdle {
			delete(s.chats, id)
		}
	}
}
