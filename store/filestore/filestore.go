// Package filestore persists conversation state as one JSON snapshot file,
// so a single-instance bot survives restarts without a database.
package filestore

import (
	"context"
	"strconv"
	"sync"

	"github.com/akbarishahpar/tgmvc/bot"
	"github.com/akbarishahpar/tgmvc/internal/fsstore"
)

type chatState struct {
	Path          string `json:"path,omitempty"`
	PrevMessageID int64  `json:"prev_message_id,omitempty"`
	HasPrev       bool   `json:"has_prev,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	Username      string `json:"username,omitempty"`
}

// Store is a bot.ChatStore backed by a snapshot file. Every mutation
// rewrites the snapshot atomically; reads are served from memory.
type Store struct {
	mu    sync.Mutex
	path  string
	chats map[string]*chatState
}

var _ bot.ChatStore = (*Store)(nil)

// Open loads the snapshot at path, creating an empty store when the file
// does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path, chats: make(map[string]*chatState)}
	if _, err := fsstore.ReadJSON(path, &s.chats); err != nil {
		return nil, err
	}
	if s.chats == nil {
		s.chats = make(map[string]*chatState)
	}
	return s, nil
}

func key(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// get returns the state for chatID, creating the default on first access.
// Callers hold s.mu.
func (s *Store) get(chatID int64) *chatState {
	k := key(chatID)
	st, ok := s.chats[k]
	if !ok {
		st = &chatState{}
		s.chats[k] = st
	}
	return st
}

// flush rewrites the snapshot. Callers hold s.mu.
func (s *Store) flush() error {
	return fsstore.WriteJSONAtomic(s.path, s.chats)
}

func (s *Store) Path(ctx context.Context, chatID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(chatID).Path, nil
}

func (s *Store) SetPath(ctx context.Context, chatID int64, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(chatID).Path = path
	return s.flush()
}

func (s *Store) PreviousMessageID(ctx context.Context, chatID int64) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(chatID)
	return st.PrevMessageID, st.HasPrev, nil
}

func (s *Store) SetPreviousMessageID(ctx context.Context, chatID int64, messageID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(chatID)
	st.PrevMessageID = messageID
	st.HasPrev = true
	return s.flush()
}

func (s *Store) ForgetPreviousMessageID(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(chatID)
	st.PrevMessageID = 0
	st.HasPrev = false
	return s.flush()
}

func (s *Store) SetProfile(ctx context.Context, chat *bot.Chat) error {
	if chat == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.get(chat.ID)
	st.FirstName = chat.FirstName
	st.LastName = chat.LastName
	st.Username = chat.Username
	return s.flush()
}
