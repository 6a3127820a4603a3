// Package gormstore persists conversation state in a SQL database through
// gorm. SQLite is the stock driver; any gorm dialector works.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/akbarishahpar/tgmvc/bot"
)

// ChatRecord is one chat's conversation state row.
type ChatRecord struct {
	ChatID        int64 `gorm:"primaryKey"`
	Path          string
	PrevMessageID int64
	HasPrev       bool
	FirstName     string
	LastName      string
	Username      string
	UpdatedAt     time.Time
}

func (ChatRecord) TableName() string { return "chat_records" }

// Store is a bot.ChatStore on a gorm connection.
type Store struct {
	db *gorm.DB
}

var _ bot.ChatStore = (*Store)(nil)

// OpenSQLite opens (or creates) the SQLite database at dsn and migrates
// the schema. The busy timeout keeps concurrent webhook turns from
// surfacing SQLITE_BUSY.
func OpenSQLite(dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("gormstore: empty dsn")
	}
	if !strings.Contains(dsn, "_busy_timeout") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_busy_timeout=5000"
	}
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("gormstore open: %w", err)
	}
	return New(gdb)
}

// New wraps an existing gorm connection and migrates the schema.
func New(gdb *gorm.DB) (*Store, error) {
	if gdb == nil {
		return nil, fmt.Errorf("gormstore: nil gorm db")
	}
	if err := gdb.AutoMigrate(&ChatRecord{}); err != nil {
		return nil, fmt.Errorf("gormstore migrate: %w", err)
	}
	return &Store{db: gdb}, nil
}

func (s *Store) load(ctx context.Context, chatID int64) (ChatRecord, error) {
	var rec ChatRecord
	err := s.db.WithContext(ctx).First(&rec, "chat_id = ?", chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ChatRecord{ChatID: chatID}, nil
	}
	if err != nil {
		return ChatRecord{}, err
	}
	return rec, nil
}

// upsert writes the given columns for chatID, inserting the row on first
// contact.
func (s *Store) upsert(ctx context.Context, rec ChatRecord, columns ...string) error {
	columns = append(columns, "updated_at")
	rec.UpdatedAt = time.Now()
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&rec).Error
}

func (s *Store) Path(ctx context.Context, chatID int64) (string, error) {
	rec, err := s.load(ctx, chatID)
	if err != nil {
		return "", err
	}
	return rec.Path, nil
}

func (s *Store) SetPath(ctx context.Context, chatID int64, path string) error {
	rec, err := s.load(ctx, chatID)
	if err != nil {
		return err
	}
	rec.Path = path
	return s.upsert(ctx, rec, "path")
}

func (s *Store) PreviousMessageID(ctx context.Context, chatID int64) (int64, bool, error) {
	rec, err := s.load(ctx, chatID)
	if err != nil {
		return 0, false, err
	}
	return rec.PrevMessageID, rec.HasPrev, nil
}

func (s *Store) SetPreviousMessageID(ctx context.Context, chatID int64, messageID int64) error {
	rec, err := s.load(ctx, chatID)
	if err != nil {
		return err
	}
	rec.PrevMessageID = messageID
	rec.HasPrev = true
	return s.upsert(ctx, rec, "prev_message_id", "has_prev")
}

func (s *Store) ForgetPreviousMessageID(ctx context.Context, chatID int64) error {
	rec, err := s.load(ctx, chatID)
	if err != nil {
		return err
	}
	rec.PrevMessageID = 0
	rec.HasPrev = false
	return s.upsert(ctx, rec, "prev_message_id", "has_prev")
}

func (s *Store) SetProfile(ctx context.Context, chat *bot.Chat) error {
	if chat == nil {
		return nil
	}
	rec, err := s.load(ctx, chat.ID)
	if err != nil {
		return err
	}
	rec.FirstName = chat.FirstName
	rec.LastName = chat.LastName
	rec.Username = chat.Username
	return s.upsert(ctx, rec, "first_name", "last_name", "username")
}
