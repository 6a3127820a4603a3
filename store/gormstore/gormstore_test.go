package gormstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/akbarishahpar/tgmvc/bot"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "chats.sqlite"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	return s
}

func TestPathRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if path, err := s.Path(ctx, 42); err != nil || path != "" {
		t.Fatalf("Path() = (%q, %v) for a fresh chat, want empty", path, err)
	}
	if err := s.SetPath(ctx, 42, "/tickets"); err != nil {
		t.Fatalf("SetPath() error = %v", err)
	}
	if path, _ := s.Path(ctx, 42); path != "/tickets" {
		t.Fatalf("Path() = %q, want %q", path, "/tickets")
	}
}

func TestPreviousMessageIDLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, ok, _ := s.PreviousMessageID(ctx, 42); ok {
		t.Fatal("PreviousMessageID() ok = true for a fresh chat")
	}
	if err := s.SetPreviousMessageID(ctx, 42, 77); err != nil {
		t.Fatalf("SetPreviousMessageID() error = %v", err)
	}
	id, ok, err := s.PreviousMessageID(ctx, 42)
	if err != nil || !ok || id != 77 {
		t.Fatalf("PreviousMessageID() = (%d, %v, %v), want (77, true, nil)", id, ok, err)
	}
	if err := s.ForgetPreviousMessageID(ctx, 42); err != nil {
		t.Fatalf("ForgetPreviousMessageID() error = %v", err)
	}
	if _, ok, _ := s.PreviousMessageID(ctx, 42); ok {
		t.Fatal("PreviousMessageID() ok = true after forget")
	}
}

func TestProfileUpsertKeepsPath(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.SetPath(ctx, 42, "/tickets"); err != nil {
		t.Fatalf("SetPath() error = %v", err)
	}
	if err := s.SetProfile(ctx, &bot.Chat{ID: 42, FirstName: "Ada", Username: "ada"}); err != nil {
		t.Fatalf("SetProfile() error = %v", err)
	}
	if path, _ := s.Path(ctx, 42); path != "/tickets" {
		t.Fatalf("Path() = %q after SetProfile, want unchanged", path)
	}

	rec, err := s.load(ctx, 42)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if rec.FirstName != "Ada" || rec.Username != "ada" {
		t.Fatalf("profile = %+v, want Ada/ada", rec)
	}
}
