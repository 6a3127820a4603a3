package bot

import (
	"context"
	"log/slog"
)

// Direction tags a logged message as inbound or outbound.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// MessageLog is an optional collaborator that receives the text of every
// routed inbound payload and every sent message, e.g. for transcripts.
type MessageLog interface {
	Write(ctx context.Context, chatID int64, text string, dir Direction) error
}

// SlogMessageLog writes the transcript to a structured logger.
type SlogMessageLog struct {
	Logger *slog.Logger
}

func (l *SlogMessageLog) Write(ctx context.Context, chatID int64, text string, dir Direction) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("chat_message", "chat_id", chatID, "direction", string(dir), "text", text)
	return nil
}
