package bot

import (
	"context"
	"time"
)

// SentMessage is what the messaging gateway reports after a successful
// send: the id of the new message (needed for later trimming) and its text,
// which feeds the optional message log.
type SentMessage struct {
	MessageID int64
	Text      string
}

// Gateway is the wire-level chat-platform client the dispatcher drives.
// Every operation must honor ctx cancellation. Implementations live outside
// the engine; telegramapi.Client is the stock one.
type Gateway interface {
	SendMessage(ctx context.Context, chatID int64, html string, markup ReplyMarkup) (SentMessage, error)
	SendPhoto(ctx context.Context, chatID int64, fileRef, caption string, markup ReplyMarkup) (SentMessage, error)
	SendAudio(ctx context.Context, chatID int64, fileRef, caption string, markup ReplyMarkup) (SentMessage, error)
	SendVideo(ctx context.Context, chatID int64, fileRef, caption string, markup ReplyMarkup) (SentMessage, error)
	SendVoice(ctx context.Context, chatID int64, fileRef, caption string, markup ReplyMarkup) (SentMessage, error)
	SendDocument(ctx context.Context, chatID int64, fileRef, caption string, markup ReplyMarkup) (SentMessage, error)

	// EditMessageReplyMarkup strips the keyboard from an earlier message.
	EditMessageReplyMarkup(ctx context.Context, chatID int64, messageID int64) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int64) error

	// AnswerCallbackQuery shows a lightweight notice to the tapping user;
	// used for rate-limit notices only.
	AnswerCallbackQuery(ctx context.Context, callbackID, text string, cacheTime time.Duration) error
}
