package bot

import (
	"context"
	"sync"
	"time"
)

// fakeGateway records every gateway call and hands out increasing message
// ids. Errors can be injected per operation family.
type gatewayCall struct {
	Op         string
	ChatID     int64
	Text       string
	FileRef    string
	MessageID  int64
	Markup     ReplyMarkup
	CallbackID string
}

type fakeGateway struct {
	mu      sync.Mutex
	calls   []gatewayCall
	nextID  int64
	sendErr error
	trimErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{nextID: 100}
}

func (g *fakeGateway) record(c gatewayCall) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, c)
}

func (g *fakeGateway) callsFor(op string) []gatewayCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []gatewayCall
	for _, c := range g.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (g *fakeGateway) send(op string, chatID int64, text, fileRef string, markup ReplyMarkup) (SentMessage, error) {
	if g.sendErr != nil {
		return SentMessage{}, g.sendErr
	}
	g.mu.Lock()
	g.nextID++
	id := g.nextID
	g.mu.Unlock()
	g.record(gatewayCall{Op: op, ChatID: chatID, Text: text, FileRef: fileRef, MessageID: id, Markup: markup})
	return SentMessage{MessageID: id, Text: text}, nil
}

func (g *fakeGateway) SendMessage(ctx context.Context, chatID int64, html string, markup ReplyMarkup) (SentMessage, error) {
	return g.send("sendMessage", chatID, html, "", markup)
}

func (g *fakeGateway) SendPhoto(ctx context.Context, chatID int64, fileRef, caption string, markup ReplyMarkup) (SentMessage, error) {
	return g.send("sendPhoto", chatID, caption, fileRef, markup)
}

func (g *fakeGateway) SendAudio(ctx context.Context, chatID int64, fileRef, caption string, markup ReplyMarkup) (SentMessage, error) {
	return g.send("sendAudio", chatID, caption, fileRef, markup)
}

func (g *fakeGateway) SendVideo(ctx context.Context, chatID int64, fileRef, caption string, markup ReplyMarkup) (SentMessage, error) {
	return g.send("sendVideo", chatID, caption, fileRef, markup)
}

func (g *fakeGateway) SendVoice(ctx context.Context, chatID int64, fileRef, caption string, markup ReplyMarkup) (SentMessage, error) {
	return g.send("sendVoice", chatID, caption, fileRef, markup)
}

func (g *fakeGateway) SendDocument(ctx context.Context, chatID int64, fileRef, caption string, markup ReplyMarkup) (SentMessage, error) {
	return g.send("sendDocument", chatID, caption, fileRef, markup)
}

func (g *fakeGateway) EditMessageReplyMarkup(ctx context.Context, chatID int64, messageID int64) error {
	if g.trimErr != nil {
		return g.trimErr
	}
	g.record(gatewayCall{Op: "editMessageReplyMarkup", ChatID: chatID, MessageID: messageID})
	return nil
}

func (g *fakeGateway) DeleteMessage(ctx context.Context, chatID int64, messageID int64) error {
	if g.trimErr != nil {
		return g.trimErr
	}
	g.record(gatewayCall{Op: "deleteMessage", ChatID: chatID, MessageID: messageID})
	return nil
}

func (g *fakeGateway) AnswerCallbackQuery(ctx context.Context, callbackID, text string, cacheTime time.Duration) error {
	g.record(gatewayCall{Op: "answerCallbackQuery", CallbackID: callbackID, Text: text})
	return nil
}

func textUpdate(chatID int64, text string) *Update {
	return &Update{
		UpdateID: 1,
		Message: &Message{
			MessageID: 10,
			Chat:      &Chat{ID: chatID, FirstName: "Ada", Username: "ada"},
			Text:      text,
		},
	}
}

func callbackUpdate(chatID int64, data string) *Update {
	return &Update{
		UpdateID: 2,
		CallbackQuery: &CallbackQuery{
			ID:   "cbq-1",
			Data: data,
			Message: &Message{
				MessageID: 11,
				Chat:      &Chat{ID: chatID, FirstName: "Ada", Username: "ada"},
				Text:      "previous screen",
			},
		},
	}
}
