package telegramapi

import (
	"context"
	"time"

	"github.com/akbarishahpar/tgmvc/bot"
)

// Client implements bot.Gateway. Text and captions are sent with HTML parse
// mode, which tolerates unescaped plain text far better than MarkdownV2.
var _ bot.Gateway = (*Client)(nil)

type sendMessageRequest struct {
	ChatID                int64           `json:"chat_id"`
	Text                  string          `json:"text"`
	ParseMode             string          `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool            `json:"disable_web_page_preview,omitempty"`
	ReplyMarkup           bot.ReplyMarkup `json:"reply_markup,omitempty"`
}

type sendMediaRequest struct {
	ChatID      int64           `json:"chat_id"`
	Photo       string          `json:"photo,omitempty"`
	Audio       string          `json:"audio,omitempty"`
	Video       string          `json:"video,omitempty"`
	Voice       string          `json:"voice,omitempty"`
	Document    string          `json:"document,omitempty"`
	Caption     string          `json:"caption,omitempty"`
	ParseMode   string          `json:"parse_mode,omitempty"`
	ReplyMarkup bot.ReplyMarkup `json:"reply_markup,omitempty"`
}

// sentMessage is the slice of the API's message object the engine records.
type sentMessage struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text,omitempty"`
	Caption   string `json:"caption,omitempty"`
}

func (m sentMessage) toBot() bot.SentMessage {
	text := m.Text
	if text == "" {
		text = m.Caption
	}
	return bot.SentMessage{MessageID: m.MessageID, Text: text}
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, html string, markup bot.ReplyMarkup) (bot.SentMessage, error) {
	var sent sentMessage
	err := c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:                chatID,
		Text:                  html,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
		ReplyMarkup:           markup,
	}, &sent)
	if err != nil {
		return bot.SentMessage{}, err
	}
	return sent.toBot(), nil
}

func (c *Client) sendMedia(ctx context.Context, method string, req sendMediaRequest) (bot.SentMessage, error) {
	if req.Caption != "" {
		req.ParseMode = "HTML"
	}
	var sent sentMessage
	if err := c.call(ctx, method, req, &sent); err != nil {
		return bot.SentMessage{}, err
	}
	return sent.toBot(), nil
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, fileRef, caption string, markup bot.ReplyMarkup) (bot.SentMessage, error) {
	return c.sendMedia(ctx, "sendPhoto", sendMediaRequest{ChatID: chatID, Photo: fileRef, Caption: caption, ReplyMarkup: markup})
}

func (c *Client) SendAudio(ctx context.Context, chatID int64, fileRef, caption string, markup bot.ReplyMarkup) (bot.SentMessage, error) {
	return c.sendMedia(ctx, "sendAudio", sendMediaRequest{ChatID: chatID, Audio: fileRef, Caption: caption, ReplyMarkup: markup})
}

func (c *Client) SendVideo(ctx context.Context, chatID int64, fileRef, caption string, markup bot.ReplyMarkup) (bot.SentMessage, error) {
	return c.sendMedia(ctx, "sendVideo", sendMediaRequest{ChatID: chatID, Video: fileRef, Caption: caption, ReplyMarkup: markup})
}

func (c *Client) SendVoice(ctx context.Context, chatID int64, fileRef, caption string, markup bot.ReplyMarkup) (bot.SentMessage, error) {
	return c.sendMedia(ctx, "sendVoice", sendMediaRequest{ChatID: chatID, Voice: fileRef, Caption: caption, ReplyMarkup: markup})
}

func (c *Client) SendDocument(ctx context.Context, chatID int64, fileRef, caption string, markup bot.ReplyMarkup) (bot.SentMessage, error) {
	return c.sendMedia(ctx, "sendDocument", sendMediaRequest{ChatID: chatID, Document: fileRef, Caption: caption, ReplyMarkup: markup})
}

type editMessageReplyMarkupRequest struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int64 `json:"message_id"`
	// reply_markup omitted: the API clears the keyboard.
}

func (c *Client) EditMessageReplyMarkup(ctx context.Context, chatID int64, messageID int64) error {
	return c.call(ctx, "editMessageReplyMarkup", editMessageReplyMarkupRequest{
		ChatID:    chatID,
		MessageID: messageID,
	}, nil)
}

type deleteMessageRequest struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int64 `json:"message_id"`
}

func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int64) error {
	return c.call(ctx, "deleteMessage", deleteMessageRequest{ChatID: chatID, MessageID: messageID}, nil)
}

type answerCallbackQueryRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
	CacheTime       int    `json:"cache_time,omitempty"`
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID, text string, cacheTime time.Duration) error {
	return c.call(ctx, "answerCallbackQuery", answerCallbackQueryRequest{
		CallbackQueryID: callbackID,
		Text:            text,
		CacheTime:       int(cacheTime.Seconds()),
	}, nil)
}
