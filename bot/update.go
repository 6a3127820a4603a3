package bot

import "strings"

// Kind classifies an inbound update. Only text messages, edited text
// messages and callback queries are routable; everything else is rejected
// before any handler runs.
type Kind int

const (
	KindUnsupported Kind = iota
	KindText
	KindEditedText
	KindCallback
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindEditedText:
		return "edited_text"
	case KindCallback:
		return "callback"
	default:
		return "unsupported"
	}
}

// Chat identifies the conversation an update belongs to, along with the
// profile fields the state store records.
type Chat struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Message is the subset of the platform's message object the engine reads.
type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      *Chat  `json:"chat,omitempty"`
	Text      string `json:"text,omitempty"`
	Caption   string `json:"caption,omitempty"`

	// Attachment references (subset). The engine does not interpret these;
	// they are available to handlers through the request.
	Photo    []PhotoSize   `json:"photo,omitempty"`
	Document *DocumentRef  `json:"document,omitempty"`
	Audio    *FileRef      `json:"audio,omitempty"`
	Video    *FileRef      `json:"video,omitempty"`
	Voice    *FileRef      `json:"voice,omitempty"`
}

type PhotoSize struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type DocumentRef struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

type FileRef struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration,omitempty"`
}

// CallbackQuery is a button tap. Data carries the callback payload the
// button was constructed with; Message is the bot message the button was
// attached to, which is where the originating chat lives.
type CallbackQuery struct {
	ID      string   `json:"id"`
	Data    string   `json:"data,omitempty"`
	Message *Message `json:"message,omitempty"`
}

// Update is one inbound webhook delivery.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	EditedMessage *Message       `json:"edited_message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

func (u *Update) Kind() Kind {
	switch {
	case u.CallbackQuery != nil:
		return KindCallback
	case u.EditedMessage != nil:
		return KindEditedText
	case u.Message != nil:
		return KindText
	default:
		return KindUnsupported
	}
}

// Chat returns the conversation the update belongs to, or nil for
// unsupported updates and malformed callbacks.
func (u *Update) Chat() *Chat {
	switch u.Kind() {
	case KindText:
		return u.Message.Chat
	case KindEditedText:
		return u.EditedMessage.Chat
	case KindCallback:
		if u.CallbackQuery.Message == nil {
			return nil
		}
		return u.CallbackQuery.Message.Chat
	default:
		return nil
	}
}

func (u *Update) ChatID() int64 {
	if c := u.Chat(); c != nil {
		return c.ID
	}
	return 0
}

// Payload extracts the routable text of the update: the message text with a
// caption fallback, or the callback data for button taps. An update with
// neither yields the empty string.
func (u *Update) Payload() string {
	switch u.Kind() {
	case KindText:
		return textOrCaption(u.Message)
	case KindEditedText:
		return textOrCaption(u.EditedMessage)
	case KindCallback:
		return u.CallbackQuery.Data
	default:
		return ""
	}
}

func textOrCaption(m *Message) string {
	if m == nil {
		return ""
	}
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

// isRouteShaped reports whether a payload addresses a route directly: a
// literal path or an opaque token. Anything else is free-form text that
// falls back to the chat's current screen.
func isRouteShaped(payload string) bool {
	lower := strings.ToLower(payload)
	return strings.HasPrefix(lower, "/") || strings.HasPrefix(lower, tokenPrefix)
}
