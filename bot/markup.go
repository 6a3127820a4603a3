package bot

// ReplyMarkup is an interactive keyboard attached to an outbound message:
// either inline buttons under the message or a reply keyboard replacing the
// user's input panel. The concrete types marshal straight into the
// platform's wire shape.
type ReplyMarkup interface {
	replyMarkup()
}

type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

func (InlineKeyboardMarkup) replyMarkup() {}

type KeyboardButton struct {
	Text string `json:"text"`
}

type ReplyKeyboardMarkup struct {
	Keyboard        [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard  bool               `json:"resize_keyboard,omitempty"`
	OneTimeKeyboard bool               `json:"one_time_keyboard,omitempty"`
	Selective       bool               `json:"selective,omitempty"`
}

func (ReplyKeyboardMarkup) replyMarkup() {}

// CallbackButton builds an inline button whose tap echoes data back as
// callback payload. Pair with TokenStore.Push for routes that don't fit the
// payload size limit.
func CallbackButton(text, data string) InlineKeyboardButton {
	return InlineKeyboardButton{Text: text, CallbackData: data}
}

// InlineRow groups buttons into one keyboard row.
func InlineRow(buttons ...InlineKeyboardButton) []InlineKeyboardButton {
	return buttons
}
