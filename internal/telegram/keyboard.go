// Package telegram is the chat-transport collaborator: a thin Bot API
// client, keyboard markup builders, and the webhook payload shapes. The
// rest of the application treats media as opaque reference strings and
// never touches this wire format.
package telegram

// KeyboardButton is one button of a reply keyboard.
type KeyboardButton struct {
	Text string `json:"text"`
}

// ReplyKeyboard is a persistent reply keyboard, one button per row, matching
// the Bot API reply_markup shape.
type ReplyKeyboard struct {
	Keyboard        [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard  bool               `json:"resize_keyboard"`
	OneTimeKeyboard bool               `json:"one_time_keyboard"`
}

// NewReplyKeyboard builds a reply keyboard with one button per row.
func NewReplyKeyboard(buttons ...string) *ReplyKeyboard {
	rows := make([][]KeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []KeyboardButton{{Text: b}})
	}
	return &ReplyKeyboard{Keyboard: rows, ResizeKeyboard: true}
}

// InlineKeyboardButton is one button of an inline keyboard.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// InlineKeyboard is an inline keyboard attached to a single message.
type InlineKeyboard struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// NewInlineKeyboard builds an inline keyboard with one button per row.
func NewInlineKeyboard(buttons ...InlineKeyboardButton) *InlineKeyboard {
	rows := make([][]InlineKeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		rows = append(rows, []InlineKeyboardButton{b})
	}
	return &InlineKeyboard{InlineKeyboard: rows}
}
