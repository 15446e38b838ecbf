package telegram

// WebhookUpdate is the inbound webhook payload. Only the fields this
// service consumes are declared; everything else Telegram sends is ignored
// by the decoder.
type WebhookUpdate struct {
	UpdateID      int64            `json:"update_id"`
	Message       *IncomingMessage `json:"message"`
	CallbackQuery *CallbackQuery   `json:"callback_query"`
}

// IncomingMessage is a user-sent message (text or photo).
type IncomingMessage struct {
	Chat    Chat        `json:"chat"`
	From    User        `json:"from"`
	Text    string      `json:"text"`
	Photo   []PhotoSize `json:"photo"`
	Caption string      `json:"caption"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// User is the sender of a message or callback.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// PhotoSize is one rendition of an uploaded photo. Telegram orders the
// array from smallest to largest.
type PhotoSize struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// CallbackQuery is an inline-keyboard button press.
type CallbackQuery struct {
	ID      string           `json:"id"`
	From    User             `json:"from"`
	Data    string           `json:"data"`
	Message *IncomingMessage `json:"message"`
}

// BestPhoto returns the file id of the highest-resolution rendition, or ""
// when the message carries no photo.
func (m *IncomingMessage) BestPhoto() string {
	if m == nil || len(m.Photo) == 0 {
		return ""
	}
	best := m.Photo[0]
	for _, p := range m.Photo[1:] {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}
	return best.FileID
}
