package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultBaseURL is the production Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// Message is one outbound message. When PhotoRef is set the message is sent
// as a photo (Caption as its caption); otherwise Text is sent. ReplyMarkup,
// when non-nil, must be a *ReplyKeyboard or *InlineKeyboard.
type Message struct {
	ChatID      int64
	Text        string
	PhotoRef    string
	Caption     string
	ReplyMarkup any
}

// Client is a minimal Telegram Bot API client covering exactly the calls
// this service makes: sendMessage, sendPhoto, and answerCallbackQuery.
type Client struct {
	token   string
	baseURL string
	httpc   *http.Client
}

// NewClient constructs a client for the given bot token.
func NewClient(token string) *Client {
	return NewClientWithBaseURL(token, DefaultBaseURL)
}

// NewClientWithBaseURL constructs a client against a custom endpoint
// (tests point this at an httptest server).
func NewClientWithBaseURL(token, baseURL string) *Client {
	return &Client{
		token:   token,
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

// apiResponse is the Bot API envelope; only the fields we check.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send delivers msg, choosing sendMessage or sendPhoto based on PhotoRef.
func (c *Client) Send(ctx context.Context, msg Message) error {
	payload := map[string]any{
		"chat_id":    msg.ChatID,
		"parse_mode": "HTML",
	}
	method := "sendMessage"
	if msg.PhotoRef != "" {
		method = "sendPhoto"
		payload["photo"] = msg.PhotoRef
		if msg.Caption != "" {
			payload["caption"] = msg.Caption
		}
	} else {
		payload["text"] = msg.Text
	}
	if msg.ReplyMarkup != nil {
		payload["reply_markup"] = msg.ReplyMarkup
	}
	return c.call(ctx, method, payload)
}

// AnswerCallback acknowledges an inline-keyboard interaction so the client
// stops showing its loading state. With showAlert the text pops up as a
// modal instead of a toast.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error {
	payload := map[string]any{
		"callback_query_id": callbackID,
	}
	if text != "" {
		payload["text"] = text
		payload["show_alert"] = showAlert
	}
	return c.call(ctx, "answerCallbackQuery", payload)
}

// call POSTs a JSON payload to a Bot API method and decodes the envelope.
func (c *Client) call(ctx context.Context, method string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !out.OK {
		return fmt.Errorf("%s failed: %s", method, out.Description)
	}
	return nil
}
