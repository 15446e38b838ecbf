package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/devyouns/go-memorial-backend/internal/bot"
	"github.com/devyouns/go-memorial-backend/internal/domain"
	"github.com/devyouns/go-memorial-backend/internal/http/middleware"
	"github.com/devyouns/go-memorial-backend/internal/repo"
	"github.com/devyouns/go-memorial-backend/internal/telegram"
)

// UpdateDispatcher routes a decoded update; the bot orchestrator implements it.
type UpdateDispatcher interface {
	HandleUpdate(ctx context.Context, u bot.Update) error
}

// DedupeFunc records an update id for replay protection. It returns
// repo.ErrDuplicate when the id was already processed inside the retention
// window.
type DedupeFunc func(ctx context.Context, updateID int64) error

// WebhookHandler receives Telegram webhook calls. The path carries a secret
// segment; everything with the right secret is answered 200 so the platform
// never retries an update we have already looked at.
type WebhookHandler struct {
	Secret     string
	Dispatcher UpdateDispatcher
	Dedupe     DedupeFunc
}

// Handle processes POST /webhook/:secret.
//
// Flow: verify the path secret, decode the payload, drop replayed update
// ids, then hand the update to the dispatcher. Apart from a wrong secret,
// the response is always 200: returning an error status would make the
// platform redeliver an update whose side effects may already have run.
func (h *WebhookHandler) Handle(c *gin.Context) {
	lg := middleware.LoggerFrom(c)

	secret := c.Param("secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.Secret)) != 1 {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid webhook secret")
		return
	}

	var wu telegram.WebhookUpdate
	if err := c.ShouldBindJSON(&wu); err != nil {
		lg.Warn().Err(err).Msg("undecodable webhook payload")
		ok(c, http.StatusOK, gin.H{"ok": true})
		return
	}

	u, usable := mapUpdate(wu)
	if !usable {
		ok(c, http.StatusOK, gin.H{"ok": true})
		return
	}

	if h.Dedupe != nil {
		switch err := h.Dedupe(c.Request.Context(), wu.UpdateID); {
		case errors.Is(err, repo.ErrDuplicate):
			lg.Debug().Int64("update_id", wu.UpdateID).Msg("duplicate update dropped")
			ok(c, http.StatusOK, gin.H{"ok": true})
			return
		case err != nil:
			// Dedupe is best effort: a broken store must not stop updates.
			lg.Warn().Err(err).Int64("update_id", wu.UpdateID).Msg("dedupe check failed")
		}
	}

	if err := h.Dispatcher.HandleUpdate(c.Request.Context(), u); err != nil {
		lg.Error().Err(err).Int64("update_id", wu.UpdateID).Msg("update handling failed")
	}
	ok(c, http.StatusOK, gin.H{"ok": true})
}

// mapUpdate converts the wire payload into the transport-neutral update.
// The second return is false when the payload carries nothing we handle
// (edits, channel posts, joins, and so on).
func mapUpdate(wu telegram.WebhookUpdate) (bot.Update, bool) {
	u := bot.Update{UpdateID: wu.UpdateID}

	switch {
	case wu.CallbackQuery != nil:
		cb := wu.CallbackQuery
		u.SenderID = strconv.FormatInt(cb.From.ID, 10)
		u.Sender = submitterInfo(cb.From)
		u.Callback = &bot.Callback{ID: cb.ID, Data: cb.Data}
		if cb.Message != nil {
			u.ChatID = cb.Message.Chat.ID
		} else {
			// Private-chat fallback: the chat id equals the account id.
			u.ChatID = cb.From.ID
		}
		return u, true

	case wu.Message != nil:
		msg := wu.Message
		u.ChatID = msg.Chat.ID
		u.SenderID = strconv.FormatInt(msg.From.ID, 10)
		u.Sender = submitterInfo(msg.From)
		u.Text = msg.Text
		u.PhotoRef = msg.BestPhoto()
		u.Caption = msg.Caption
		if u.Text == "" && u.PhotoRef == "" {
			return bot.Update{}, false
		}
		return u, true

	default:
		return bot.Update{}, false
	}
}

func submitterInfo(from telegram.User) domain.SubmitterInfo {
	return domain.SubmitterInfo{
		TelegramID: strconv.FormatInt(from.ID, 10),
		FirstName:  from.FirstName,
		LastName:   from.LastName,
		Username:   from.Username,
	}
}
