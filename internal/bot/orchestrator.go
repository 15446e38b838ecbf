package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"github.com/devyouns/go-memorial-backend/internal/domain"
	"github.com/devyouns/go-memorial-backend/internal/intake"
	"github.com/devyouns/go-memorial-backend/internal/moderation"
	"github.com/devyouns/go-memorial-backend/internal/telegram"
)

// Intake is the subset of the intake service the orchestrator drives.
type Intake interface {
	Start(ctx context.Context, userID string, submitter domain.SubmitterInfo) (intake.Result, error)
	Cancel(ctx context.Context, userID string) (intake.Result, error)
	HandleText(ctx context.Context, userID, text string) (intake.Result, error)
	HandlePhoto(ctx context.Context, userID, photoRef, caption string) (intake.Result, error)
}

// Moderation is the subset of the moderation service the orchestrator drives.
type Moderation interface {
	ListPending(ctx context.Context) ([]domain.PendingRequest, error)
	Approve(ctx context.Context, requestID, submitterID string) (string, error)
	Reject(ctx context.Context, requestID, submitterID string) (string, error)
	Submissions(ctx context.Context, submitterID string, page, pageSize int) ([]domain.SubmitterRequest, int64, error)
}

// submissionsPageSize caps how many history entries one reply carries; a
// longer history gets a "showing N of M" footer instead of an oversized
// message.
const submissionsPageSize = 10

// Sender delivers outbound messages and callback answers.
type Sender interface {
	Send(ctx context.Context, msg telegram.Message) error
	AnswerCallback(ctx context.Context, callbackID, text string, showAlert bool) error
}

// userEntry pairs a per-user mutex with its last acquisition time so idle
// entries can be evicted.
type userEntry struct {
	mu       sync.Mutex
	lastSeen time.Time
}

const (
	// lockTTL is how long a user's lock survives without being fetched.
	lockTTL = 10 * time.Minute
	// lockSweepN is the lookup count between opportunistic eviction sweeps.
	lockSweepN = 512
)

// Orchestrator dispatches one inbound update to the right service call and
// sends the resulting replies. Updates from the same user are serialized so
// an intake session is never mutated concurrently.
type Orchestrator struct {
	Intake      Intake
	Moderation  Moderation
	Transport   Sender
	ModeratorID string

	mu     sync.Mutex
	locks  map[string]*userEntry
	sweepN int
}

// New constructs an orchestrator wired to the given services.
func New(in Intake, mod Moderation, tr Sender, moderatorID string) *Orchestrator {
	return &Orchestrator{
		Intake:      in,
		Moderation:  mod,
		Transport:   tr,
		ModeratorID: moderatorID,
		locks:       map[string]*userEntry{},
	}
}

// userLock returns the per-user mutex, creating it on first use. Every
// lockSweepN lookups it sweeps out entries idle for lockTTL, before touching
// the requested entry so a stale lock is dropped even when it is the one
// being fetched. TryLock keeps a mutex a handler still holds off the sweep.
func (o *Orchestrator) userLock(userID string) *sync.Mutex {
	now := time.Now()

	o.mu.Lock()
	defer o.mu.Unlock()

	o.sweepN++
	if o.sweepN >= lockSweepN {
		for k, e := range o.locks {
			if now.Sub(e.lastSeen) >= lockTTL && e.mu.TryLock() {
				e.mu.Unlock()
				delete(o.locks, k)
			}
		}
		o.sweepN = 0
	}

	e, ok := o.locks[userID]
	if !ok {
		e = &userEntry{}
		o.locks[userID] = e
	}
	e.lastSeen = now
	return &e.mu
}

func (o *Orchestrator) isModerator(userID string) bool {
	return o.ModeratorID != "" && userID == o.ModeratorID
}

// HandleUpdate routes one inbound update. It never returns transport decode
// problems back to the webhook; a non-nil error means an outbound send failed
// or a service call failed in a way worth surfacing to logs.
func (o *Orchestrator) HandleUpdate(ctx context.Context, u Update) error {
	tr := otel.Tracer("bot")
	ctx, span := tr.Start(ctx, "bot.HandleUpdate")
	defer span.End()

	switch {
	case u.Callback != nil:
		return o.handleCallback(ctx, u)
	case u.PhotoRef != "":
		return o.handlePhoto(ctx, u)
	case strings.TrimSpace(u.Text) != "":
		return o.handleText(ctx, u)
	default:
		return o.send(ctx, u.ChatID, msgUnsupported, nil)
	}
}

func (o *Orchestrator) handleText(ctx context.Context, u Update) error {
	text := strings.TrimSpace(u.Text)

	if o.isModerator(u.SenderID) {
		switch {
		case text == "/review":
			return o.review(ctx, u.ChatID)
		case strings.HasPrefix(text, "/approve"), strings.HasPrefix(text, "/reject"):
			return o.reviewCommand(ctx, u.ChatID, text)
		}
	}

	switch text {
	case "/start":
		// A fresh /start always discards any in-progress intake.
		lock := o.userLock(u.SenderID)
		lock.Lock()
		if _, err := o.Intake.Cancel(ctx, u.SenderID); err != nil {
			log.Warn().Err(err).Str("user_id", u.SenderID).Msg("session reset on /start failed")
		}
		lock.Unlock()
		return o.send(ctx, u.ChatID, msgWelcome, mainKeyboard())
	case "/help", btnHelp:
		return o.send(ctx, u.ChatID, msgHelp, mainKeyboard())
	case "/my_requests", btnMyRequests:
		return o.listSubmissions(ctx, u)
	case "/upload", btnAddRecord:
		lock := o.userLock(u.SenderID)
		lock.Lock()
		res, err := o.Intake.Start(ctx, u.SenderID, u.Sender)
		lock.Unlock()
		if err != nil {
			log.Error().Err(err).Str("user_id", u.SenderID).Msg("intake start failed")
		}
		return o.sendReply(ctx, u.ChatID, res.Reply)
	case "/cancel", btnCancel:
		lock := o.userLock(u.SenderID)
		lock.Lock()
		res, err := o.Intake.Cancel(ctx, u.SenderID)
		lock.Unlock()
		if err != nil {
			log.Error().Err(err).Str("user_id", u.SenderID).Msg("intake cancel failed")
		}
		return o.sendReply(ctx, u.ChatID, res.Reply)
	}

	lock := o.userLock(u.SenderID)
	lock.Lock()
	res, err := o.Intake.HandleText(ctx, u.SenderID, text)
	lock.Unlock()
	if err != nil {
		log.Error().Err(err).Str("user_id", u.SenderID).Msg("intake text failed")
	}
	return o.sendReply(ctx, u.ChatID, res.Reply)
}

func (o *Orchestrator) handlePhoto(ctx context.Context, u Update) error {
	lock := o.userLock(u.SenderID)
	lock.Lock()
	res, err := o.Intake.HandlePhoto(ctx, u.SenderID, u.PhotoRef, u.Caption)
	lock.Unlock()
	if err != nil {
		log.Error().Err(err).Str("user_id", u.SenderID).Msg("intake photo failed")
	}

	if sendErr := o.sendReply(ctx, u.ChatID, res.Reply); sendErr != nil {
		return sendErr
	}
	if res.Submitted == nil {
		return err
	}

	// Submission accepted: alert the moderator out of band. A failed alert is
	// logged but never undoes the submission; /review still lists it.
	if modChat, perr := strconv.ParseInt(o.ModeratorID, 10, 64); perr == nil {
		if aerr := o.Transport.Send(ctx, telegram.Message{
			ChatID: modChat,
			Text:   moderatorAlert(*res.Submitted),
		}); aerr != nil {
			log.Warn().Err(aerr).Str("request_id", res.Submitted.RequestID).Msg("moderator alert failed")
		}
	}
	return nil
}

// review sends every pending request to the moderator, each with its own
// approve/reject inline keyboard.
func (o *Orchestrator) review(ctx context.Context, chatID int64) error {
	reqs, err := o.Moderation.ListPending(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list pending failed")
		return o.send(ctx, chatID, "Could not load pending requests. Please try again.", nil)
	}
	if len(reqs) == 0 {
		return o.send(ctx, chatID, msgNoPending, nil)
	}
	for _, r := range reqs {
		msg := telegram.Message{ChatID: chatID, ReplyMarkup: reviewKeyboard(r)}
		if r.Record.PhotoRef != "" {
			msg.PhotoRef = r.Record.PhotoRef
			msg.Caption = reviewSummary(r)
		} else {
			msg.Text = reviewSummary(r)
		}
		if err := o.Transport.Send(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// reviewCommand handles the textual /approve and /reject forms:
// "/approve <request_id> <submitter_id>".
func (o *Orchestrator) reviewCommand(ctx context.Context, chatID int64, text string) error {
	parts := strings.Fields(text)
	if len(parts) != 3 {
		return o.send(ctx, chatID, msgReviewUsage, nil)
	}
	verb := VerbApprove
	if parts[0] == "/reject" {
		verb = VerbReject
	}
	return o.executeReview(ctx, chatID, ReviewAction{Verb: verb, RequestID: parts[1], SubmitterID: parts[2]})
}

// executeReview runs one approve/reject decision and notifies both sides.
func (o *Orchestrator) executeReview(ctx context.Context, moderatorChat int64, action ReviewAction) error {
	var (
		fullName string
		err      error
	)
	if action.Verb == VerbApprove {
		fullName, err = o.Moderation.Approve(ctx, action.RequestID, action.SubmitterID)
	} else {
		fullName, err = o.Moderation.Reject(ctx, action.RequestID, action.SubmitterID)
	}
	if errors.Is(err, moderation.ErrRequestNotFound) {
		return o.send(ctx, moderatorChat, msgRequestGone, nil)
	}
	if err != nil {
		log.Error().Err(err).Str("request_id", action.RequestID).Str("verb", string(action.Verb)).Msg("review failed")
		return o.send(ctx, moderatorChat, "Review failed. Please try again.", nil)
	}

	if subChat, perr := strconv.ParseInt(action.SubmitterID, 10, 64); perr == nil {
		notice := approvedNotice(fullName)
		if action.Verb == VerbReject {
			notice = rejectedNotice(fullName)
		}
		if nerr := o.Transport.Send(ctx, telegram.Message{ChatID: subChat, Text: notice}); nerr != nil {
			log.Warn().Err(nerr).Str("submitter_id", action.SubmitterID).Msg("submitter notice failed")
		}
	}

	confirm := "Approved and published: <b>" + fullName + "</b>"
	if action.Verb == VerbReject {
		confirm = "Rejected: <b>" + fullName + "</b>"
	}
	return o.send(ctx, moderatorChat, confirm, nil)
}

func (o *Orchestrator) handleCallback(ctx context.Context, u Update) error {
	cb := u.Callback
	if !o.isModerator(u.SenderID) {
		return o.Transport.AnswerCallback(ctx, cb.ID, msgNotAllowed, true)
	}
	action, err := ParseReviewAction(cb.Data)
	if err != nil {
		log.Warn().Err(err).Str("data", cb.Data).Msg("bad callback data")
		return o.Transport.AnswerCallback(ctx, cb.ID, "Invalid action", true)
	}
	if err := o.Transport.AnswerCallback(ctx, cb.ID, "", false); err != nil {
		log.Warn().Err(err).Str("callback_id", cb.ID).Msg("answer callback failed")
	}
	return o.executeReview(ctx, u.ChatID, action)
}

func (o *Orchestrator) listSubmissions(ctx context.Context, u Update) error {
	reqs, total, err := o.Moderation.Submissions(ctx, u.SenderID, 1, submissionsPageSize)
	if err != nil {
		log.Error().Err(err).Str("user_id", u.SenderID).Msg("list submissions failed")
		return o.send(ctx, u.ChatID, "Could not load your requests. Please try again.", mainKeyboard())
	}
	if len(reqs) == 0 {
		return o.send(ctx, u.ChatID, msgNoSubmissions, mainKeyboard())
	}
	return o.send(ctx, u.ChatID, submissionsText(reqs, total), mainKeyboard())
}

// sendReply delivers an intake reply, as a photo with caption when the reply
// echoes media.
func (o *Orchestrator) sendReply(ctx context.Context, chatID int64, r intake.Reply) error {
	if r.Text == "" && r.PhotoRef == "" {
		return nil
	}
	msg := telegram.Message{ChatID: chatID}
	if r.PhotoRef != "" {
		msg.PhotoRef = r.PhotoRef
		msg.Caption = r.Text
	} else {
		msg.Text = r.Text
	}
	if m := markupFor(r.Keyboard); m != nil {
		msg.ReplyMarkup = m
	}
	if err := o.Transport.Send(ctx, msg); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
		return err
	}
	return nil
}

func (o *Orchestrator) send(ctx context.Context, chatID int64, text string, markup any) error {
	if text == "" {
		return nil
	}
	msg := telegram.Message{ChatID: chatID, Text: text}
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if err := o.Transport.Send(ctx, msg); err != nil {
		log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
		return err
	}
	return nil
}
