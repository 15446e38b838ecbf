package intake

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/devyouns/go-memorial-backend/internal/domain"
	"github.com/devyouns/go-memorial-backend/internal/session"
)

// Submitter is the moderation hand-off contract required by the intake
// service. The production implementation is moderation.Service.
type Submitter interface {
	// Submit queues a completed record for review and returns its request id.
	Submit(ctx context.Context, rec domain.Record, submitterID string, submitter domain.SubmitterInfo) (string, error)
}

// Submission reports a completed intake so the orchestration layer can
// notify the moderator.
type Submission struct {
	RequestID   string
	SubmitterID string
	Record      domain.Record
	Submitter   domain.SubmitterInfo
}

// Result is the outcome of handling one inbound event: the reply to send
// back, and, when the photo step completed, the submission that was queued.
type Result struct {
	Reply     Reply
	Submitted *Submission
}

// Service drives intakes against a session store. A failing store never
// corrupts a session: operations either persist the advanced session and
// reply with the next prompt, or leave the previous session in place and
// reply that the service is temporarily unavailable.
type Service struct {
	Sessions   session.Store
	Moderation Submitter
}

// NewService constructs an intake Service.
func NewService(store session.Store, mod Submitter) *Service {
	return &Service{Sessions: store, Moderation: mod}
}

// Start begins a fresh intake for the user, discarding any prior session.
// Submitter display metadata is captured once, here.
func (s *Service) Start(ctx context.Context, userID string, submitter domain.SubmitterInfo) (Result, error) {
	tr := otel.Tracer("intake/Service")
	ctx, span := tr.Start(ctx, "Start",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	sess := domain.NewIdleSession(userID)
	sess.State = domain.StateWaitFirstName
	sess.Submitter = submitter
	sess.CreatedAt = time.Now().UTC()

	if err := s.Sessions.Put(ctx, sess); err != nil {
		// Prior state, whatever it was, is untouched.
		return Result{Reply: Reply{Text: msgStoreDown, Keyboard: KeyboardMain}}, fmt.Errorf("start intake: %w", err)
	}
	return Result{Reply: Reply{Text: msgIntakeStarted, Keyboard: KeyboardCancel}}, nil
}

// Cancel discards the user's session, if any, and confirms. There is
// nothing to unwind: no irreversible effect happens before the photo step.
func (s *Service) Cancel(ctx context.Context, userID string) (Result, error) {
	tr := otel.Tracer("intake/Service")
	ctx, span := tr.Start(ctx, "Cancel",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if err := s.Sessions.Clear(ctx, userID); err != nil {
		return Result{Reply: Reply{Text: msgStoreDown, Keyboard: KeyboardMain}}, fmt.Errorf("cancel intake: %w", err)
	}
	return Result{Reply: Reply{Text: msgCanceled, Keyboard: KeyboardMain}}, nil
}

// HandleText feeds a text message into the state machine. Validation errors
// re-issue the current step; valid input advances and persists the session.
func (s *Service) HandleText(ctx context.Context, userID, text string) (Result, error) {
	tr := otel.Tracer("intake/Service")
	ctx, span := tr.Start(ctx, "HandleText",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	sess, err := s.Sessions.Get(ctx, userID)
	if err != nil {
		return Result{Reply: Reply{Text: msgStoreDown, Keyboard: KeyboardMain}}, fmt.Errorf("load session: %w", err)
	}

	next, reply := applyText(sess, text)
	if next.State == sess.State {
		// Rejected input or idle no-op; nothing to persist.
		return Result{Reply: reply}, nil
	}

	if err := s.Sessions.Put(ctx, next); err != nil {
		return Result{Reply: Reply{Text: msgStoreDown, Keyboard: KeyboardCancel}}, fmt.Errorf("save session: %w", err)
	}
	return Result{Reply: reply}, nil
}

// HandlePhoto feeds a media reference into the state machine. In any state
// but the photo step the media is rejected and nothing changes. In the photo
// step it finalizes the record, queues it for moderation, and clears the
// session; if queuing fails the session survives so the user can retry.
func (s *Service) HandlePhoto(ctx context.Context, userID, mediaRef, caption string) (Result, error) {
	tr := otel.Tracer("intake/Service")
	ctx, span := tr.Start(ctx, "HandlePhoto",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	sess, err := s.Sessions.Get(ctx, userID)
	if err != nil {
		return Result{Reply: Reply{Text: msgStoreDown, Keyboard: KeyboardMain}}, fmt.Errorf("load session: %w", err)
	}

	if sess.State != domain.StateWaitPhoto {
		return Result{Reply: Reply{Text: msgPhotoOutOfTurn, Keyboard: KeyboardMain}}, nil
	}

	sess.Fields.PhotoRef = mediaRef
	sess.Fields.PhotoCaption = caption
	rec := sess.Fields.Record()

	requestID, err := s.Moderation.Submit(ctx, rec, userID, sess.Submitter)
	if err != nil {
		return Result{Reply: Reply{Text: msgStoreDown, Keyboard: KeyboardCancel}}, fmt.Errorf("submit request: %w", err)
	}

	// The request is queued; the session has served its purpose. A failed
	// clear would leave a stale photo-step session behind, so surface it,
	// but the submission itself stands.
	// The acknowledgement echoes the submitted photo with the summary as
	// its caption.
	ack := Reply{Text: submissionSummary(rec), PhotoRef: mediaRef, Keyboard: KeyboardMain}

	if err := s.Sessions.Clear(ctx, userID); err != nil {
		return Result{
			Reply: ack,
			Submitted: &Submission{
				RequestID: requestID, SubmitterID: userID, Record: rec, Submitter: sess.Submitter,
			},
		}, fmt.Errorf("clear session: %w", err)
	}

	return Result{
		Reply: ack,
		Submitted: &Submission{
			RequestID: requestID, SubmitterID: userID, Record: rec, Submitter: sess.Submitter,
		},
	}, nil
}

// Active reports whether the user currently has an intake in progress.
func (s *Service) Active(ctx context.Context, userID string) (bool, error) {
	sess, err := s.Sessions.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return sess.State.Active(), nil
}
