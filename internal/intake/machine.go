// Package intake implements the multi-step conversational form that
// collects one biographical record per run. The transition logic itself is
// pure (session in, session plus reply out); Service wraps it with session
// persistence and the hand-off to moderation.
package intake

import (
	"strconv"
	"strings"

	"github.com/devyouns/go-memorial-backend/internal/domain"
)

// Keyboard hints the orchestration layer which reply keyboard to attach to
// an outgoing prompt. The intake core knows nothing about the transport's
// keyboard wire format.
type Keyboard int

const (
	// KeyboardNone leaves the current keyboard untouched.
	KeyboardNone Keyboard = iota
	// KeyboardCancel offers only the cancel action (mid-intake).
	KeyboardCancel
	// KeyboardMain offers the main menu actions.
	KeyboardMain
)

// Reply is the outbound prompt produced by a transition. When PhotoRef is
// set the reply is a photo message with Text as its caption; the submission
// acknowledgement echoes the submitted photo this way.
type Reply struct {
	Text     string
	PhotoRef string
	Keyboard Keyboard
}

// textStep describes one text-collecting state: how to validate raw input,
// where to store the accepted value, and what to ask for next.
type textStep struct {
	state    domain.State
	invalid  string
	validate func(raw string) (string, bool)
	assign   func(f *domain.Fields, value string)
}

// textSteps covers every state that consumes a text message, in intake
// order. The photo step is terminal and handled separately because it
// consumes media and finalizes the record instead of advancing.
var textSteps = map[domain.State]textStep{
	domain.StateWaitFirstName: {
		state:    domain.StateWaitFirstName,
		invalid:  msgNeedFirstName,
		validate: nonEmpty,
		assign:   func(f *domain.Fields, v string) { f.FirstName = v },
	},
	domain.StateWaitFatherName: {
		state:    domain.StateWaitFatherName,
		invalid:  msgNeedFatherName,
		validate: nonEmpty,
		assign:   func(f *domain.Fields, v string) { f.FatherName = v },
	},
	domain.StateWaitFamilyName: {
		state:    domain.StateWaitFamilyName,
		invalid:  msgNeedFamilyName,
		validate: nonEmpty,
		assign:   func(f *domain.Fields, v string) { f.FamilyName = v },
	},
	domain.StateWaitAge: {
		state:    domain.StateWaitAge,
		invalid:  msgNeedValidAge,
		validate: validAge,
		assign:   func(f *domain.Fields, v string) { n, _ := strconv.Atoi(v); f.Age = &n },
	},
	domain.StateWaitBirthDate: {
		state:    domain.StateWaitBirthDate,
		invalid:  msgNeedBirthDate,
		validate: nonEmpty,
		assign:   func(f *domain.Fields, v string) { f.BirthDate = v },
	},
	domain.StateWaitDeathDate: {
		state:    domain.StateWaitDeathDate,
		invalid:  msgNeedDeathDate,
		validate: nonEmpty,
		assign:   func(f *domain.Fields, v string) { f.DeathDate = v },
	},
	domain.StateWaitPlace: {
		state:    domain.StateWaitPlace,
		invalid:  msgNeedPlace,
		validate: nonEmpty,
		assign:   func(f *domain.Fields, v string) { f.Place = v },
	},
}

// nonEmpty accepts any input whose trimmed form is not empty.
func nonEmpty(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	return v, v != ""
}

// validAge accepts integers in [0, 150] inclusive.
func validAge(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > 150 {
		return "", false
	}
	return strconv.Itoa(n), true
}

// applyText is the pure text transition: given the current session and a raw
// text message, it returns the next session and the reply to send. Invalid
// input leaves the session untouched and re-issues the step's validation
// error, so the user stays on the same step with nothing lost.
func applyText(sess domain.Session, text string) (domain.Session, Reply) {
	step, ok := textSteps[sess.State]
	if !ok {
		// Photo step: text arrives where media is expected.
		if sess.State == domain.StateWaitPhoto {
			return sess, Reply{Text: msgNeedPhoto, Keyboard: KeyboardCancel}
		}
		return sess, Reply{Text: msgNoActiveIntake, Keyboard: KeyboardMain}
	}

	value, ok := step.validate(text)
	if !ok {
		return sess, Reply{Text: step.invalid, Keyboard: KeyboardCancel}
	}

	step.assign(&sess.Fields, value)
	sess.State = sess.State.Next()
	return sess, Reply{Text: promptFor(sess.State), Keyboard: KeyboardCancel}
}
