// Package bot routes inbound chat updates to the intake state machine or
// the moderation workflow and turns their results into outbound messages.
// It is transport-thin on purpose: decoding the Telegram wire format and
// delivering messages both live elsewhere.
package bot

import (
	"fmt"
	"strings"

	"github.com/devyouns/go-memorial-backend/internal/domain"
)

// Update is one inbound event, already decoded from the transport. Exactly
// one of Text, PhotoRef, or Callback is meaningful; PhotoRef is the
// highest-resolution media reference, selected at the transport boundary.
type Update struct {
	UpdateID int64
	ChatID   int64
	SenderID string
	Sender   domain.SubmitterInfo
	Text     string
	PhotoRef string
	Caption  string
	Callback *Callback
}

// Callback is an inline-keyboard interaction.
type Callback struct {
	ID   string
	Data string
}

// ReviewVerb is the kind of moderation transition a review command requests.
type ReviewVerb string

const (
	VerbApprove ReviewVerb = "approve"
	VerbReject  ReviewVerb = "reject"
)

// ReviewAction is the typed form of a moderation command. It is encoded
// into callback data when the review keyboard is built and parsed back when
// the moderator taps a button; nothing below the transport boundary ever
// splits strings.
type ReviewAction struct {
	Verb        ReviewVerb
	RequestID   string
	SubmitterID string
}

// Encode renders the action as callback data ("approve_<id>_<uid>").
// Request ids are UUIDs and submitter ids are numeric, so the underscore
// separator cannot occur inside either part.
func (a ReviewAction) Encode() string {
	return string(a.Verb) + "_" + a.RequestID + "_" + a.SubmitterID
}

// ParseReviewAction parses callback data produced by Encode.
func ParseReviewAction(data string) (ReviewAction, error) {
	parts := strings.SplitN(data, "_", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return ReviewAction{}, fmt.Errorf("malformed review action %q", data)
	}
	verb := ReviewVerb(parts[0])
	if verb != VerbApprove && verb != VerbReject {
		return ReviewAction{}, fmt.Errorf("unknown review verb %q", parts[0])
	}
	return ReviewAction{Verb: verb, RequestID: parts[1], SubmitterID: parts[2]}, nil
}
