package bot

import (
	"fmt"
	"strings"

	"github.com/devyouns/go-memorial-backend/internal/domain"
	"github.com/devyouns/go-memorial-backend/internal/intake"
	"github.com/devyouns/go-memorial-backend/internal/telegram"
)

// Reply-keyboard button labels. Button presses arrive as plain text, so the
// router matches on these alongside the slash commands.
const (
	btnAddRecord  = "Add a new record"
	btnMyRequests = "My requests"
	btnHelp       = "Help"
	btnCancel     = "Cancel"
)

const (
	msgWelcome = "Welcome to the memorial gallery bot.\n\n" +
		"Available actions:\n" +
		"• Add a new record\n" +
		"• My requests\n" +
		"• Help\n\n" +
		"To submit a record, press <b>" + btnAddRecord + "</b>."

	msgHelp = "<b>How this bot works</b>\n\n" +
		"<b>" + btnAddRecord + ":</b> submit a record in eight steps:\n" +
		"1. First name\n2. Father's name\n3. Family name\n4. Age\n" +
		"5. Date of birth\n6. Date of death\n7. Place of death\n8. Photo\n\n" +
		"<b>" + btnMyRequests + ":</b> see the status of everything you submitted.\n\n" +
		"<b>" + btnCancel + ":</b> abandon the current submission at any time."

	msgUnsupported = "Unsupported message type. Please send text or a photo."

	msgNotAllowed = "You are not allowed to perform this action"

	msgReviewUsage = "Invalid command format. Usage: /approve <request_id> <submitter_id> (or /reject)."

	msgNoPending = "There are no pending requests to review right now."

	msgNoSubmissions = "You have not submitted any requests yet."

	msgRequestGone = "Request not found: it may have been reviewed already."
)

// mainKeyboard is offered whenever no intake is in progress.
func mainKeyboard() *telegram.ReplyKeyboard {
	return telegram.NewReplyKeyboard(btnAddRecord, btnMyRequests, btnHelp)
}

// cancelKeyboard is offered during an intake.
func cancelKeyboard() *telegram.ReplyKeyboard {
	return telegram.NewReplyKeyboard(btnCancel)
}

// markupFor maps an intake keyboard hint to transport markup.
func markupFor(k intake.Keyboard) any {
	switch k {
	case intake.KeyboardCancel:
		return cancelKeyboard()
	case intake.KeyboardMain:
		return mainKeyboard()
	default:
		return nil
	}
}

// statusGlyph returns the list glyph for a request status.
func statusGlyph(s domain.RequestStatus) string {
	switch s {
	case domain.StatusApproved:
		return "✅" // check mark
	case domain.StatusRejected:
		return "❌" // cross mark
	default:
		return "⏳" // hourglass
	}
}

// statusLabel returns the human label for a request status.
func statusLabel(s domain.RequestStatus) string {
	switch s {
	case domain.StatusApproved:
		return "approved"
	case domain.StatusRejected:
		return "rejected"
	default:
		return "under review"
	}
}

// submissionsText renders one page of the caller's request history. When the
// history is longer than the page, a footer says how much is shown.
func submissionsText(reqs []domain.SubmitterRequest, total int64) string {
	var b strings.Builder
	b.WriteString("<b>Your submitted requests:</b>\n\n")
	for _, r := range reqs {
		fmt.Fprintf(&b, "%s <b>%s</b>\n", statusGlyph(r.Status), r.Record.FullName)
		fmt.Fprintf(&b, "   Status: %s\n", statusLabel(r.Status))
		fmt.Fprintf(&b, "   Submitted: %s\n\n", r.CreatedAt.Format("2006-01-02"))
	}
	if total > int64(len(reqs)) {
		fmt.Fprintf(&b, "Showing your %d most recent requests of %d.\n", len(reqs), total)
	}
	return strings.TrimRight(b.String(), "\n")
}

// reviewSummary renders one pending request for the moderator.
func reviewSummary(req domain.PendingRequest) string {
	var b strings.Builder
	b.WriteString("<b>Request awaiting review</b>\n\n")
	fmt.Fprintf(&b, "<b>ID:</b> <code>%s</code>\n", req.ID)
	fmt.Fprintf(&b, "<b>Name:</b> %s\n", req.Record.FullName)
	fmt.Fprintf(&b, "<b>Age:</b> %d\n", req.Record.Age)
	fmt.Fprintf(&b, "<b>Born:</b> %s\n", req.Record.BirthDate)
	fmt.Fprintf(&b, "<b>Died:</b> %s\n", req.Record.DeathDate)
	fmt.Fprintf(&b, "<b>Place:</b> %s\n\n", req.Record.Place)
	fmt.Fprintf(&b, "<b>Submitted by:</b> %s\n", req.Submitter.DisplayName())
	fmt.Fprintf(&b, "<b>Submitter ID:</b> <code>%s</code>", req.SubmitterID)
	return b.String()
}

// moderatorAlert renders the notification sent to the moderator when a new
// request arrives.
func moderatorAlert(sub intake.Submission) string {
	return fmt.Sprintf(
		"<b>New request for review</b>\n\n"+
			"<b>Request ID:</b> <code>%s</code>\n"+
			"<b>Submitter ID:</b> <code>%s</code>\n"+
			"<b>Name:</b> %s\n\n"+
			"<b>Submitted by:</b> %s\n\n"+
			"Use /review to see pending requests.",
		sub.RequestID, sub.SubmitterID, sub.Record.FullName, sub.Submitter.DisplayName(),
	)
}

// approvedNotice is sent to the submitter when their request is approved.
func approvedNotice(fullName string) string {
	return fmt.Sprintf(
		"<b>Good news!</b>\n\nYour request to add <b>%s</b> has been approved.\n\n"+
			"Thank you for helping preserve their memory.", fullName)
}

// rejectedNotice is sent to the submitter when their request is rejected.
func rejectedNotice(fullName string) string {
	return fmt.Sprintf(
		"<b>We are sorry.</b>\n\nYour request to add <b>%s</b> was not approved.\n\n"+
			"Please double-check the details and feel free to submit again.", fullName)
}

// reviewKeyboard builds the approve/reject inline keyboard for a request.
func reviewKeyboard(req domain.PendingRequest) *telegram.InlineKeyboard {
	approve := ReviewAction{Verb: VerbApprove, RequestID: req.ID, SubmitterID: req.SubmitterID}
	reject := ReviewAction{Verb: VerbReject, RequestID: req.ID, SubmitterID: req.SubmitterID}
	return telegram.NewInlineKeyboard(
		telegram.InlineKeyboardButton{Text: "✅ Approve", CallbackData: approve.Encode()},
		telegram.InlineKeyboardButton{Text: "❌ Reject", CallbackData: reject.Encode()},
	)
}
