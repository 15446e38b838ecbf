package intake

import (
	"fmt"
	"strings"

	"github.com/devyouns/go-memorial-backend/internal/domain"
)

// User-visible intake copy. The orchestration layer sends these verbatim;
// keyboards are attached according to the Reply's Keyboard hint.
const (
	msgIntakeStarted = "Let's add a new record.\n\n1. Please enter the first name:"

	msgPromptFatherName = "2. Please enter the father's name:"
	msgPromptFamilyName = "3. Please enter the family name:"
	msgPromptAge        = "4. Please enter the age:"
	msgPromptBirthDate  = "5. Please enter the date of birth (example: 1990/01/15):"
	msgPromptDeathDate  = "6. Please enter the date of death (example: 2024/03/15):"
	msgPromptPlace      = "7. Please enter the place of death:"
	msgPromptPhoto      = "8. Please send a photo.\n\nYou may attach a caption if you wish."

	msgNeedFirstName  = "Please enter the first name."
	msgNeedFatherName = "Please enter the father's name."
	msgNeedFamilyName = "Please enter the family name."
	msgNeedValidAge   = "Please enter a valid age (a whole number between 0 and 150)."
	msgNeedBirthDate  = "Please enter the date of birth."
	msgNeedDeathDate  = "Please enter the date of death."
	msgNeedPlace      = "Please enter the place of death."
	msgNeedPhoto      = "A photo is expected at this step. Please send one, or cancel."

	msgNoActiveIntake = "No submission is in progress. Use \"Add a new record\" to start one."
	msgPhotoOutOfTurn = "Please follow the steps in order.\n\nUse \"Add a new record\" to start a submission."
	msgCanceled       = "The current submission has been canceled.\n\nYou can start again with \"Add a new record\"."
	msgStoreDown      = "The service is temporarily unavailable. Please try again in a moment."
)

// promptFor returns the prompt shown when entering a state.
func promptFor(s domain.State) string {
	switch s {
	case domain.StateWaitFirstName:
		return msgIntakeStarted
	case domain.StateWaitFatherName:
		return msgPromptFatherName
	case domain.StateWaitFamilyName:
		return msgPromptFamilyName
	case domain.StateWaitAge:
		return msgPromptAge
	case domain.StateWaitBirthDate:
		return msgPromptBirthDate
	case domain.StateWaitDeathDate:
		return msgPromptDeathDate
	case domain.StateWaitPlace:
		return msgPromptPlace
	case domain.StateWaitPhoto:
		return msgPromptPhoto
	default:
		return msgNoActiveIntake
	}
}

// submissionSummary renders the acknowledgement sent to the submitter after
// a successful hand-off to moderation.
func submissionSummary(rec domain.Record) string {
	var b strings.Builder
	b.WriteString("Your request has been submitted.\n\n")
	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "Name: %s\n", rec.FullName)
	fmt.Fprintf(&b, "Age: %d\n", rec.Age)
	fmt.Fprintf(&b, "Born: %s\n", rec.BirthDate)
	fmt.Fprintf(&b, "Died: %s\n", rec.DeathDate)
	fmt.Fprintf(&b, "Place: %s\n", rec.Place)
	b.WriteString("\nIt will be reviewed by a moderator. Use \"My requests\" to check its status.")
	return b.String()
}
