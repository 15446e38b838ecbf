package domain

// State identifies the current step of a user's intake. States advance
// strictly in order; the only ways back are /cancel and /start, which both
// discard captured fields.
type State string

const (
	StateIdle           State = "idle"
	StateWaitFirstName  State = "waiting_first_name"
	StateWaitFatherName State = "waiting_father_name"
	StateWaitFamilyName State = "waiting_family_name"
	StateWaitAge        State = "waiting_age"
	StateWaitBirthDate  State = "waiting_birth_date"
	StateWaitDeathDate  State = "waiting_death_date"
	StateWaitPlace      State = "waiting_place"
	StateWaitPhoto      State = "waiting_photo"
)

// intakeOrder lists the collection steps in the order they are visited.
var intakeOrder = []State{
	StateWaitFirstName,
	StateWaitFatherName,
	StateWaitFamilyName,
	StateWaitAge,
	StateWaitBirthDate,
	StateWaitDeathDate,
	StateWaitPlace,
	StateWaitPhoto,
}

// Active reports whether an intake is in progress (any non-idle state).
func (s State) Active() bool { return s != StateIdle && s.Valid() }

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	if s == StateIdle {
		return true
	}
	for _, st := range intakeOrder {
		if s == st {
			return true
		}
	}
	return false
}

// Next returns the state following s in the intake order. The final
// collection step (photo) has no successor: completing it submits the record
// and resets the session, so Next returns StateIdle for it and for any state
// outside the order.
func (s State) Next() State {
	for i, st := range intakeOrder {
		if s == st && i+1 < len(intakeOrder) {
			return intakeOrder[i+1]
		}
	}
	return StateIdle
}
