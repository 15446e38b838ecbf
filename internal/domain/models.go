// Package domain defines the core data model for the memorial gallery
// backend: per-user intake sessions, submitted requests awaiting moderation,
// and published records. The moderation-side types are mapped with GORM;
// sessions are serialized as JSON by the session store backends.
package domain

import (
	"strings"
	"time"
)

// SchemaVersion is stamped on sessions and requests so that stored documents
// written by older builds can be recognized and migrated if the shape changes.
const SchemaVersion = 1

// SubmitterInfo captures display metadata about the person submitting a
// record. It is taken once from the chat transport when an intake starts and
// copied onto the request at submission time.
type SubmitterInfo struct {
	TelegramID string `json:"telegram_id" gorm:"type:varchar(64)"`
	FirstName  string `json:"first_name"  gorm:"type:varchar(255)"`
	LastName   string `json:"last_name"   gorm:"type:varchar(255)"`
	Username   string `json:"username"    gorm:"type:varchar(255)"`
}

// DisplayName renders the submitter as "First Last (@username)" with empty
// parts omitted.
func (s SubmitterInfo) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(s.FirstName) + " " + strings.TrimSpace(s.LastName))
	if s.Username != "" {
		if name == "" {
			return "@" + s.Username
		}
		return name + " (@" + s.Username + ")"
	}
	return name
}

// Fields holds the values captured during an intake, one per collection step.
// Age is a pointer so that "not captured yet" is distinguishable from zero.
type Fields struct {
	FirstName    string `json:"first_name,omitempty"`
	FatherName   string `json:"father_name,omitempty"`
	FamilyName   string `json:"family_name,omitempty"`
	Age          *int   `json:"age,omitempty"`
	BirthDate    string `json:"birth_date,omitempty"`
	DeathDate    string `json:"death_date,omitempty"`
	Place        string `json:"place,omitempty"`
	PhotoRef     string `json:"photo_ref,omitempty"`
	PhotoCaption string `json:"photo_caption,omitempty"`
}

// Empty reports whether no field has been captured yet.
func (f Fields) Empty() bool {
	return f == Fields{}
}

// Record assembles the captured fields into an immutable biographical record,
// deriving FullName from the three name parts.
func (f Fields) Record() Record {
	age := 0
	if f.Age != nil {
		age = *f.Age
	}
	return Record{
		FirstName:    strings.TrimSpace(f.FirstName),
		FatherName:   strings.TrimSpace(f.FatherName),
		FamilyName:   strings.TrimSpace(f.FamilyName),
		FullName:     FullName(f.FirstName, f.FatherName, f.FamilyName),
		Age:          age,
		BirthDate:    strings.TrimSpace(f.BirthDate),
		DeathDate:    strings.TrimSpace(f.DeathDate),
		Place:        strings.TrimSpace(f.Place),
		PhotoRef:     f.PhotoRef,
		PhotoCaption: f.PhotoCaption,
	}
}

// FullName joins the trimmed, non-empty name parts with single spaces.
func FullName(first, father, family string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{first, father, family} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Session is the per-user transient capture state for an in-progress intake.
// At most one live Session exists per user; starting a new intake always
// replaces any prior one. A Session in StateIdle carries no captured fields.
type Session struct {
	UserID        string        `json:"user_id"`
	State         State         `json:"state"`
	Fields        Fields        `json:"fields"`
	Submitter     SubmitterInfo `json:"submitter"`
	CreatedAt     time.Time     `json:"created_at"`
	SchemaVersion int           `json:"schema_version"`
}

// NewIdleSession returns the zero session for a user: idle, no fields.
// Session stores hand this out for users they have never seen.
func NewIdleSession(userID string) Session {
	return Session{UserID: userID, State: StateIdle, SchemaVersion: SchemaVersion}
}

// Record is the assembled biographical record carried by a request and, once
// approved, copied into the published store. The photo is an opaque media
// reference; media bytes are never stored here.
type Record struct {
	FirstName    string `json:"first_name"    gorm:"type:varchar(255);not null"`
	FatherName   string `json:"father_name"   gorm:"type:varchar(255);not null"`
	FamilyName   string `json:"family_name"   gorm:"type:varchar(255);not null"`
	FullName     string `json:"full_name"     gorm:"type:varchar(255);not null"`
	Age          int    `json:"age"           gorm:"not null"`
	BirthDate    string `json:"birth_date"    gorm:"type:varchar(64)"`
	DeathDate    string `json:"death_date"    gorm:"type:varchar(64)"`
	Place        string `json:"place"         gorm:"type:varchar(255)"`
	PhotoRef     string `json:"photo_ref"     gorm:"type:varchar(255)"`
	PhotoCaption string `json:"photo_caption" gorm:"type:text"`
}

// RequestStatus is the moderation lifecycle state of a submitted request.
// It transitions exactly once, from pending to approved or rejected.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// PendingRequest is a row in the pending queue. Presence in this table is the
// definition of "pending": approve and reject delete the row in the same
// transaction that records the decision, so a request whose status has
// transitioned is never found here.
type PendingRequest struct {
	ID            string        `json:"id"           gorm:"type:char(36);primaryKey"`
	SubmitterID   string        `json:"submitter_id" gorm:"type:varchar(64);not null;index:idx_pending_submitter"`
	Record        Record        `json:"record"       gorm:"embedded;embeddedPrefix:record_"`
	Submitter     SubmitterInfo `json:"submitter"    gorm:"embedded;embeddedPrefix:submitter_"`
	SchemaVersion int           `json:"schema_version" gorm:"not null;default:1"`
	CreatedAt     time.Time     `json:"created_at"`
}

// TableName returns the database table name for PendingRequest.
func (PendingRequest) TableName() string { return "pending_requests" }

// SubmitterRequest is the per-submitter index entry for a request. Unlike the
// pending queue row it survives moderation: Status and ReviewedAt record the
// outcome, everything else is immutable after creation.
type SubmitterRequest struct {
	ID            string        `json:"id"           gorm:"type:char(36);primaryKey"`
	SubmitterID   string        `json:"submitter_id" gorm:"type:varchar(64);not null;index:idx_submitter_requests"`
	Record        Record        `json:"record"       gorm:"embedded;embeddedPrefix:record_"`
	Submitter     SubmitterInfo `json:"submitter"    gorm:"embedded;embeddedPrefix:submitter_"`
	Status        RequestStatus `json:"status"       gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','approved','rejected')"`
	SchemaVersion int           `json:"schema_version" gorm:"not null;default:1"`
	CreatedAt     time.Time     `json:"created_at"`
	ReviewedAt    *time.Time    `json:"reviewed_at,omitempty"`
}

// TableName returns the database table name for SubmitterRequest.
func (SubmitterRequest) TableName() string { return "submitter_requests" }

// PublishedRecord is a publicly visible record created exactly once when a
// request is approved. The unique RequestID column makes double publication
// impossible at the schema level. Rows are never mutated or deleted.
type PublishedRecord struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	RequestID string    `json:"request_id" gorm:"type:char(36);not null;uniqueIndex:ux_published_request"`
	Record    Record    `json:"record"     gorm:"embedded;embeddedPrefix:record_"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for PublishedRecord.
func (PublishedRecord) TableName() string { return "published_records" }
