package domain

import (
	"encoding/json"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:domain_models?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	if (PendingRequest{}).TableName() != "pending_requests" {
		t.Fatalf("PendingRequest.TableName() = %q; want %q", (PendingRequest{}).TableName(), "pending_requests")
	}
	if (SubmitterRequest{}).TableName() != "submitter_requests" {
		t.Fatalf("SubmitterRequest.TableName() = %q; want %q", (SubmitterRequest{}).TableName(), "submitter_requests")
	}
	if (PublishedRecord{}).TableName() != "published_records" {
		t.Fatalf("PublishedRecord.TableName() = %q; want %q", (PublishedRecord{}).TableName(), "published_records")
	}
}

func TestMigrations_Indexes(t *testing.T) {
	db := newDomainDB(t)

	if err := db.AutoMigrate(&PendingRequest{}, &SubmitterRequest{}, &PublishedRecord{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()

	for _, tbl := range []any{&PendingRequest{}, &SubmitterRequest{}, &PublishedRecord{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}

	if !m.HasIndex(&PendingRequest{}, "idx_pending_submitter") {
		t.Fatalf("expected index idx_pending_submitter on pending_requests")
	}
	if !m.HasIndex(&SubmitterRequest{}, "idx_submitter_requests") {
		t.Fatalf("expected index idx_submitter_requests on submitter_requests")
	}
	if !m.HasIndex(&PublishedRecord{}, "ux_published_request") {
		t.Fatalf("expected unique index ux_published_request on published_records")
	}
}

func TestPublishedRecord_RequestIDUnique(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(&PublishedRecord{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	rec := Record{FullName: "Ali Omar Hassan"}
	if err := db.Create(&PublishedRecord{ID: "p1", RequestID: "r1", Record: rec}).Error; err != nil {
		t.Fatalf("insert first published record: %v", err)
	}
	if err := db.Create(&PublishedRecord{ID: "p2", RequestID: "r1", Record: rec}).Error; err == nil {
		t.Fatalf("expected unique violation publishing the same request twice")
	}
}

func TestFullName(t *testing.T) {
	got := FullName("Ali", "Omar", "Hassan")
	if got != "Ali Omar Hassan" {
		t.Fatalf("FullName = %q; want %q", got, "Ali Omar Hassan")
	}
	if got := FullName("  Ali ", " Omar", "Hassan  "); got != "Ali Omar Hassan" {
		t.Fatalf("FullName with padding = %q; want %q", got, "Ali Omar Hassan")
	}
	if got := FullName("Ali", "", "Hassan"); got != "Ali Hassan" {
		t.Fatalf("FullName with missing part = %q; want %q", got, "Ali Hassan")
	}
	if got := FullName("", "  ", ""); got != "" {
		t.Fatalf("FullName of blanks = %q; want empty", got)
	}
}

func TestFields_Record(t *testing.T) {
	age := 30
	f := Fields{
		FirstName:  " Ali ",
		FatherName: "Omar",
		FamilyName: "Hassan",
		Age:        &age,
		BirthDate:  "1994/01/01",
		DeathDate:  "2024/03/01",
		Place:      "Tartus",
		PhotoRef:   "ref123",
	}
	r := f.Record()
	if r.FullName != "Ali Omar Hassan" {
		t.Fatalf("FullName = %q", r.FullName)
	}
	if r.Age != 30 {
		t.Fatalf("Age = %d; want 30", r.Age)
	}
	if r.PhotoRef != "ref123" {
		t.Fatalf("PhotoRef = %q", r.PhotoRef)
	}
}

func TestNewIdleSession(t *testing.T) {
	s := NewIdleSession("u1")
	if s.State != StateIdle {
		t.Fatalf("state = %q; want idle", s.State)
	}
	if !s.Fields.Empty() {
		t.Fatalf("expected empty fields on idle session")
	}
	if s.SchemaVersion != SchemaVersion {
		t.Fatalf("schema version = %d; want %d", s.SchemaVersion, SchemaVersion)
	}
}

func TestSession_JSONRoundTrip(t *testing.T) {
	age := 42
	s := Session{
		UserID: "u1",
		State:  StateWaitBirthDate,
		Fields: Fields{FirstName: "Ali", FatherName: "Omar", FamilyName: "Hassan", Age: &age},
		Submitter: SubmitterInfo{
			TelegramID: "u1", FirstName: "Sami", Username: "sami",
		},
		SchemaVersion: SchemaVersion,
	}
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Session
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.State != StateWaitBirthDate || back.Fields.FirstName != "Ali" || back.Fields.Age == nil || *back.Fields.Age != 42 {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestState_NextAndActive(t *testing.T) {
	if StateIdle.Active() {
		t.Fatalf("idle must not be active")
	}
	order := []State{
		StateWaitFirstName, StateWaitFatherName, StateWaitFamilyName,
		StateWaitAge, StateWaitBirthDate, StateWaitDeathDate,
		StateWaitPlace, StateWaitPhoto,
	}
	for i := 0; i < len(order)-1; i++ {
		if !order[i].Active() {
			t.Fatalf("%q should be active", order[i])
		}
		if got := order[i].Next(); got != order[i+1] {
			t.Fatalf("Next(%q) = %q; want %q", order[i], got, order[i+1])
		}
	}
	// The photo step submits rather than advancing.
	if got := StateWaitPhoto.Next(); got != StateIdle {
		t.Fatalf("Next(photo) = %q; want idle", got)
	}
	if State("bogus").Valid() {
		t.Fatalf("unknown state must not be valid")
	}
}

func TestSubmitterInfo_DisplayName(t *testing.T) {
	cases := []struct {
		in   SubmitterInfo
		want string
	}{
		{SubmitterInfo{FirstName: "Sami", LastName: "K", Username: "sami"}, "Sami K (@sami)"},
		{SubmitterInfo{FirstName: "Sami"}, "Sami"},
		{SubmitterInfo{Username: "sami"}, "@sami"},
		{SubmitterInfo{}, ""},
	}
	for _, c := range cases {
		if got := c.in.DisplayName(); got != c.want {
			t.Fatalf("DisplayName(%+v) = %q; want %q", c.in, got, c.want)
		}
	}
}
