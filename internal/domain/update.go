package domain

import "time"

// ProcessedUpdate records a webhook update that has already been dispatched.
// Telegram redelivers updates until the webhook acknowledges them, so the
// orchestrator consults this table before handling an update to keep side
// effects (session writes, submissions, notifications) at-most-once per
// update. Rows expire after a TTL and are pruned opportunistically.
type ProcessedUpdate struct {
	UpdateID  int64     `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (ProcessedUpdate) TableName() string { return "processed_updates" }
