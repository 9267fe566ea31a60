package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const ActionLeadGeneration = "lead_generation"

// Record is one append-only usage ledger row. Rows are never updated or
// deleted; billing reads aggregate over them.
type Record struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id,string"`
	OrgID       snowflake.ID `gorm:"index" json:"org_id,string"`
	UserID      snowflake.ID `json:"user_id,string"`
	SearchID    snowflake.ID `gorm:"index" json:"search_id,string"`
	Action      string       `json:"action"`
	CreditsUsed int64        `json:"credits_used"`
	// Units is the requested lead volume the credits covered.
	Units     int       `json:"units"`
	TrialRun  bool      `json:"trial_run"`
	CreatedAt time.Time `json:"created_at"`
}

func (Record) TableName() string {
	return "usage_records"
}
