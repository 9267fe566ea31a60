package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// UserSearch records one lead generation run and its lifecycle. Every run
// ends in a terminal status; stale processing rows are swept to failed.
type UserSearch struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id,string"`
	OrgID          snowflake.ID `gorm:"index" json:"org_id,string"`
	UserID         snowflake.ID `gorm:"index" json:"user_id,string"`
	Industry       string       `json:"industry"`
	Country        string       `json:"country"`
	State          string       `json:"state"`
	City           string       `json:"city"`
	RequestedCount int          `json:"requested_count"`
	Status         Status       `gorm:"index" json:"status"`
	ErrorMessage   string       `json:"error_message,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (UserSearch) TableName() string {
	return "user_searches"
}
