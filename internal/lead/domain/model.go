package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Lead is one generated business contact. Rows are written once per
// generation run in a single batch; only the metadata subsystem mutates
// anything afterwards, and it lives in its own table.
type Lead struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id,string"`
	OrgID           snowflake.ID `gorm:"index" json:"org_id,string"`
	SearchID        snowflake.ID `gorm:"index" json:"search_id,string"`
	BusinessName    string       `json:"business_name"`
	Email           string       `json:"email,omitempty"`
	Phone           string       `json:"phone,omitempty"`
	Website         string       `json:"website,omitempty"`
	Address         string       `json:"address,omitempty"`
	ConfidenceScore int          `json:"confidence_score"`

	// Enrichment fields, populated opportunistically.
	Industry           string                      `json:"industry,omitempty"`
	CompanySize        string                      `json:"company_size,omitempty"`
	VerificationStatus string                      `json:"verification_status,omitempty"`
	Tags               datatypes.JSONSlice[string] `json:"tags,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (Lead) TableName() string {
	return "leads"
}

// Metadata holds the per-(lead, viewer) favorite flag and note. Its
// lifecycle is independent from the lead itself.
type Metadata struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id,string"`
	LeadID     snowflake.ID `gorm:"uniqueIndex:ux_lead_user" json:"lead_id,string"`
	UserID     snowflake.ID `gorm:"uniqueIndex:ux_lead_user" json:"user_id,string"`
	IsFavorite bool         `json:"is_favorite"`
	Notes      string       `json:"notes,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

func (Metadata) TableName() string {
	return "lead_metadata"
}

// LeadView is a lead joined with the viewer's metadata, as returned by
// the listing queries.
type LeadView struct {
	Lead
	IsFavorite bool   `json:"is_favorite"`
	Notes      string `json:"notes,omitempty"`
}
