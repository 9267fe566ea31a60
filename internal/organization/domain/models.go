// Package domain contains persistence models for tenant accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Plan identifies the subscription tier of an organization.
type Plan string

const (
	PlanTrial   Plan = "trial"
	PlanStarter Plan = "starter"
	PlanGrowth  Plan = "growth"
	PlanAgency  Plan = "agency"
)

// Known reports whether the plan value is one of the supported tiers.
// Anything else is treated as ineligible for lead generation (fail closed).
func (p Plan) Known() bool {
	switch p {
	case PlanTrial, PlanStarter, PlanGrowth, PlanAgency:
		return true
	default:
		return false
	}
}

// Paid reports whether the plan spends credits rather than trial searches.
func (p Plan) Paid() bool {
	switch p {
	case PlanStarter, PlanGrowth, PlanAgency:
		return true
	default:
		return false
	}
}

// Organization represents a tenant account.
type Organization struct {
	ID                snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name              string            `gorm:"type:text;not null" json:"name"`
	Slug              string            `gorm:"type:text;not null;uniqueIndex:ux_organizations_slug" json:"slug"`
	Plan              Plan              `gorm:"type:text;not null;default:'trial'" json:"plan"`
	CreditBalance     int64             `gorm:"not null;default:0" json:"credit_balance"`
	TrialSearchesUsed int               `gorm:"not null;default:0" json:"trial_searches_used"`
	Metadata          datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	CreatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Organization) TableName() string { return "organizations" }

// Member represents membership of a user in an organization.
type Member struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID     snowflake.ID `gorm:"not null;index;uniqueIndex:ux_org_user,priority:1" json:"org_id"`
	UserID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_org_user,priority:2" json:"user_id"`
	Role      string       `gorm:"type:text;not null" json:"role"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Member) TableName() string { return "organization_members" }

const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// ValidRole reports whether role is one of the membership roles.
func ValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	default:
		return false
	}
}
