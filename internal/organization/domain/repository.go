package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, org Organization) error
	GetByID(ctx context.Context, id snowflake.ID) (*Organization, error)
	GetBySlug(ctx context.Context, slug string) (*Organization, error)
	AddMember(ctx context.Context, member Member) error
	MemberRole(ctx context.Context, orgID, userID snowflake.ID) (string, error)

	// ReserveCredits atomically subtracts credits when the balance covers
	// them; it reports false without modifying the row otherwise.
	ReserveCredits(ctx context.Context, orgID snowflake.ID, credits int64) (bool, error)
	// RefundCredits returns previously reserved credits.
	RefundCredits(ctx context.Context, orgID snowflake.ID, credits int64) error
	// ReserveTrialSearch atomically increments the trial counter while it is
	// below limit; it reports false without modifying the row otherwise.
	ReserveTrialSearch(ctx context.Context, orgID snowflake.ID, limit int) (bool, error)
	// RefundTrialSearch decrements the trial counter after a failed run.
	RefundTrialSearch(ctx context.Context, orgID snowflake.ID) error
}
