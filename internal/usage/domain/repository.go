package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/pkg/db/pagination"
)

type Repository interface {
	Append(ctx context.Context, record Record) error
	ListByOrg(ctx context.Context, orgID snowflake.ID, page pagination.Params) ([]Record, int64, error)
	// TotalCreditsUsed sums the ledger for an organization.
	TotalCreditsUsed(ctx context.Context, orgID snowflake.ID) (int64, error)
}
