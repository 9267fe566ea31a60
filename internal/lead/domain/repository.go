package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/pkg/db/pagination"
)

var (
	ErrNotFound         = errors.New("lead_not_found")
	ErrMetadataNotFound = errors.New("lead_metadata_not_found")
)

// ListFilter narrows the lead listing. Zero values mean "any".
type ListFilter struct {
	OrgID    snowflake.ID
	SearchID snowflake.ID
	UserID   snowflake.ID
	// Search matches business name, email or website, case-insensitive.
	Search string
}

// SortField whitelists the sortable columns for the per-search view.
type SortField string

const (
	SortByConfidence SortField = "confidence_score"
	SortByName       SortField = "business_name"
	SortByCreatedAt  SortField = "created_at"
)

func (s SortField) Valid() bool {
	switch s {
	case SortByConfidence, SortByName, SortByCreatedAt:
		return true
	}
	return false
}

type Repository interface {
	BatchInsert(ctx context.Context, leads []Lead) error
	GetByID(ctx context.Context, id snowflake.ID) (*Lead, error)
	// List returns leads joined with the viewer's metadata.
	List(ctx context.Context, viewer snowflake.ID, filter ListFilter, page pagination.Params) ([]LeadView, int64, error)
	// ListBySearch returns one search's leads sorted by the given field.
	ListBySearch(ctx context.Context, viewer snowflake.ID, searchID snowflake.ID, sortBy SortField, desc bool, page pagination.Params) ([]LeadView, int64, error)
	GetMetadata(ctx context.Context, leadID, userID snowflake.ID) (*Metadata, error)
	UpsertMetadata(ctx context.Context, meta Metadata) error
	DeleteMetadata(ctx context.Context, leadID, userID snowflake.ID) error
}
