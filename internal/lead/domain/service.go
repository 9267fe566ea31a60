package domain

import (
	"context"
	"io"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/pkg/db/pagination"
)

// MetadataUpdate is the upsert payload for a viewer's favorite/note state.
// Nil fields are left unchanged.
type MetadataUpdate struct {
	IsFavorite *bool
	Notes      *string
}

type Service interface {
	Get(ctx context.Context, id snowflake.ID) (*Lead, error)
	List(ctx context.Context, viewer snowflake.ID, filter ListFilter, page pagination.Params) ([]LeadView, *pagination.PageInfo, error)
	ListBySearch(ctx context.Context, viewer snowflake.ID, searchID snowflake.ID, sortBy SortField, desc bool, page pagination.Params) ([]LeadView, *pagination.PageInfo, error)
	SetMetadata(ctx context.Context, leadID, userID snowflake.ID, update MetadataUpdate) (*Metadata, error)
	RemoveMetadata(ctx context.Context, leadID, userID snowflake.ID) error
	// ExportCSV streams one search's leads as RFC 4180 CSV.
	ExportCSV(ctx context.Context, w io.Writer, viewer snowflake.ID, searchID snowflake.ID) error
}
