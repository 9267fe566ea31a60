package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var ErrNotFound = errors.New("search_not_found")

type Repository interface {
	Create(ctx context.Context, search UserSearch) error
	GetByID(ctx context.Context, id snowflake.ID) (*UserSearch, error)
	// UpdateStatus moves a run to a new status. errMessage is stored only
	// for failed runs.
	UpdateStatus(ctx context.Context, id snowflake.ID, status Status, errMessage string) error
	// MarkStaleFailed forces processing runs older than cutoff to failed and
	// reports how many rows changed.
	MarkStaleFailed(ctx context.Context, cutoff time.Time) (int64, error)
}
