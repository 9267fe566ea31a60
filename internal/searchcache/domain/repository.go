package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("cache_entry_not_found")

type Repository interface {
	// GetByHash returns the entry for a query hash regardless of expiry;
	// expiry is the caller's concern.
	GetByHash(ctx context.Context, hash string) (*Entry, error)
	// Upsert replaces any prior entry for the same hash.
	Upsert(ctx context.Context, entry Entry) error
	// PurgeExpired deletes entries past their expiry and reports the count.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
