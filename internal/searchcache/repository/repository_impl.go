package repository

import (
	"context"
	"errors"
	"time"

	"github.com/evoleadai/evolead/internal/searchcache/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) GetByHash(ctx context.Context, hash string) (*domain.Entry, error) {
	var entry domain.Entry
	err := r.db.WithContext(ctx).First(&entry, "query_hash = ?", hash).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repository) Upsert(ctx context.Context, entry domain.Entry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "query_hash"}},
			DoUpdates: clause.Assignments(map[string]any{
				"results":    entry.Results,
				"expires_at": entry.ExpiresAt,
				"created_at": entry.CreatedAt,
			}),
		}).
		Create(&entry).Error
}

func (r *repository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&domain.Entry{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
