package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/search/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, search domain.UserSearch) error {
	return r.db.WithContext(ctx).Create(&search).Error
}

func (r *repository) GetByID(ctx context.Context, id snowflake.ID) (*domain.UserSearch, error) {
	var search domain.UserSearch
	err := r.db.WithContext(ctx).First(&search, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &search, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id snowflake.ID, status domain.Status, errMessage string) error {
	updates := map[string]any{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if status == domain.StatusFailed && errMessage != "" {
		updates["error_message"] = errMessage
	}
	result := r.db.WithContext(ctx).
		Model(&domain.UserSearch{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repository) MarkStaleFailed(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE user_searches
		 SET status = ?, error_message = ?, updated_at = ?
		 WHERE status IN (?, ?) AND updated_at < ?`,
		domain.StatusFailed, "search timed out", time.Now().UTC(),
		domain.StatusPending, domain.StatusProcessing, cutoff,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
