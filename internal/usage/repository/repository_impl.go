package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/usage/domain"
	"github.com/evoleadai/evolead/pkg/db/pagination"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) Append(ctx context.Context, record domain.Record) error {
	return r.db.WithContext(ctx).Create(&record).Error
}

func (r *repository) ListByOrg(ctx context.Context, orgID snowflake.ID, page pagination.Params) ([]domain.Record, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Record{}).
		Where("org_id = ?", orgID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []domain.Record
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *repository) TotalCreditsUsed(ctx context.Context, orgID snowflake.ID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&domain.Record{}).
		Where("org_id = ?", orgID).
		Select("COALESCE(SUM(credits_used), 0)").
		Scan(&total).Error
	return total, err
}
