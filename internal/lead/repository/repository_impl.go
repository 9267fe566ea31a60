package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/lead/domain"
	"github.com/evoleadai/evolead/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) BatchInsert(ctx context.Context, leads []domain.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&leads, 100).Error
}

func (r *repository) GetByID(ctx context.Context, id snowflake.ID) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.db.WithContext(ctx).First(&lead, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &lead, nil
}

func (r *repository) baseQuery(ctx context.Context, viewer snowflake.ID) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("leads").
		Select("leads.*, COALESCE(lead_metadata.is_favorite, ?) AS is_favorite, COALESCE(lead_metadata.notes, '') AS notes", false).
		Joins("LEFT JOIN lead_metadata ON lead_metadata.lead_id = leads.id AND lead_metadata.user_id = ?", viewer)
}

func applyFilter(query *gorm.DB, filter domain.ListFilter) *gorm.DB {
	if filter.OrgID != 0 {
		query = query.Where("leads.org_id = ?", filter.OrgID)
	}
	if filter.SearchID != 0 {
		query = query.Where("leads.search_id = ?", filter.SearchID)
	}
	if filter.UserID != 0 {
		query = query.Where("leads.search_id IN (SELECT id FROM user_searches WHERE user_id = ?)", filter.UserID)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			"LOWER(leads.business_name) LIKE ? OR LOWER(leads.email) LIKE ? OR LOWER(leads.website) LIKE ?",
			pattern, pattern, pattern,
		)
	}
	return query
}

func (r *repository) List(ctx context.Context, viewer snowflake.ID, filter domain.ListFilter, page pagination.Params) ([]domain.LeadView, int64, error) {
	var total int64
	countQuery := applyFilter(r.db.WithContext(ctx).Table("leads"), filter)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var views []domain.LeadView
	query := applyFilter(r.baseQuery(ctx, viewer), filter).
		Order("leads.created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit)
	if err := query.Scan(&views).Error; err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (r *repository) ListBySearch(ctx context.Context, viewer snowflake.ID, searchID snowflake.ID, sortBy domain.SortField, desc bool, page pagination.Params) ([]domain.LeadView, int64, error) {
	if !sortBy.Valid() {
		sortBy = domain.SortByConfidence
	}
	direction := "ASC"
	if desc {
		direction = "DESC"
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Table("leads").
		Where("search_id = ?", searchID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var views []domain.LeadView
	query := r.baseQuery(ctx, viewer).
		Where("leads.search_id = ?", searchID).
		Order("leads." + string(sortBy) + " " + direction).
		Offset(page.Offset()).
		Limit(page.Limit)
	if err := query.Scan(&views).Error; err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (r *repository) GetMetadata(ctx context.Context, leadID, userID snowflake.ID) (*domain.Metadata, error) {
	var meta domain.Metadata
	err := r.db.WithContext(ctx).
		First(&meta, "lead_id = ? AND user_id = ?", leadID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMetadataNotFound
		}
		return nil, err
	}
	return &meta, nil
}

func (r *repository) UpsertMetadata(ctx context.Context, meta domain.Metadata) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "lead_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"is_favorite": meta.IsFavorite,
				"notes":       meta.Notes,
				"updated_at":  meta.UpdatedAt,
			}),
		}).
		Create(&meta).Error
}

func (r *repository) DeleteMetadata(ctx context.Context, leadID, userID snowflake.ID) error {
	result := r.db.WithContext(ctx).
		Where("lead_id = ? AND user_id = ?", leadID, userID).
		Delete(&domain.Metadata{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrMetadataNotFound
	}
	return nil
}
