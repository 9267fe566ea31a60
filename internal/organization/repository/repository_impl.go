package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/organization/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, org domain.Organization) error {
	return r.db.WithContext(ctx).Create(&org).Error
}

func (r *repository) GetByID(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	var org domain.Organization
	err := r.db.WithContext(ctx).First(&org, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &org, nil
}

func (r *repository) AddMember(ctx context.Context, member domain.Member) error {
	return r.db.WithContext(ctx).Create(&member).Error
}

func (r *repository) MemberRole(ctx context.Context, orgID, userID snowflake.ID) (string, error) {
	var member domain.Member
	err := r.db.WithContext(ctx).
		First(&member, "org_id = ? AND user_id = ?", orgID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return member.Role, nil
}

// ReserveCredits is a conditional update so two concurrent requests cannot
// both spend the same balance: the WHERE clause re-checks the funds.
func (r *repository) ReserveCredits(ctx context.Context, orgID snowflake.ID, credits int64) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE organizations
		 SET credit_balance = credit_balance - ?, updated_at = ?
		 WHERE id = ? AND credit_balance >= ?`,
		credits, time.Now().UTC(), orgID, credits,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) RefundCredits(ctx context.Context, orgID snowflake.ID, credits int64) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE organizations
		 SET credit_balance = credit_balance + ?, updated_at = ?
		 WHERE id = ?`,
		credits, time.Now().UTC(), orgID,
	).Error
}

func (r *repository) ReserveTrialSearch(ctx context.Context, orgID snowflake.ID, limit int) (bool, error) {
	result := r.db.WithContext(ctx).Exec(
		`UPDATE organizations
		 SET trial_searches_used = trial_searches_used + 1, updated_at = ?
		 WHERE id = ? AND trial_searches_used < ?`,
		time.Now().UTC(), orgID, limit,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) RefundTrialSearch(ctx context.Context, orgID snowflake.ID) error {
	return r.db.WithContext(ctx).Exec(
		`UPDATE organizations
		 SET trial_searches_used = trial_searches_used - 1, updated_at = ?
		 WHERE id = ? AND trial_searches_used > 0`,
		time.Now().UTC(), orgID,
	).Error
}
