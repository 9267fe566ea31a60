package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	organizationdomain "github.com/evoleadai/evolead/internal/organization/domain"
	"gorm.io/gorm"
)

const (
	defaultOrgName = "Main"
	defaultOrgSlug = "main"
)

// EnsureDefaultOrg seeds the bootstrap organization so a fresh install
// can take requests immediately.
func EnsureDefaultOrg(db *gorm.DB) error {
	return ensure(db, 0)
}

// EnsureDefaultOrgWithID seeds the bootstrap organization under a fixed
// id, for deployments that pin DEFAULT_ORG.
func EnsureDefaultOrgWithID(db *gorm.DB, id int64) error {
	return ensure(db, snowflake.ID(id))
}

func ensure(db *gorm.DB, id snowflake.ID) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing organizationdomain.Organization
		err := tx.WithContext(ctx).
			Where("slug = ?", defaultOrgSlug).
			First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if id == 0 {
			id = node.Generate()
		}
		now := time.Now().UTC()
		org := organizationdomain.Organization{
			ID:        id,
			Name:      defaultOrgName,
			Slug:      defaultOrgSlug,
			Plan:      organizationdomain.PlanTrial,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return tx.WithContext(ctx).Create(&org).Error
	})
}
