package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/organization/domain"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db    *gorm.DB
	repo  domain.Repository
	genID *snowflake.Node
	log   *zap.Logger
}

func NewService(db *gorm.DB, repo domain.Repository, genID *snowflake.Node, log *zap.Logger) domain.Service {
	return &service{db: db, repo: repo, genID: genID, log: log}
}

func (s *service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Organization, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, name string, plan domain.Plan, ownerID snowflake.ID) (*domain.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if !plan.Known() {
		return nil, domain.ErrUnknownPlan
	}

	now := time.Now().UTC()
	org := domain.Organization{
		ID:        s.genID.Generate(),
		Name:      name,
		Slug:      slug.Make(name),
		Plan:      plan,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, org); err != nil {
			return err
		}
		return repo.AddMember(ctx, domain.Member{
			ID:        s.genID.Generate(),
			OrgID:     org.ID,
			UserID:    ownerID,
			Role:      domain.RoleOwner,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("organization created",
		zap.String("org_id", org.ID.String()),
		zap.String("plan", string(org.Plan)),
	)
	return &org, nil
}

func (s *service) MemberRole(ctx context.Context, orgID, userID snowflake.ID) (string, error) {
	role, err := s.repo.MemberRole(ctx, orgID, userID)
	if err != nil {
		return "", err
	}
	if role == "" {
		return "", domain.ErrNotMember
	}
	return role, nil
}

func (s *service) UsageSummary(ctx context.Context, orgID snowflake.ID, trialLimit int) (*domain.UsageSummary, error) {
	org, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	summary := &domain.UsageSummary{
		Plan:              org.Plan,
		CreditBalance:     org.CreditBalance,
		TrialSearchesUsed: org.TrialSearchesUsed,
		OrganizationID:    org.ID.String(),
	}
	if org.Plan == domain.PlanTrial {
		remaining := trialLimit - org.TrialSearchesUsed
		if remaining < 0 {
			remaining = 0
		}
		summary.TrialSearchesRemaining = &remaining
	}
	return summary, nil
}
