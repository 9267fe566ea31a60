package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/organization/domain"
	"github.com/evoleadai/evolead/internal/organization/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Organization{}, &domain.Member{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewService(db, repository.NewRepository(db), node, zap.NewNop()), db, node
}

func TestCreateOrganization(t *testing.T) {
	svc, db, node := setupService(t)
	ownerID := node.Generate()

	org, err := svc.Create(context.Background(), "Acme Lead Co", domain.PlanTrial, ownerID)
	require.NoError(t, err)
	assert.Equal(t, "acme-lead-co", org.Slug)

	role, err := svc.MemberRole(context.Background(), org.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, role)

	var count int64
	require.NoError(t, db.Model(&domain.Member{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateOrganizationValidation(t *testing.T) {
	svc, _, node := setupService(t)

	_, err := svc.Create(context.Background(), "   ", domain.PlanTrial, node.Generate())
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(context.Background(), "Acme", domain.Plan("platinum"), node.Generate())
	assert.ErrorIs(t, err, domain.ErrUnknownPlan)
}

func TestMemberRoleNotMember(t *testing.T) {
	svc, _, node := setupService(t)
	org, err := svc.Create(context.Background(), "Acme", domain.PlanTrial, node.Generate())
	require.NoError(t, err)

	_, err = svc.MemberRole(context.Background(), org.ID, node.Generate())
	assert.ErrorIs(t, err, domain.ErrNotMember)
}

func TestUsageSummaryTrial(t *testing.T) {
	svc, db, node := setupService(t)
	org, err := svc.Create(context.Background(), "Acme", domain.PlanTrial, node.Generate())
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.Organization{}).Where("id = ?", org.ID).Update("trial_searches_used", 1).Error)

	summary, err := svc.UsageSummary(context.Background(), org.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, domain.PlanTrial, summary.Plan)
	assert.Equal(t, 1, summary.TrialSearchesUsed)
	require.NotNil(t, summary.TrialSearchesRemaining)
	assert.Equal(t, 1, *summary.TrialSearchesRemaining)
}

func TestUsageSummaryTrialClampsAtZero(t *testing.T) {
	svc, db, node := setupService(t)
	org, err := svc.Create(context.Background(), "Acme", domain.PlanTrial, node.Generate())
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.Organization{}).Where("id = ?", org.ID).Update("trial_searches_used", 5).Error)

	summary, err := svc.UsageSummary(context.Background(), org.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, summary.TrialSearchesRemaining)
	assert.Zero(t, *summary.TrialSearchesRemaining)
}

func TestUsageSummaryPaidOmitsTrialCounter(t *testing.T) {
	svc, db, node := setupService(t)
	org, err := svc.Create(context.Background(), "Acme", domain.PlanGrowth, node.Generate())
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.Organization{}).Where("id = ?", org.ID).Update("credit_balance", 42).Error)

	summary, err := svc.UsageSummary(context.Background(), org.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(42), summary.CreditBalance)
	assert.Nil(t, summary.TrialSearchesRemaining)
}
