package authorization

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	orgdomain "github.com/evoleadai/evolead/internal/organization/domain"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupAuthz(t *testing.T) (Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&orgdomain.Organization{}, &orgdomain.Member{}))

	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := NewService(Params{DB: db, Log: zap.NewNop(), Enforcer: enforcer})
	return svc, db, node
}

func addMember(t *testing.T, db *gorm.DB, node *snowflake.Node, orgID snowflake.ID, role string) snowflake.ID {
	t.Helper()
	userID := node.Generate()
	require.NoError(t, db.Create(&orgdomain.Member{
		ID:     node.Generate(),
		OrgID:  orgID,
		UserID: userID,
		Role:   role,
	}).Error)
	return userID
}

func TestAuthorizeByRole(t *testing.T) {
	svc, db, node := setupAuthz(t)
	ctx := context.Background()
	orgID := node.Generate()

	member := addMember(t, db, node, orgID, orgdomain.RoleMember)
	admin := addMember(t, db, node, orgID, orgdomain.RoleAdmin)
	owner := addMember(t, db, node, orgID, orgdomain.RoleOwner)

	actor := func(id snowflake.ID) string { return "user:" + id.String() }
	org := orgID.String()

	// Members can work with leads but cannot export or read billing.
	assert.NoError(t, svc.Authorize(ctx, actor(member), org, ObjectLead, ActionLeadGenerate))
	assert.NoError(t, svc.Authorize(ctx, actor(member), org, ObjectLead, ActionLeadView))
	assert.NoError(t, svc.Authorize(ctx, actor(member), org, ObjectSearch, ActionSearchView))
	assert.ErrorIs(t, svc.Authorize(ctx, actor(member), org, ObjectLeadExport, ActionLeadExportRun), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, actor(member), org, ObjectUsage, ActionUsageView), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, actor(member), org, ObjectOrganization, ActionOrganizationManage), ErrForbidden)

	// Admins add exports and usage.
	assert.NoError(t, svc.Authorize(ctx, actor(admin), org, ObjectLeadExport, ActionLeadExportRun))
	assert.NoError(t, svc.Authorize(ctx, actor(admin), org, ObjectUsage, ActionUsageView))
	assert.ErrorIs(t, svc.Authorize(ctx, actor(admin), org, ObjectOrganization, ActionOrganizationManage), ErrForbidden)

	// Owners hold everything.
	assert.NoError(t, svc.Authorize(ctx, actor(owner), org, ObjectOrganization, ActionOrganizationManage))
}

func TestAuthorizeScopedToOrganization(t *testing.T) {
	svc, db, node := setupAuthz(t)
	ctx := context.Background()

	homeOrg := node.Generate()
	otherOrg := node.Generate()
	member := addMember(t, db, node, homeOrg, orgdomain.RoleMember)

	assert.NoError(t, svc.Authorize(ctx, "user:"+member.String(), homeOrg.String(), ObjectLead, ActionLeadView))
	assert.ErrorIs(t, svc.Authorize(ctx, "user:"+member.String(), otherOrg.String(), ObjectLead, ActionLeadView), ErrForbidden)
}

func TestAuthorizeSystemActor(t *testing.T) {
	svc, _, node := setupAuthz(t)
	ctx := context.Background()
	org := node.Generate().String()

	assert.NoError(t, svc.Authorize(ctx, "system", org, ObjectLead, ActionLeadUpdate))
	assert.NoError(t, svc.Authorize(ctx, "system", org, ObjectSearch, ActionSearchView))
	assert.ErrorIs(t, svc.Authorize(ctx, "system", org, ObjectLeadExport, ActionLeadExportRun), ErrForbidden)
}

func TestAuthorizeRejectsMalformedInput(t *testing.T) {
	svc, db, node := setupAuthz(t)
	ctx := context.Background()
	orgID := node.Generate()
	member := addMember(t, db, node, orgID, orgdomain.RoleMember)

	assert.ErrorIs(t, svc.Authorize(ctx, "", orgID.String(), ObjectLead, ActionLeadView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, "robot:1", orgID.String(), ObjectLead, ActionLeadView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, "user:abc", orgID.String(), ObjectLead, ActionLeadView), ErrInvalidActor)
	assert.ErrorIs(t, svc.Authorize(ctx, "user:"+member.String(), "", ObjectLead, ActionLeadView), ErrInvalidOrganization)
	assert.ErrorIs(t, svc.Authorize(ctx, "user:"+member.String(), orgID.String(), "", ActionLeadView), ErrInvalidObject)
	assert.ErrorIs(t, svc.Authorize(ctx, "user:"+member.String(), orgID.String(), ObjectLead, ""), ErrInvalidAction)
}

func TestAuthorizeFollowsRoleChanges(t *testing.T) {
	svc, db, node := setupAuthz(t)
	ctx := context.Background()
	orgID := node.Generate()
	userID := addMember(t, db, node, orgID, orgdomain.RoleMember)
	actor := "user:" + userID.String()

	assert.ErrorIs(t, svc.Authorize(ctx, actor, orgID.String(), ObjectUsage, ActionUsageView), ErrForbidden)

	require.NoError(t, db.Model(&orgdomain.Member{}).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		Update("role", orgdomain.RoleAdmin).Error)

	assert.NoError(t, svc.Authorize(ctx, actor, orgID.String(), ObjectUsage, ActionUsageView))
}
