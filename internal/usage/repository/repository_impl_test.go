package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/usage/domain"
	"github.com/evoleadai/evolead/pkg/db/pagination"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) (domain.Repository, *gorm.DB, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Record{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewRepository(db), db, node
}

func TestAppendAndTotalCreditsUsed(t *testing.T) {
	repo, _, node := setupRepo(t)
	ctx := context.Background()
	orgID := node.Generate()
	otherOrg := node.Generate()

	for _, credits := range []int64{1, 3, 5} {
		require.NoError(t, repo.Append(ctx, domain.Record{
			ID:          node.Generate(),
			OrgID:       orgID,
			UserID:      node.Generate(),
			SearchID:    node.Generate(),
			Action:      domain.ActionLeadGeneration,
			CreditsUsed: credits,
			Units:       int(credits) * 100,
			CreatedAt:   time.Now(),
		}))
	}
	require.NoError(t, repo.Append(ctx, domain.Record{
		ID: node.Generate(), OrgID: otherOrg, CreditsUsed: 100, CreatedAt: time.Now(),
	}))

	total, err := repo.TotalCreditsUsed(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), total)
}

func TestTotalCreditsUsedEmptyOrg(t *testing.T) {
	repo, _, node := setupRepo(t)

	total, err := repo.TotalCreditsUsed(context.Background(), node.Generate())
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestListByOrgPaginatesNewestFirst(t *testing.T) {
	repo, _, node := setupRepo(t)
	ctx := context.Background()
	orgID := node.Generate()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, domain.Record{
			ID:          node.Generate(),
			OrgID:       orgID,
			Action:      domain.ActionLeadGeneration,
			CreditsUsed: int64(i + 1),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	records, total, err := repo.ListByOrg(ctx, orgID, pagination.Params{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, records, 2)
	assert.Equal(t, int64(5), records[0].CreditsUsed)
	assert.Equal(t, int64(4), records[1].CreditsUsed)

	records, _, err = repo.ListByOrg(ctx, orgID, pagination.Params{Page: 3, Limit: 2})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(1), records[0].CreditsUsed)
}
