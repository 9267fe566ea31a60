package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/lead/domain"
	searchdomain "github.com/evoleadai/evolead/internal/search/domain"
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
	require.NoError(t, db.AutoMigrate(&domain.Lead{}, &domain.Metadata{}, &searchdomain.UserSearch{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewRepository(db), db, node
}

func seedLeads(t *testing.T, repo domain.Repository, node *snowflake.Node, orgID, searchID snowflake.ID) []domain.Lead {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	leads := []domain.Lead{
		{ID: node.Generate(), OrgID: orgID, SearchID: searchID, BusinessName: "Sunrise Bakery", Email: "hi@sunrise.example.com", Website: "https://sunrise.example.com", ConfidenceScore: 95, CreatedAt: base},
		{ID: node.Generate(), OrgID: orgID, SearchID: searchID, BusinessName: "Moonlight Cafe", ConfidenceScore: 60, CreatedAt: base.Add(time.Second)},
		{ID: node.Generate(), OrgID: orgID, SearchID: searchID, BusinessName: "Alpine Deli", Email: "team@alpine.example.com", ConfidenceScore: 80, CreatedAt: base.Add(2 * time.Second)},
	}
	require.NoError(t, repo.BatchInsert(context.Background(), leads))
	return leads
}

func TestListBySearchSortsByConfidence(t *testing.T) {
	repo, _, node := setupRepo(t)
	orgID, searchID, viewer := node.Generate(), node.Generate(), node.Generate()
	seedLeads(t, repo, node, orgID, searchID)

	views, total, err := repo.ListBySearch(context.Background(), viewer, searchID, domain.SortByConfidence, true, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, views, 3)
	assert.Equal(t, "Sunrise Bakery", views[0].BusinessName)
	assert.Equal(t, "Alpine Deli", views[1].BusinessName)
	assert.Equal(t, "Moonlight Cafe", views[2].BusinessName)
}

func TestListBySearchJoinsViewerMetadata(t *testing.T) {
	repo, _, node := setupRepo(t)
	orgID, searchID := node.Generate(), node.Generate()
	viewer, other := node.Generate(), node.Generate()
	leads := seedLeads(t, repo, node, orgID, searchID)

	require.NoError(t, repo.UpsertMetadata(context.Background(), domain.Metadata{
		ID:         node.Generate(),
		LeadID:     leads[0].ID,
		UserID:     viewer,
		IsFavorite: true,
		Notes:      "call monday",
	}))
	require.NoError(t, repo.UpsertMetadata(context.Background(), domain.Metadata{
		ID:         node.Generate(),
		LeadID:     leads[1].ID,
		UserID:     other,
		IsFavorite: true,
	}))

	views, _, err := repo.ListBySearch(context.Background(), viewer, searchID, domain.SortByConfidence, true, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.True(t, views[0].IsFavorite)
	assert.Equal(t, "call monday", views[0].Notes)
	assert.False(t, views[2].IsFavorite, "another viewer's favorite must not leak")
	assert.Empty(t, views[2].Notes)
}

func TestListFilters(t *testing.T) {
	repo, db, node := setupRepo(t)
	orgID, searchID, viewer := node.Generate(), node.Generate(), node.Generate()
	seedLeads(t, repo, node, orgID, searchID)

	otherSearch := node.Generate()
	require.NoError(t, repo.BatchInsert(context.Background(), []domain.Lead{
		{ID: node.Generate(), OrgID: orgID, SearchID: otherSearch, BusinessName: "Harbor Grill", ConfidenceScore: 70, CreatedAt: time.Now().UTC()},
	}))
	require.NoError(t, db.Create(&searchdomain.UserSearch{
		ID: otherSearch, OrgID: orgID, UserID: viewer, Status: searchdomain.StatusCompleted,
	}).Error)

	t.Run("by search id", func(t *testing.T) {
		views, total, err := repo.List(context.Background(), viewer, domain.ListFilter{SearchID: searchID}, pagination.Params{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, views, 3)
	})

	t.Run("by requesting user via their searches", func(t *testing.T) {
		views, total, err := repo.List(context.Background(), viewer, domain.ListFilter{OrgID: orgID, UserID: viewer}, pagination.Params{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, views, 1)
		assert.Equal(t, "Harbor Grill", views[0].BusinessName)
	})

	t.Run("text search is case-insensitive", func(t *testing.T) {
		views, total, err := repo.List(context.Background(), viewer, domain.ListFilter{OrgID: orgID, Search: "SUNRISE"}, pagination.Params{Page: 1, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, views, 1)
		assert.Equal(t, "Sunrise Bakery", views[0].BusinessName)
	})

	t.Run("pagination bounds the page", func(t *testing.T) {
		views, total, err := repo.List(context.Background(), viewer, domain.ListFilter{OrgID: orgID}, pagination.Params{Page: 2, Limit: 3})
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		assert.Len(t, views, 1)
	})
}

func TestMetadataUpsertAndDelete(t *testing.T) {
	repo, _, node := setupRepo(t)
	ctx := context.Background()
	orgID, searchID, viewer := node.Generate(), node.Generate(), node.Generate()
	leads := seedLeads(t, repo, node, orgID, searchID)

	meta := domain.Metadata{ID: node.Generate(), LeadID: leads[0].ID, UserID: viewer, IsFavorite: true}
	require.NoError(t, repo.UpsertMetadata(ctx, meta))

	// Same (lead, user) pair updates in place.
	meta.IsFavorite = false
	meta.Notes = "second pass"
	require.NoError(t, repo.UpsertMetadata(ctx, meta))

	stored, err := repo.GetMetadata(ctx, leads[0].ID, viewer)
	require.NoError(t, err)
	assert.False(t, stored.IsFavorite)
	assert.Equal(t, "second pass", stored.Notes)

	require.NoError(t, repo.DeleteMetadata(ctx, leads[0].ID, viewer))
	_, err = repo.GetMetadata(ctx, leads[0].ID, viewer)
	assert.ErrorIs(t, err, domain.ErrMetadataNotFound)

	err = repo.DeleteMetadata(ctx, leads[0].ID, viewer)
	assert.ErrorIs(t, err, domain.ErrMetadataNotFound)
}

func TestGetByIDNotFound(t *testing.T) {
	repo, _, node := setupRepo(t)
	_, err := repo.GetByID(context.Background(), node.Generate())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
