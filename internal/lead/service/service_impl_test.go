package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/lead/domain"
	"github.com/evoleadai/evolead/internal/lead/repository"
	searchdomain "github.com/evoleadai/evolead/internal/search/domain"
	"github.com/evoleadai/evolead/pkg/db/pagination"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (domain.Service, domain.Repository, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Lead{}, &domain.Metadata{}, &searchdomain.UserSearch{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	repo := repository.NewRepository(db)
	return NewService(repo, node, zap.NewNop()), repo, node
}

func TestExportCSV(t *testing.T) {
	svc, repo, node := setupService(t)
	ctx := context.Background()
	orgID, searchID, viewer := node.Generate(), node.Generate(), node.Generate()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.BatchInsert(ctx, []domain.Lead{
		{
			ID:              node.Generate(),
			OrgID:           orgID,
			SearchID:        searchID,
			BusinessName:    `Joe's "Best", Inc.`,
			Email:           "joe@best.example.com",
			Phone:           "+1-555-000-1000",
			Website:         "https://best.example.com",
			ConfidenceScore: 95,
			CreatedAt:       created,
		},
		{
			ID:              node.Generate(),
			OrgID:           orgID,
			SearchID:        searchID,
			BusinessName:    "Plain Bagels",
			ConfidenceScore: 60,
			CreatedAt:       created.Add(time.Second),
		},
	}))

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(ctx, &buf, viewer, searchID))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Business Name", "Email", "Phone", "Website", "Confidence Score", "Created At"}, records[0])
	assert.Equal(t, []string{`Joe's "Best", Inc.`, "joe@best.example.com", "+1-555-000-1000", "https://best.example.com", "95", "2026-03-01T12:00:00Z"}, records[1])
	assert.Equal(t, "Plain Bagels", records[2][0])
	assert.Empty(t, records[2][1])
}

func TestExportCSVEmptySearch(t *testing.T) {
	svc, _, node := setupService(t)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), &buf, node.Generate(), node.Generate()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "header only")
}

func TestSetMetadataMergesPartialUpdates(t *testing.T) {
	svc, repo, node := setupService(t)
	ctx := context.Background()
	orgID, searchID, viewer := node.Generate(), node.Generate(), node.Generate()

	lead := domain.Lead{ID: node.Generate(), OrgID: orgID, SearchID: searchID, BusinessName: "Sunrise Bakery", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.BatchInsert(ctx, []domain.Lead{lead}))

	fav := true
	meta, err := svc.SetMetadata(ctx, lead.ID, viewer, domain.MetadataUpdate{IsFavorite: &fav})
	require.NoError(t, err)
	assert.True(t, meta.IsFavorite)

	// A notes-only update keeps the favorite flag.
	notes := "call monday"
	meta, err = svc.SetMetadata(ctx, lead.ID, viewer, domain.MetadataUpdate{Notes: &notes})
	require.NoError(t, err)
	assert.True(t, meta.IsFavorite)
	assert.Equal(t, "call monday", meta.Notes)

	stored, err := repo.GetMetadata(ctx, lead.ID, viewer)
	require.NoError(t, err)
	assert.True(t, stored.IsFavorite)
	assert.Equal(t, "call monday", stored.Notes)
}

func TestSetMetadataUnknownLead(t *testing.T) {
	svc, _, node := setupService(t)
	fav := true
	_, err := svc.SetMetadata(context.Background(), node.Generate(), node.Generate(), domain.MetadataUpdate{IsFavorite: &fav})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListNormalizesPagination(t *testing.T) {
	svc, repo, node := setupService(t)
	ctx := context.Background()
	orgID, searchID, viewer := node.Generate(), node.Generate(), node.Generate()

	leads := make([]domain.Lead, 0, 5)
	for i := 0; i < 5; i++ {
		leads = append(leads, domain.Lead{
			ID: node.Generate(), OrgID: orgID, SearchID: searchID,
			BusinessName: "Lead", ConfidenceScore: 50 + i,
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		})
	}
	require.NoError(t, repo.BatchInsert(ctx, leads))

	views, info, err := svc.List(ctx, viewer, domain.ListFilter{OrgID: orgID}, pagination.Params{Page: 0, Limit: -1})
	require.NoError(t, err)
	assert.Len(t, views, 5)
	assert.Equal(t, 1, info.Page)
	assert.Equal(t, 20, info.Limit, "invalid limits fall back to the default")
	assert.Equal(t, int64(5), info.Total)
}
