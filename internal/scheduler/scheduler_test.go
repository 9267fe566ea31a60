package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/evoleadai/evolead/internal/clock"
	"github.com/evoleadai/evolead/internal/config"
	searchdomain "github.com/evoleadai/evolead/internal/search/domain"
	searchrepository "github.com/evoleadai/evolead/internal/search/repository"
	cachedomain "github.com/evoleadai/evolead/internal/searchcache/domain"
	cacherepository "github.com/evoleadai/evolead/internal/searchcache/repository"
	cacheservice "github.com/evoleadai/evolead/internal/searchcache/service"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupScheduler(t *testing.T) (*Scheduler, *gorm.DB, *snowflake.Node, *clock.FakeClock) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&searchdomain.UserSearch{}, &cachedomain.Entry{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	plans := config.NewStaticPlanConfigHolder(config.DefaultPlanConfig())
	log := zap.NewNop()

	s := New(Params{
		SearchRepo: searchrepository.NewRepository(db),
		Cache:      cacheservice.NewService(cacherepository.NewRepository(db), plans, clk, node, log),
		Clock:      clk,
		Log:        log,
	})
	return s, db, node, clk
}

func TestRunOnceSweepsStaleSearches(t *testing.T) {
	s, db, node, clk := setupScheduler(t)

	stale := searchdomain.UserSearch{
		ID: node.Generate(), OrgID: node.Generate(), UserID: node.Generate(),
		Status:    searchdomain.StatusProcessing,
		CreatedAt: clk.Now().Add(-time.Hour),
		UpdatedAt: clk.Now().Add(-time.Hour),
	}
	fresh := searchdomain.UserSearch{
		ID: node.Generate(), OrgID: node.Generate(), UserID: node.Generate(),
		Status:    searchdomain.StatusProcessing,
		CreatedAt: clk.Now(),
		UpdatedAt: clk.Now(),
	}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Create(&fresh).Error)

	s.RunOnce(context.Background())

	var swept searchdomain.UserSearch
	require.NoError(t, db.First(&swept, "id = ?", stale.ID).Error)
	assert.Equal(t, searchdomain.StatusFailed, swept.Status)
	assert.Equal(t, "search timed out", swept.ErrorMessage)

	var untouched searchdomain.UserSearch
	require.NoError(t, db.First(&untouched, "id = ?", fresh.ID).Error)
	assert.Equal(t, searchdomain.StatusProcessing, untouched.Status)
}

func TestRunOncePurgesExpiredCacheEntries(t *testing.T) {
	s, db, node, clk := setupScheduler(t)

	require.NoError(t, db.Create(&cachedomain.Entry{
		ID:        node.Generate(),
		QueryHash: "expired",
		Results:   datatypes.JSON("[]"),
		ExpiresAt: clk.Now().Add(-time.Minute),
		CreatedAt: clk.Now().Add(-25 * time.Hour),
	}).Error)
	require.NoError(t, db.Create(&cachedomain.Entry{
		ID:        node.Generate(),
		QueryHash: "live",
		Results:   datatypes.JSON("[]"),
		ExpiresAt: clk.Now().Add(time.Hour),
		CreatedAt: clk.Now(),
	}).Error)

	s.RunOnce(context.Background())

	var hashes []string
	require.NoError(t, db.Model(&cachedomain.Entry{}).Pluck("query_hash", &hashes).Error)
	assert.Equal(t, []string{"live"}, hashes)
}

func TestStopWithoutStart(t *testing.T) {
	s, _, _, _ := setupScheduler(t)
	assert.NoError(t, s.Stop(context.Background()))
}
