package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/algotutor-api/internal/models"
)

func setupActivityTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ActivityLog{}))
	return db
}

func TestActivityLogRepositoryFiltersAndPaginates(t *testing.T) {
	repo := NewActivityLogRepository(setupActivityTestDB(t))
	ctx := context.Background()

	entries := []models.ActivityLog{
		{ActorID: "admin-1", ActorRole: "admin", Action: "principal.approved", EntityType: "principal", EntityID: "t1"},
		{ActorID: "t1", ActorRole: "teacher", Action: "lesson.created", EntityType: "lesson", EntityID: "l1", Metadata: datatypes.JSONMap{"slug": "loops"}},
		{ActorID: "t1", ActorRole: "teacher", Action: "lesson.updated", EntityType: "lesson", EntityID: "l1"},
	}
	for i := range entries {
		require.NoError(t, repo.Create(ctx, &entries[i]))
		require.NotZero(t, entries[i].ID)
	}

	items, total, err := repo.List(ctx, ActivityLogFilter{ActorID: "t1"})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, items, 2)

	items, total, err = repo.List(ctx, ActivityLogFilter{EntityType: "lesson", Page: 2, PageSize: 1})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, items, 1)

	items, _, err = repo.List(ctx, ActivityLogFilter{Action: "lesson.created"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "loops", items[0].Metadata["slug"])
}

func TestActivityLogRepositorySince(t *testing.T) {
	repo := NewActivityLogRepository(setupActivityTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	old := models.ActivityLog{ActorRole: "system", Action: "news.created", EntityType: "news", CreatedAt: now.Add(-48 * time.Hour)}
	recent := models.ActivityLog{ActorRole: "system", Action: "news.updated", EntityType: "news", CreatedAt: now}
	require.NoError(t, repo.Create(ctx, &old))
	require.NoError(t, repo.Create(ctx, &recent))

	items, total, err := repo.List(ctx, ActivityLogFilter{Since: now.Add(-time.Hour)})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "news.updated", items[0].Action)

	items, total, err = repo.List(ctx, ActivityLogFilter{EntityType: "lesson"})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, items)
}
