package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/strategydesk/pkg/apperr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Score int    `gorm:"not null;default:0"`
}

type widgetQuery struct {
	MinScore *int
	Limit    int
	Offset   int
	OrderBy  string
	OrderDir string
}

func (q widgetQuery) ApplyFilters(tx *gorm.DB) *gorm.DB {
	if q.MinScore != nil {
		tx = tx.Where("score >= ?", *q.MinScore)
	}
	return tx
}

func (q widgetQuery) OrderClause() (string, string) { return q.OrderBy, q.OrderDir }

func (q widgetQuery) Page() (int, int) { return q.Limit, q.Offset }

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&widget{}))
	return db
}

func newWidgetRepo(db *gorm.DB) *Repository[widget] {
	return New[widget](db, Options{
		DuplicateMessage:  "widget already exists",
		OrderableFields:   []string{"name", "score"},
		DefaultOrderField: "name",
	})
}

func TestCreateThenGet(t *testing.T) {
	repo := newWidgetRepo(setupDB(t))
	ctx := context.Background()

	w := &widget{Name: "alpha", Score: 7}
	require.NoError(t, repo.Create(ctx, w))
	assert.NotZero(t, w.ID)

	got, err := repo.Get(ctx, w.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alpha", got.Name)
	assert.Equal(t, 7, got.Score)
}

func TestGetMissReturnsNilNil(t *testing.T) {
	repo := newWidgetRepo(setupDB(t))

	got, err := repo.Get(context.Background(), uint(999))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCreateDuplicateTranslated(t *testing.T) {
	db := setupDB(t)
	repo := newWidgetRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &widget{Name: "alpha"}))
	err := repo.Create(ctx, &widget{Name: "alpha"})
	require.Error(t, err)
	assert.True(t, apperr.IsDuplicate(err))
	assert.EqualError(t, err, "widget already exists")

	var count int64
	require.NoError(t, db.Model(&widget{}).Where("name = ?", "alpha").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListAndCountTotalIgnoresPagination(t *testing.T) {
	repo := newWidgetRepo(setupDB(t))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, repo.Create(ctx, &widget{Name: fmt.Sprintf("w%02d", i), Score: i}))
	}

	// total 不随 limit/offset 变化
	for _, offset := range []int{0, 3, 8, 12} {
		items, total, err := repo.ListAndCount(ctx, widgetQuery{Limit: 3, Offset: offset, OrderBy: "name", OrderDir: "asc"})
		require.NoError(t, err)
		assert.Equal(t, int64(10), total)

		want := 10 - offset
		if want < 0 {
			want = 0
		}
		if want > 3 {
			want = 3
		}
		assert.Len(t, items, want, "offset=%d", offset)
	}
}

func TestListAndCountAppliesFilters(t *testing.T) {
	repo := newWidgetRepo(setupDB(t))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, repo.Create(ctx, &widget{Name: fmt.Sprintf("w%02d", i), Score: i}))
	}

	minScore := 6
	items, total, err := repo.ListAndCount(ctx, widgetQuery{MinScore: &minScore, Limit: 50, OrderBy: "score", OrderDir: "desc"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, items, 4)
	assert.Equal(t, 9, items[0].Score)
	assert.Equal(t, 6, items[3].Score)
}

func TestListAndCountOrderWhitelistFallback(t *testing.T) {
	repo := newWidgetRepo(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &widget{Name: "beta"}))
	require.NoError(t, repo.Create(ctx, &widget{Name: "alpha"}))

	// 白名单外的字段回退到默认排序（name asc）
	items, _, err := repo.ListAndCount(ctx, widgetQuery{Limit: 50, OrderBy: "id; DROP TABLE widgets", OrderDir: "asc"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "alpha", items[0].Name)
}

func TestUpdatesPartialPatch(t *testing.T) {
	repo := newWidgetRepo(setupDB(t))
	ctx := context.Background()

	w := &widget{Name: "alpha", Score: 1}
	require.NoError(t, repo.Create(ctx, w))

	require.NoError(t, repo.Updates(ctx, w, map[string]any{"score": 42}))

	got, err := repo.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Name)
	assert.Equal(t, 42, got.Score)
}

func TestUpdatesDuplicateTranslated(t *testing.T) {
	repo := newWidgetRepo(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &widget{Name: "alpha"}))
	w := &widget{Name: "beta"}
	require.NoError(t, repo.Create(ctx, w))

	err := repo.Updates(ctx, w, map[string]any{"name": "alpha"})
	require.Error(t, err)
	assert.True(t, apperr.IsDuplicate(err))
}

func TestDelete(t *testing.T) {
	repo := newWidgetRepo(setupDB(t))
	ctx := context.Background()

	w := &widget{Name: "alpha"}
	require.NoError(t, repo.Create(ctx, w))
	require.NoError(t, repo.Delete(ctx, w))

	got, err := repo.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
