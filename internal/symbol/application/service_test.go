package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/strategydesk/internal/symbol/domain"
	"github.com/wyfcoding/strategydesk/internal/symbol/infrastructure/persistence"
	"github.com/wyfcoding/strategydesk/pkg/apperr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupService(t *testing.T) *SymbolService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Symbol{}))
	return NewSymbolService(persistence.NewSymbolRepository(db))
}

func strPtr(s string) *string { return &s }

func TestCreateThenGet(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateSymbolCommand{Symbol: "AAPL", Name: strPtr("Apple")})
	require.NoError(t, err)
	assert.True(t, created.Active)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "AAPL", got.Symbol)
}

func TestCreateDuplicateSymbol(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateSymbolCommand{Symbol: "AAPL"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateSymbolCommand{Symbol: "AAPL"})
	require.Error(t, err)
	assert.True(t, apperr.IsDuplicate(err))
	assert.EqualError(t, err, "symbol already exists")
}

func TestCreateRejectsBadLengths(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateSymbolCommand{Symbol: ""})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.Create(ctx, CreateSymbolCommand{Symbol: "VERYLONGSYMBOLNAME-12345"})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestListDefaultOrderIsSymbolAsc(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	for _, code := range []string{"MSFT", "AAPL", "GOOG"} {
		_, err := svc.Create(ctx, CreateSymbolCommand{Symbol: code})
		require.NoError(t, err)
	}

	items, total, err := svc.List(ctx, domain.SymbolQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 3)
	assert.Equal(t, "AAPL", items[0].Symbol)
	assert.Equal(t, "MSFT", items[2].Symbol)
}
