package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/strategydesk/internal/asset/domain"
	"github.com/wyfcoding/strategydesk/internal/asset/infrastructure/persistence"
	"github.com/wyfcoding/strategydesk/pkg/apperr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupService(t *testing.T) *AssetService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Asset{}))
	return NewAssetService(persistence.NewAssetRepository(db))
}

func strPtr(s string) *string { return &s }

func appleEquity() CreateAssetCommand {
	return CreateAssetCommand{
		Symbol:    "AAPL",
		Name:      "Apple Inc.",
		Exchange:  "NASDAQ",
		AssetType: domain.AssetTypeEquity,
	}
}

func TestCreateGeneratesUUIDAndDefaults(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	asset, err := svc.Create(ctx, appleEquity())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, asset.ID)
	assert.Equal(t, "USD", asset.Currency)
	assert.True(t, asset.IsActive)

	got, err := svc.Get(ctx, asset.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, "NASDAQ", got.Exchange)
}

func TestExchangeSymbolPairUnique(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, appleEquity())
	require.NoError(t, err)

	_, err = svc.Create(ctx, appleEquity())
	require.Error(t, err)
	assert.True(t, apperr.IsDuplicate(err))
	assert.EqualError(t, err, "asset with this exchange+symbol already exists")

	// 相同代码在其他交易所允许
	cmd := appleEquity()
	cmd.Exchange = "XETRA"
	cmd.Currency = strPtr("EUR")
	asset, err := svc.Create(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, "EUR", asset.Currency)
}

func TestCreateRejectsInvalidAssetType(t *testing.T) {
	svc := setupService(t)

	cmd := appleEquity()
	cmd.AssetType = domain.AssetType("stock")
	_, err := svc.Create(context.Background(), cmd)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestCreateRejectsBadLengths(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	cmd := appleEquity()
	cmd.Symbol = ""
	_, err := svc.Create(ctx, cmd)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	cmd = appleEquity()
	cmd.Currency = strPtr("E")
	_, err = svc.Create(ctx, cmd)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestUpdatePartialPatch(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	asset, err := svc.Create(ctx, appleEquity())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, asset.ID, UpdateAssetPatch{
		Name:     strPtr("Apple Inc. (Common Stock)"),
		MetaJSON: strPtr(`{"sector":"technology"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc. (Common Stock)", updated.Name)
	require.NotNil(t, updated.MetaJSON)
	assert.Equal(t, "AAPL", updated.Symbol)
	assert.Equal(t, "NASDAQ", updated.Exchange)
	assert.Equal(t, "USD", updated.Currency)
}

func TestUpdateIntoExistingPairRejected(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, appleEquity())
	require.NoError(t, err)

	cmd := appleEquity()
	cmd.Symbol = "MSFT"
	cmd.Name = "Microsoft Corporation"
	msft, err := svc.Create(ctx, cmd)
	require.NoError(t, err)

	_, err = svc.Update(ctx, msft.ID, UpdateAssetPatch{Symbol: strPtr("AAPL")})
	require.Error(t, err)
	assert.True(t, apperr.IsDuplicate(err))
}

func TestGetMissAndDeleteMiss(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	got, err := svc.Get(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)

	err = svc.Delete(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestListFilterByExchangeAndType(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, appleEquity())
	require.NoError(t, err)

	cmd := CreateAssetCommand{
		Symbol:    "BTC-USD",
		Name:      "Bitcoin",
		Exchange:  "COINBASE",
		AssetType: domain.AssetTypeCrypto,
	}
	_, err = svc.Create(ctx, cmd)
	require.NoError(t, err)

	crypto := domain.AssetTypeCrypto
	items, total, err := svc.List(ctx, domain.AssetQuery{AssetType: &crypto})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "BTC-USD", items[0].Symbol)
}
