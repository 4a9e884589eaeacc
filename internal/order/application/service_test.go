package application

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/strategydesk/internal/order/domain"
	"github.com/wyfcoding/strategydesk/internal/order/infrastructure/persistence"
	"github.com/wyfcoding/strategydesk/pkg/apperr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(*gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type recordingPublisher struct {
	events []domain.OrderEvent
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, event domain.OrderEvent) error {
	p.events = append(p.events, event)
	return nil
}

func setupService(t *testing.T) (*OrderService, *recordingPublisher, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Order{}))

	publisher := &recordingPublisher{}
	svc := NewOrderService(persistence.NewOrderRepository(db), gormTxRunner{db: db}, publisher, nil)
	return svc, publisher, db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func marketOrder() PlaceOrderCommand {
	return PlaceOrderCommand{
		SymbolID:       1,
		Side:           domain.SideBuy,
		Type:           domain.TypeMarket,
		TimeInForce:    domain.TIFDay,
		Quantity:       dec("10"),
		QuantityType:   domain.QuantityUnits,
		PositionEffect: domain.PositionAuto,
		Broker:         domain.BrokerPaper,
	}
}

func TestCreateMarketOrder(t *testing.T) {
	svc, publisher, _ := setupService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, marketOrder())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, order.Status)
	assert.True(t, order.Paper)
	assert.True(t, order.FilledQuantity.IsZero())

	got, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Quantity.Equal(dec("10")))

	require.Len(t, publisher.events, 1)
	assert.Equal(t, "order.created", publisher.events[0].Type)
	assert.Equal(t, order.ID, publisher.events[0].OrderID)
}

func TestCreateLimitRequiresPrice(t *testing.T) {
	svc, _, _ := setupService(t)

	cmd := marketOrder()
	cmd.Type = domain.TypeLimit
	_, err := svc.Create(context.Background(), cmd)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	cmd.Price = decPtr("101.50")
	_, err = svc.Create(context.Background(), cmd)
	assert.NoError(t, err)
}

func TestCreateStopRequiresStopPrice(t *testing.T) {
	svc, _, _ := setupService(t)

	cmd := marketOrder()
	cmd.Type = domain.TypeStop
	_, err := svc.Create(context.Background(), cmd)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestCreateStopLimitRequiresBothPrices(t *testing.T) {
	svc, _, _ := setupService(t)

	cmd := marketOrder()
	cmd.Type = domain.TypeStopLimit
	cmd.Price = decPtr("100")
	_, err := svc.Create(context.Background(), cmd)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	cmd.StopPrice = decPtr("99")
	_, err = svc.Create(context.Background(), cmd)
	assert.NoError(t, err)
}

func TestCreateImmediateTIFOnlyForMarketOrLimit(t *testing.T) {
	svc, _, _ := setupService(t)

	cmd := marketOrder()
	cmd.Type = domain.TypeStop
	cmd.StopPrice = decPtr("99")
	cmd.TimeInForce = domain.TIFFOK
	_, err := svc.Create(context.Background(), cmd)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	cmd = marketOrder()
	cmd.Type = domain.TypeLimit
	cmd.Price = decPtr("100")
	cmd.TimeInForce = domain.TIFFOK
	_, err = svc.Create(context.Background(), cmd)
	assert.NoError(t, err)
}

func TestCreateQuantityMustBePositive(t *testing.T) {
	svc, _, _ := setupService(t)

	cmd := marketOrder()
	cmd.Quantity = dec("0")
	_, err := svc.Create(context.Background(), cmd)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	cmd.Quantity = dec("-5")
	_, err = svc.Create(context.Background(), cmd)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestCreateIdempotencyByClientOrderID(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	cmd := marketOrder()
	cmd.AccountID = strPtr("acct-1")
	cmd.ClientOrderID = strPtr("client-42")

	first, err := svc.Create(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, first.Status)

	_, err = svc.Create(ctx, cmd)
	require.Error(t, err)
	assert.True(t, apperr.IsDuplicate(err))
	assert.EqualError(t, err, "order with this client_order_id already exists for this account")

	var count int64
	require.NoError(t, db.Model(&domain.Order{}).
		Where("account_id = ? AND client_order_id = ?", "acct-1", "client-42").
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateSameClientOrderIDDifferentAccounts(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	cmd := marketOrder()
	cmd.AccountID = strPtr("acct-1")
	cmd.ClientOrderID = strPtr("client-42")
	_, err := svc.Create(ctx, cmd)
	require.NoError(t, err)

	cmd.AccountID = strPtr("acct-2")
	_, err = svc.Create(ctx, cmd)
	assert.NoError(t, err)
}

func TestUpdateMutableFields(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	cmd := marketOrder()
	cmd.Type = domain.TypeLimit
	cmd.Price = decPtr("100")
	order, err := svc.Create(ctx, cmd)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, order.ID, UpdateOrderPatch{
		Price: decPtr("105"),
		Notes: strPtr("moved up"),
	})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(dec("105")))
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "moved up", *updated.Notes)

	// 未出现在补丁中的字段保持不变
	assert.True(t, updated.Quantity.Equal(dec("10")))
	assert.Equal(t, domain.SideBuy, updated.Side)
	assert.Equal(t, domain.StatusNew, updated.Status)
}

func TestUpdateQuantityIsImmutable(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, marketOrder())
	require.NoError(t, err)

	_, err = svc.Update(ctx, order.ID, UpdateOrderPatch{Quantity: decPtr("20")})
	require.Error(t, err)
	assert.True(t, apperr.IsImmutable(err))
	assert.EqualError(t, err, "cannot change quantity after order creation")
}

func TestUpdateQuantityImmutableEvenAfterCancel(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, marketOrder())
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, order.ID)
	require.NoError(t, err)

	// quantity 检查优先于状态门控
	_, err = svc.Update(ctx, order.ID, UpdateOrderPatch{Quantity: decPtr("20")})
	require.Error(t, err)
	assert.True(t, apperr.IsImmutable(err))
}

func TestUpdateRejectedAfterCancel(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, marketOrder())
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, order.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, order.ID, UpdateOrderPatch{Notes: strPtr("too late")})
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidState(err))
	assert.EqualError(t, err, "cannot update order in status: canceled")
}

func TestCancelNewOrder(t *testing.T) {
	svc, publisher, _ := setupService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, marketOrder())
	require.NoError(t, err)

	canceled, err := svc.Cancel(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCanceled, canceled.Status)
	assert.NotNil(t, canceled.CanceledAt)

	require.Len(t, publisher.events, 2)
	assert.Equal(t, "order.canceled", publisher.events[1].Type)
	assert.Equal(t, domain.StatusCanceled, publisher.events[1].Status)
}

func TestSecondCancelRejected(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, marketOrder())
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, order.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, order.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidState(err))
	assert.EqualError(t, err, "cannot cancel order in status: canceled")
}

func TestCancelPartiallyFilledOrder(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, marketOrder())
	require.NoError(t, err)

	// 外部成交进程推进的状态不经过撤单门控
	require.NoError(t, db.Model(&domain.Order{}).
		Where("id = ?", order.ID).
		Update("status", domain.StatusPartiallyFilled).Error)

	canceled, err := svc.Cancel(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCanceled, canceled.Status)
}

func TestCancelFilledOrderRejected(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, marketOrder())
	require.NoError(t, err)

	require.NoError(t, db.Model(&domain.Order{}).
		Where("id = ?", order.ID).
		Update("status", domain.StatusFilled).Error)

	_, err = svc.Cancel(ctx, order.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidState(err))
}

func TestUpdateMissingOrderNotFound(t *testing.T) {
	svc, _, _ := setupService(t)

	order, err := svc.Create(context.Background(), marketOrder())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), order.ID, UpdateOrderPatch{})
	assert.NoError(t, err)

	missing := order.ID
	missing[0] ^= 0xff
	_, err = svc.Update(context.Background(), missing, UpdateOrderPatch{Notes: strPtr("x")})
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))

	_, err = svc.Cancel(context.Background(), missing)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}
