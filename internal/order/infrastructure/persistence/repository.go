// Package persistence 提供订单仓储的 GORM 实现
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wyfcoding/strategydesk/internal/order/domain"
	"github.com/wyfcoding/strategydesk/pkg/contextx"
	"github.com/wyfcoding/strategydesk/pkg/repository"
	"gorm.io/gorm"
)

type orderRepository struct {
	db   *gorm.DB
	base *repository.Repository[domain.Order]
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) domain.OrderRepository {
	return &orderRepository{
		db: db,
		base: repository.New[domain.Order](db, repository.Options{
			DuplicateMessage:  "order with this client_order_id already exists for this account",
			OrderableFields:   domain.OrderOrderableFields(),
			DefaultOrderField: "created_at",
			DefaultOrderDesc:  true,
		}),
	}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.base.Create(ctx, order)
}

func (r *orderRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.base.Get(ctx, id)
}

// FindByClientOrderID 按 (account_id, client_order_id) 查找订单，未命中返回 (nil, nil)
func (r *orderRepository) FindByClientOrderID(ctx context.Context, accountID, clientOrderID string) (*domain.Order, error) {
	var order domain.Order
	err := r.getDB(ctx).
		Where("account_id = ? AND client_order_id = ?", accountID, clientOrderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find order by client_order_id: %w", err)
	}
	return &order, nil
}

func (r *orderRepository) ListAndCount(ctx context.Context, q domain.OrderQuery) ([]*domain.Order, int64, error) {
	return r.base.ListAndCount(ctx, q)
}

func (r *orderRepository) Updates(ctx context.Context, order *domain.Order, fields map[string]any) error {
	return r.base.Updates(ctx, order, fields)
}

func (r *orderRepository) Delete(ctx context.Context, order *domain.Order) error {
	return r.base.Delete(ctx, order)
}

func (r *orderRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
