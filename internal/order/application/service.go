// Package application 实现订单生命周期控制：
// 创建前的业务校验与幂等检查、状态门控的修改与撤单。
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/strategydesk/internal/order/domain"
	"github.com/wyfcoding/strategydesk/pkg/apperr"
	"github.com/wyfcoding/strategydesk/pkg/contextx"
	"github.com/wyfcoding/strategydesk/pkg/logger"
	"github.com/wyfcoding/strategydesk/pkg/metrics"
	"gorm.io/gorm"
)

// TxRunner 事务执行器，幂等检查与插入需要在同一事务内完成
type TxRunner interface {
	WithTx(ctx context.Context, fn func(*gorm.DB) error) error
}

// PlaceOrderCommand 下单命令
type PlaceOrderCommand struct {
	SymbolID       uint
	StrategyID     *uint
	AccountID      *string
	Side           domain.OrderSide
	Type           domain.OrderType
	TimeInForce    domain.TimeInForce
	Quantity       decimal.Decimal
	QuantityType   domain.QuantityType
	Price          *decimal.Decimal
	StopPrice      *decimal.Decimal
	ReduceOnly     *bool
	PositionEffect domain.PositionEffect
	Broker         domain.Broker
	ClientOrderID  *string
	Paper          *bool
	Notes          *string
}

// UpdateOrderPatch 订单部分更新补丁，nil 字段表示不修改。
// Quantity 出现在补丁中时无论订单状态如何都拒绝。
type UpdateOrderPatch struct {
	Quantity    *decimal.Decimal
	Price       *decimal.Decimal
	StopPrice   *decimal.Decimal
	TimeInForce *domain.TimeInForce
	Notes       *string
	ReduceOnly  *bool
}

// OrderService 订单应用服务
type OrderService struct {
	repo      domain.OrderRepository
	tx        TxRunner
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
}

// NewOrderService 创建订单应用服务，publisher 与 m 允许为 nil
func NewOrderService(repo domain.OrderRepository, tx TxRunner, publisher domain.EventPublisher, m *metrics.Metrics) *OrderService {
	return &OrderService{repo: repo, tx: tx, publisher: publisher, metrics: m}
}

// Create 下单。
// account_id 与 client_order_id 同时存在时在同一事务内做幂等检查：
// 相同组合的重复提交返回 Duplicate 而不会产生第二笔订单。
// 组合上的唯一索引保证并发提交下的正确性。
func (s *OrderService) Create(ctx context.Context, cmd PlaceOrderCommand) (*domain.Order, error) {
	if err := validatePlaceOrder(cmd); err != nil {
		return nil, err
	}

	order := &domain.Order{
		SymbolID:       cmd.SymbolID,
		StrategyID:     cmd.StrategyID,
		AccountID:      cmd.AccountID,
		Side:           cmd.Side,
		Type:           cmd.Type,
		TimeInForce:    cmd.TimeInForce,
		Quantity:       cmd.Quantity,
		QuantityType:   cmd.QuantityType,
		Price:          cmd.Price,
		StopPrice:      cmd.StopPrice,
		PositionEffect: cmd.PositionEffect,
		Status:         domain.StatusNew,
		FilledQuantity: decimal.Zero,
		Broker:         cmd.Broker,
		ClientOrderID:  cmd.ClientOrderID,
		Paper:          true,
	}
	if cmd.ReduceOnly != nil {
		order.ReduceOnly = *cmd.ReduceOnly
	}
	if cmd.Paper != nil {
		order.Paper = *cmd.Paper
	}
	if cmd.Notes != nil {
		order.Notes = cmd.Notes
	}

	if cmd.AccountID != nil && cmd.ClientOrderID != nil {
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			txCtx := contextx.WithTx(ctx, tx)
			existing, err := s.repo.FindByClientOrderID(txCtx, *cmd.AccountID, *cmd.ClientOrderID)
			if err != nil {
				return err
			}
			if existing != nil {
				return apperr.Duplicate("order with this client_order_id already exists for this account")
			}
			return s.repo.Create(txCtx, order)
		})
		if err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.Create(ctx, order); err != nil {
			return nil, err
		}
	}

	if s.metrics != nil {
		s.metrics.OrdersCreatedTotal.Inc()
	}
	s.publish(ctx, "order.created", order)

	logger.Info(ctx, "Order created",
		"order_id", order.ID, "symbol_id", order.SymbolID,
		"side", order.Side, "type", order.Type, "quantity", order.Quantity)
	return order, nil
}

// Get 按 ID 获取订单，未命中返回 (nil, nil)
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.Get(ctx, id)
}

// List 按条件返回一页订单与忽略分页的总数
func (s *OrderService) List(ctx context.Context, q domain.OrderQuery) ([]*domain.Order, int64, error) {
	if err := q.Normalize(); err != nil {
		return nil, 0, err
	}
	return s.repo.ListAndCount(ctx, q)
}

// Update 修改订单。
// 补丁携带 quantity 时无论状态如何都返回 Immutable；
// 仅 new/pending_broker 状态允许修改，其余返回 InvalidState。
// 可修改字段：price、stop_price、time_in_force、notes、reduce_only。
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, patch UpdateOrderPatch) (*domain.Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.NotFound("order not found")
	}

	if patch.Quantity != nil {
		return nil, apperr.Immutable("cannot change quantity after order creation")
	}
	if !order.Status.CanUpdate() {
		return nil, apperr.InvalidState("cannot update order in status: %s", order.Status)
	}

	fields := make(map[string]any)
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.StopPrice != nil {
		fields["stop_price"] = *patch.StopPrice
	}
	if patch.TimeInForce != nil {
		if !patch.TimeInForce.Valid() {
			return nil, apperr.Validation("invalid time_in_force: %s", *patch.TimeInForce)
		}
		if patch.TimeInForce.Immediate() && order.Type != domain.TypeMarket && order.Type != domain.TypeLimit {
			return nil, apperr.Validation("time_in_force %s requires market or limit order type", *patch.TimeInForce)
		}
		fields["time_in_force"] = *patch.TimeInForce
	}
	if patch.Notes != nil {
		fields["notes"] = *patch.Notes
	}
	if patch.ReduceOnly != nil {
		fields["reduce_only"] = *patch.ReduceOnly
	}

	if len(fields) == 0 {
		return order, nil
	}

	if err := s.repo.Updates(ctx, order, fields); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Order updated", "order_id", id)
	return s.repo.Get(ctx, id)
}

// Cancel 撤单。
// 仅 new/pending_broker/partially_filled 状态允许撤单，
// 对已撤订单的第二次撤单返回 InvalidState 而非幂等成功。
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.NotFound("order not found")
	}

	if !order.Status.CanCancel() {
		return nil, apperr.InvalidState("cannot cancel order in status: %s", order.Status)
	}

	now := time.Now()
	fields := map[string]any{
		"status":      domain.StatusCanceled,
		"canceled_at": now,
	}
	if err := s.repo.Updates(ctx, order, fields); err != nil {
		return nil, err
	}

	canceled, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersCanceledTotal.Inc()
	}
	s.publish(ctx, "order.canceled", canceled)

	logger.Info(ctx, "Order canceled", "order_id", id)
	return canceled, nil
}

// publish 发布订单事件，发布失败只记日志不影响主流程
func (s *OrderService) publish(ctx context.Context, eventType string, order *domain.Order) {
	if s.publisher == nil || order == nil {
		return
	}
	event := domain.OrderEvent{
		Type:       eventType,
		OrderID:    order.ID,
		SymbolID:   order.SymbolID,
		Status:     order.Status,
		OccurredAt: time.Now(),
	}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		logger.Warn(ctx, "Failed to publish order event",
			"type", eventType, "order_id", order.ID, "error", err)
	}
}

// validatePlaceOrder 下单前的业务校验。
// limit 需要 price，stop 需要 stop_price，stop_limit 两者都要；
// fok/ioc 仅允许搭配 market/limit；quantity 必须严格为正。
func validatePlaceOrder(cmd PlaceOrderCommand) error {
	if cmd.SymbolID == 0 {
		return apperr.Validation("symbol_id is required")
	}
	if !cmd.Side.Valid() {
		return apperr.Validation("invalid side: %s", cmd.Side)
	}
	if !cmd.Type.Valid() {
		return apperr.Validation("invalid type: %s", cmd.Type)
	}
	if !cmd.TimeInForce.Valid() {
		return apperr.Validation("invalid time_in_force: %s", cmd.TimeInForce)
	}
	if !cmd.QuantityType.Valid() {
		return apperr.Validation("invalid quantity_type: %s", cmd.QuantityType)
	}
	if !cmd.PositionEffect.Valid() {
		return apperr.Validation("invalid position_effect: %s", cmd.PositionEffect)
	}
	if !cmd.Broker.Valid() {
		return apperr.Validation("invalid broker: %s", cmd.Broker)
	}
	if !cmd.Quantity.IsPositive() {
		return apperr.Validation("quantity must be positive")
	}
	if cmd.AccountID != nil && (len(*cmd.AccountID) == 0 || len(*cmd.AccountID) > 64) {
		return apperr.Validation("account_id must be between 1 and 64 characters")
	}
	if cmd.ClientOrderID != nil && (len(*cmd.ClientOrderID) == 0 || len(*cmd.ClientOrderID) > 128) {
		return apperr.Validation("client_order_id must be between 1 and 128 characters")
	}

	switch cmd.Type {
	case domain.TypeLimit:
		if cmd.Price == nil {
			return apperr.Validation("price is required for limit orders")
		}
	case domain.TypeStop:
		if cmd.StopPrice == nil {
			return apperr.Validation("stop_price is required for stop orders")
		}
	case domain.TypeStopLimit:
		if cmd.Price == nil || cmd.StopPrice == nil {
			return apperr.Validation("price and stop_price are required for stop_limit orders")
		}
	case domain.TypeMarket:
	}

	if cmd.TimeInForce.Immediate() && cmd.Type != domain.TypeMarket && cmd.Type != domain.TypeLimit {
		return apperr.Validation("time_in_force %s requires market or limit order type", cmd.TimeInForce)
	}

	return nil
}
