// Package domain 包含订单的领域模型与状态机规则。
// 订单是系统中唯一携带非平凡状态的实体：
// 创建时状态为 new，仅 new/pending_broker 可修改，
// new/pending_broker/partially_filled 可撤单，数量创建后不可变。
package domain

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/strategydesk/pkg/apperr"
	"gorm.io/gorm"
)

// OrderSide 买卖方向
type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// Valid 判断方向是否合法
func (s OrderSide) Valid() bool {
	switch s {
	case SideBuy, SideSell:
		return true
	default:
		return false
	}
}

// OrderType 订单类型
type OrderType string

const (
	TypeMarket    OrderType = "market"
	TypeLimit     OrderType = "limit"
	TypeStop      OrderType = "stop"
	TypeStopLimit OrderType = "stop_limit"
)

// Valid 判断订单类型是否合法
func (t OrderType) Valid() bool {
	switch t {
	case TypeMarket, TypeLimit, TypeStop, TypeStopLimit:
		return true
	default:
		return false
	}
}

// TimeInForce 订单有效期
type TimeInForce string

const (
	TIFDay TimeInForce = "day"
	TIFGTC TimeInForce = "gtc"
	TIFFOK TimeInForce = "fok"
	TIFIOC TimeInForce = "ioc"
)

// Valid 判断有效期是否合法
func (t TimeInForce) Valid() bool {
	switch t {
	case TIFDay, TIFGTC, TIFFOK, TIFIOC:
		return true
	default:
		return false
	}
}

// Immediate fok/ioc 仅允许搭配 market/limit 类型
func (t TimeInForce) Immediate() bool {
	return t == TIFFOK || t == TIFIOC
}

// QuantityType 数量计量方式
type QuantityType string

const (
	QuantityUnits    QuantityType = "units"
	QuantityNotional QuantityType = "notional"
)

// Valid 判断数量计量方式是否合法
func (t QuantityType) Valid() bool {
	switch t {
	case QuantityUnits, QuantityNotional:
		return true
	default:
		return false
	}
}

// PositionEffect 开平仓方向
type PositionEffect string

const (
	PositionOpen  PositionEffect = "open"
	PositionClose PositionEffect = "close"
	PositionAuto  PositionEffect = "auto"
)

// Valid 判断开平仓方向是否合法
func (e PositionEffect) Valid() bool {
	switch e {
	case PositionOpen, PositionClose, PositionAuto:
		return true
	default:
		return false
	}
}

// OrderStatus 订单状态
type OrderStatus string

const (
	StatusNew             OrderStatus = "new"
	StatusPendingBroker   OrderStatus = "pending_broker"
	StatusPartiallyFilled OrderStatus = "partially_filled"
	StatusFilled          OrderStatus = "filled"
	StatusCanceled        OrderStatus = "canceled"
	StatusRejected        OrderStatus = "rejected"
	StatusExpired         OrderStatus = "expired"
)

// Valid 判断订单状态是否合法
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusPendingBroker, StatusPartiallyFilled,
		StatusFilled, StatusCanceled, StatusRejected, StatusExpired:
		return true
	default:
		return false
	}
}

// CanUpdate 当前状态是否允许修改订单
func (s OrderStatus) CanUpdate() bool {
	switch s {
	case StatusNew, StatusPendingBroker:
		return true
	case StatusPartiallyFilled, StatusFilled, StatusCanceled, StatusRejected, StatusExpired:
		return false
	default:
		return false
	}
}

// CanCancel 当前状态是否允许撤单
func (s OrderStatus) CanCancel() bool {
	switch s {
	case StatusNew, StatusPendingBroker, StatusPartiallyFilled:
		return true
	case StatusFilled, StatusCanceled, StatusRejected, StatusExpired:
		return false
	default:
		return false
	}
}

// Broker 执行通道
type Broker string

const (
	BrokerPaper   Broker = "paper"
	BrokerAlpaca  Broker = "alpaca"
	BrokerBinance Broker = "binance"
	BrokerIBKR    Broker = "ibkr"
)

// Valid 判断执行通道是否合法
func (b Broker) Valid() bool {
	switch b {
	case BrokerPaper, BrokerAlpaca, BrokerBinance, BrokerIBKR:
		return true
	default:
		return false
	}
}

// Order 订单实体，(account_id, client_order_id) 组合在两者都存在时唯一
type Order struct {
	// 订单 ID，服务端生成的 UUID
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	// 标的 ID，仅作不透明引用，不做外键约束
	SymbolID uint `gorm:"not null;index" json:"symbol_id"`
	// 所属策略 ID，可选
	StrategyID *uint `gorm:"index" json:"strategy_id"`
	// 账户 ID，可选
	AccountID *string `gorm:"type:varchar(64);uniqueIndex:uq_orders_account_client_order_id" json:"account_id"`
	// 买卖方向
	Side OrderSide `gorm:"type:varchar(10);not null" json:"side"`
	// 订单类型
	Type OrderType `gorm:"type:varchar(20);not null" json:"type"`
	// 有效期
	TimeInForce TimeInForce `gorm:"type:varchar(10);not null;default:'day'" json:"time_in_force"`
	// 数量，精确小数，创建后不可变
	Quantity decimal.Decimal `gorm:"type:decimal(28,10);not null" json:"quantity"`
	// 数量计量方式
	QuantityType QuantityType `gorm:"type:varchar(10);not null;default:'units'" json:"quantity_type"`
	// 限价，limit/stop_limit 必填
	Price *decimal.Decimal `gorm:"type:decimal(28,10)" json:"price"`
	// 止损触发价，stop/stop_limit 必填
	StopPrice *decimal.Decimal `gorm:"type:decimal(28,10)" json:"stop_price"`
	// 是否只减仓
	ReduceOnly bool `gorm:"not null;default:false" json:"reduce_only"`
	// 开平仓方向
	PositionEffect PositionEffect `gorm:"type:varchar(10);not null;default:'auto'" json:"position_effect"`
	// 订单状态
	Status OrderStatus `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	// 平均成交价
	AverageFillPrice *decimal.Decimal `gorm:"type:decimal(28,10)" json:"average_fill_price"`
	// 已成交数量
	FilledQuantity decimal.Decimal `gorm:"type:decimal(28,10);not null;default:0" json:"filled_quantity"`
	// 执行通道
	Broker Broker `gorm:"type:varchar(20);not null;default:'paper'" json:"broker"`
	// 券商侧订单 ID
	BrokerOrderID *string `gorm:"type:varchar(128)" json:"broker_order_id"`
	// 客户端幂等 ID，与 account_id 组合唯一
	ClientOrderID *string `gorm:"type:varchar(128);uniqueIndex:uq_orders_account_client_order_id" json:"client_order_id"`
	// 是否模拟盘
	Paper bool `gorm:"not null;default:true" json:"paper"`
	// 备注
	Notes *string `gorm:"type:text" json:"notes"`
	// 创建时间
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	// 更新时间
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	// 提交到券商的时间
	PlacedAt *time.Time `json:"placed_at"`
	// 全部成交时间
	FilledAt *time.Time `json:"filled_at"`
	// 撤单时间
	CanceledAt *time.Time `json:"canceled_at"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate 在持久化前生成 UUID
func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderQuery 订单列表查询条件
type OrderQuery struct {
	// 标的 ID 过滤
	SymbolID *uint
	// 策略 ID 过滤
	StrategyID *uint
	// 账户 ID 过滤
	AccountID *string
	// 状态过滤
	Status *OrderStatus
	// 方向过滤
	Side *OrderSide
	// 执行通道过滤
	Broker *Broker
	// 创建时间下界（含）
	CreatedFrom *time.Time
	// 创建时间上界（含）
	CreatedTo *time.Time
	// client_order_id/notes 模糊匹配（大小写不敏感）
	Search *string
	// 分页大小
	Limit int
	// 分页偏移
	Offset int
	// 排序字段
	OrderBy string
	// 排序方向：asc / desc
	OrderDir string
}

// OrderOrderableFields 返回允许排序的字段白名单
func OrderOrderableFields() []string {
	return []string{"created_at", "updated_at", "status", "side", "quantity", "placed_at", "filled_at", "canceled_at"}
}

// Normalize 填充默认值并校验分页与排序参数
func (q *OrderQuery) Normalize() error {
	if q.Limit == 0 {
		q.Limit = 50
	}
	if q.Limit < 1 || q.Limit > 200 {
		return apperr.Validation("limit must be between 1 and 200")
	}
	if q.Offset < 0 {
		return apperr.Validation("offset must not be negative")
	}
	if q.Status != nil && !q.Status.Valid() {
		return apperr.Validation("invalid status: %s", *q.Status)
	}
	if q.Side != nil && !q.Side.Valid() {
		return apperr.Validation("invalid side: %s", *q.Side)
	}
	if q.Broker != nil && !q.Broker.Valid() {
		return apperr.Validation("invalid broker: %s", *q.Broker)
	}
	if q.OrderBy == "" {
		q.OrderBy = "created_at"
	}
	if !slices.Contains(OrderOrderableFields(), q.OrderBy) {
		return apperr.Validation("invalid order_by field: %s", q.OrderBy)
	}
	if q.OrderDir == "" {
		q.OrderDir = "desc"
	}
	if q.OrderDir != "asc" && q.OrderDir != "desc" {
		return apperr.Validation("order_dir must be asc or desc")
	}
	return nil
}

// ApplyFilters 应用订单特有的过滤条件
func (q OrderQuery) ApplyFilters(tx *gorm.DB) *gorm.DB {
	if q.SymbolID != nil {
		tx = tx.Where("symbol_id = ?", *q.SymbolID)
	}
	if q.StrategyID != nil {
		tx = tx.Where("strategy_id = ?", *q.StrategyID)
	}
	if q.AccountID != nil {
		tx = tx.Where("account_id = ?", *q.AccountID)
	}
	if q.Status != nil {
		tx = tx.Where("status = ?", *q.Status)
	}
	if q.Side != nil {
		tx = tx.Where("side = ?", *q.Side)
	}
	if q.Broker != nil {
		tx = tx.Where("broker = ?", *q.Broker)
	}
	if q.CreatedFrom != nil {
		tx = tx.Where("created_at >= ?", *q.CreatedFrom)
	}
	if q.CreatedTo != nil {
		tx = tx.Where("created_at <= ?", *q.CreatedTo)
	}
	if q.Search != nil && *q.Search != "" {
		like := "%" + strings.ToLower(*q.Search) + "%"
		tx = tx.Where("LOWER(client_order_id) LIKE ? OR LOWER(notes) LIKE ?", like, like)
	}
	return tx
}

// OrderClause 返回排序字段与方向
func (q OrderQuery) OrderClause() (string, string) {
	return q.OrderBy, q.OrderDir
}

// Page 返回分页参数
func (q OrderQuery) Page() (int, int) {
	return q.Limit, q.Offset
}

// OrderRepository 订单仓储接口
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByClientOrderID(ctx context.Context, accountID, clientOrderID string) (*Order, error)
	ListAndCount(ctx context.Context, q OrderQuery) ([]*Order, int64, error)
	Updates(ctx context.Context, order *Order, fields map[string]any) error
	Delete(ctx context.Context, order *Order) error
}

// OrderEvent 订单生命周期事件
type OrderEvent struct {
	Type       string      `json:"type"`
	OrderID    uuid.UUID   `json:"order_id"`
	SymbolID   uint        `json:"symbol_id"`
	Status     OrderStatus `json:"status"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// EventPublisher 订单事件发布接口
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}
