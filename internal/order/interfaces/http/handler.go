// Package http 提供订单资源的 HTTP 处理器。
// DELETE 语义为撤单：订单不会被物理删除，而是状态流转为 canceled。
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/strategydesk/internal/order/application"
	"github.com/wyfcoding/strategydesk/internal/order/domain"
	"github.com/wyfcoding/strategydesk/pkg/apperr"
	"github.com/wyfcoding/strategydesk/pkg/httpx"
	"github.com/wyfcoding/strategydesk/pkg/response"
)

// OrderHandler 订单 HTTP 处理器
type OrderHandler struct {
	svc *application.OrderService
}

// NewOrderHandler 创建订单 HTTP 处理器
func NewOrderHandler(svc *application.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/orders")
	{
		api.POST("", h.Create)
		api.GET("", h.List)
		api.GET("/:id", h.Get)
		api.PATCH("/:id", h.Update)
		api.DELETE("/:id", h.Cancel)
	}
}

type placeOrderRequest struct {
	SymbolID       uint             `json:"symbol_id" binding:"required"`
	StrategyID     *uint            `json:"strategy_id"`
	AccountID      *string          `json:"account_id"`
	Side           string           `json:"side" binding:"required"`
	Type           string           `json:"type" binding:"required"`
	TimeInForce    string           `json:"time_in_force"`
	Quantity       decimal.Decimal  `json:"quantity" binding:"required"`
	QuantityType   string           `json:"quantity_type"`
	Price          *decimal.Decimal `json:"price"`
	StopPrice      *decimal.Decimal `json:"stop_price"`
	ReduceOnly     *bool            `json:"reduce_only"`
	PositionEffect string           `json:"position_effect"`
	Broker         string           `json:"broker"`
	ClientOrderID  *string          `json:"client_order_id"`
	Paper          *bool            `json:"paper"`
	Notes          *string          `json:"notes"`
}

type updateOrderRequest struct {
	Quantity    *decimal.Decimal `json:"quantity"`
	Price       *decimal.Decimal `json:"price"`
	StopPrice   *decimal.Decimal `json:"stop_price"`
	TimeInForce *string          `json:"time_in_force"`
	Notes       *string          `json:"notes"`
	ReduceOnly  *bool            `json:"reduce_only"`
}

// Create 下单
func (h *OrderHandler) Create(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	cmd := application.PlaceOrderCommand{
		SymbolID:       req.SymbolID,
		StrategyID:     req.StrategyID,
		AccountID:      req.AccountID,
		Side:           domain.OrderSide(req.Side),
		Type:           domain.OrderType(req.Type),
		TimeInForce:    domain.TIFDay,
		Quantity:       req.Quantity,
		QuantityType:   domain.QuantityUnits,
		Price:          req.Price,
		StopPrice:      req.StopPrice,
		ReduceOnly:     req.ReduceOnly,
		PositionEffect: domain.PositionAuto,
		Broker:         domain.BrokerPaper,
		ClientOrderID:  req.ClientOrderID,
		Paper:          req.Paper,
		Notes:          req.Notes,
	}
	if req.TimeInForce != "" {
		cmd.TimeInForce = domain.TimeInForce(req.TimeInForce)
	}
	if req.QuantityType != "" {
		cmd.QuantityType = domain.QuantityType(req.QuantityType)
	}
	if req.PositionEffect != "" {
		cmd.PositionEffect = domain.PositionEffect(req.PositionEffect)
	}
	if req.Broker != "" {
		cmd.Broker = domain.Broker(req.Broker)
	}

	order, err := h.svc.Create(c.Request.Context(), cmd)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, order)
}

// List 按条件分页查询订单
func (h *OrderHandler) List(c *gin.Context) {
	q := domain.OrderQuery{
		AccountID: httpx.QueryString(c, "account_id"),
		Search:    httpx.QueryString(c, "search"),
		OrderBy:   c.Query("order_by"),
		OrderDir:  c.Query("order_dir"),
	}
	if raw := httpx.QueryString(c, "status"); raw != nil {
		status := domain.OrderStatus(*raw)
		q.Status = &status
	}
	if raw := httpx.QueryString(c, "side"); raw != nil {
		side := domain.OrderSide(*raw)
		q.Side = &side
	}
	if raw := httpx.QueryString(c, "broker"); raw != nil {
		broker := domain.Broker(*raw)
		q.Broker = &broker
	}

	var err error
	if q.SymbolID, err = httpx.QueryUint(c, "symbol_id"); err != nil {
		response.Error(c, err)
		return
	}
	if q.StrategyID, err = httpx.QueryUint(c, "strategy_id"); err != nil {
		response.Error(c, err)
		return
	}
	if q.CreatedFrom, err = httpx.QueryTime(c, "created_from"); err != nil {
		response.Error(c, err)
		return
	}
	if q.CreatedTo, err = httpx.QueryTime(c, "created_to"); err != nil {
		response.Error(c, err)
		return
	}
	if q.Limit, q.Offset, err = httpx.ParsePagination(c); err != nil {
		response.Error(c, err)
		return
	}

	items, total, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.List(c, items, total, q.Limit, q.Offset)
}

// Get 获取订单详情
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := httpx.ParseUUIDID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	order, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if order == nil {
		response.NotFound(c, "order not found")
		return
	}

	response.Success(c, order)
}

// Update 修改订单
func (h *OrderHandler) Update(c *gin.Context) {
	id, err := httpx.ParseUUIDID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	patch := application.UpdateOrderPatch{
		Quantity:   req.Quantity,
		Price:      req.Price,
		StopPrice:  req.StopPrice,
		Notes:      req.Notes,
		ReduceOnly: req.ReduceOnly,
	}
	if req.TimeInForce != nil {
		tif := domain.TimeInForce(*req.TimeInForce)
		patch.TimeInForce = &tif
	}

	order, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, order)
}

// Cancel 撤单
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, err := httpx.ParseUUIDID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	order, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, order)
}
