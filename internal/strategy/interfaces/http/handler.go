// Package http 提供策略资源的 HTTP 处理器
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/strategydesk/internal/strategy/application"
	"github.com/wyfcoding/strategydesk/internal/strategy/domain"
	"github.com/wyfcoding/strategydesk/pkg/apperr"
	"github.com/wyfcoding/strategydesk/pkg/httpx"
	"github.com/wyfcoding/strategydesk/pkg/response"
)

// StrategyHandler 策略 HTTP 处理器
type StrategyHandler struct {
	svc *application.StrategyService
}

// NewStrategyHandler 创建策略 HTTP 处理器
func NewStrategyHandler(svc *application.StrategyService) *StrategyHandler {
	return &StrategyHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *StrategyHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/strategies")
	{
		api.POST("", h.Create)
		api.GET("", h.List)
		api.GET("/:id", h.Get)
		api.PATCH("/:id", h.Update)
		api.DELETE("/:id", h.Delete)
	}
}

type createStrategyRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type updateStrategyRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// Create 创建策略
func (h *StrategyHandler) Create(c *gin.Context) {
	var req createStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	strategy, err := h.svc.Create(c.Request.Context(), application.CreateStrategyCommand{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, strategy)
}

// List 按条件分页查询策略
func (h *StrategyHandler) List(c *gin.Context) {
	q := domain.StrategyQuery{
		Name:     httpx.QueryString(c, "name"),
		Search:   httpx.QueryString(c, "search"),
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
	}

	var err error
	if q.IsActive, err = httpx.QueryBool(c, "is_active"); err != nil {
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

// Get 获取策略详情
func (h *StrategyHandler) Get(c *gin.Context) {
	id, err := httpx.ParseUintID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	strategy, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if strategy == nil {
		response.NotFound(c, "strategy not found")
		return
	}

	response.Success(c, strategy)
}

// Update 部分更新策略
func (h *StrategyHandler) Update(c *gin.Context) {
	id, err := httpx.ParseUintID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req updateStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	strategy, err := h.svc.Update(c.Request.Context(), id, application.UpdateStrategyPatch{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, strategy)
}

// Delete 删除策略
func (h *StrategyHandler) Delete(c *gin.Context) {
	id, err := httpx.ParseUintID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": id})
}
