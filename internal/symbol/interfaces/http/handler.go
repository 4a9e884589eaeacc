// Package http 提供标的资源的 HTTP 处理器
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/strategydesk/internal/symbol/application"
	"github.com/wyfcoding/strategydesk/internal/symbol/domain"
	"github.com/wyfcoding/strategydesk/pkg/apperr"
	"github.com/wyfcoding/strategydesk/pkg/httpx"
	"github.com/wyfcoding/strategydesk/pkg/response"
)

// SymbolHandler 标的 HTTP 处理器
type SymbolHandler struct {
	svc *application.SymbolService
}

// NewSymbolHandler 创建标的 HTTP 处理器
func NewSymbolHandler(svc *application.SymbolService) *SymbolHandler {
	return &SymbolHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *SymbolHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/symbols")
	{
		api.POST("", h.Create)
		api.GET("", h.List)
		api.GET("/:id", h.Get)
		api.PATCH("/:id", h.Update)
		api.DELETE("/:id", h.Delete)
	}
}

type createSymbolRequest struct {
	Symbol string  `json:"symbol" binding:"required"`
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

type updateSymbolRequest struct {
	Symbol *string `json:"symbol"`
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

// Create 创建标的
func (h *SymbolHandler) Create(c *gin.Context) {
	var req createSymbolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	symbol, err := h.svc.Create(c.Request.Context(), application.CreateSymbolCommand{
		Symbol: req.Symbol,
		Name:   req.Name,
		Active: req.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, symbol)
}

// List 按条件分页查询标的
func (h *SymbolHandler) List(c *gin.Context) {
	q := domain.SymbolQuery{
		Symbol:   httpx.QueryString(c, "symbol"),
		Search:   httpx.QueryString(c, "search"),
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
	}

	var err error
	if q.Active, err = httpx.QueryBool(c, "active"); err != nil {
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

// Get 获取标的详情
func (h *SymbolHandler) Get(c *gin.Context) {
	id, err := httpx.ParseUintID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	symbol, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if symbol == nil {
		response.NotFound(c, "symbol not found")
		return
	}

	response.Success(c, symbol)
}

// Update 部分更新标的
func (h *SymbolHandler) Update(c *gin.Context) {
	id, err := httpx.ParseUintID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req updateSymbolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	symbol, err := h.svc.Update(c.Request.Context(), id, application.UpdateSymbolPatch{
		Symbol: req.Symbol,
		Name:   req.Name,
		Active: req.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, symbol)
}

// Delete 删除标的
func (h *SymbolHandler) Delete(c *gin.Context) {
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
