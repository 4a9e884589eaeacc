// Package http 提供资产资源的 HTTP 处理器
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/strategydesk/internal/asset/application"
	"github.com/wyfcoding/strategydesk/internal/asset/domain"
	"github.com/wyfcoding/strategydesk/pkg/apperr"
	"github.com/wyfcoding/strategydesk/pkg/httpx"
	"github.com/wyfcoding/strategydesk/pkg/response"
)

// AssetHandler 资产 HTTP 处理器
type AssetHandler struct {
	svc *application.AssetService
}

// NewAssetHandler 创建资产 HTTP 处理器
func NewAssetHandler(svc *application.AssetService) *AssetHandler {
	return &AssetHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *AssetHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/assets")
	{
		api.POST("", h.Create)
		api.GET("", h.List)
		api.GET("/:id", h.Get)
		api.PATCH("/:id", h.Update)
		api.DELETE("/:id", h.Delete)
	}
}

type createAssetRequest struct {
	Symbol    string  `json:"symbol" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Exchange  string  `json:"exchange" binding:"required"`
	AssetType string  `json:"asset_type" binding:"required"`
	Currency  *string `json:"currency"`
	IsActive  *bool   `json:"is_active"`
	MetaJSON  *string `json:"meta_json"`
}

type updateAssetRequest struct {
	Symbol    *string `json:"symbol"`
	Name      *string `json:"name"`
	Exchange  *string `json:"exchange"`
	AssetType *string `json:"asset_type"`
	Currency  *string `json:"currency"`
	IsActive  *bool   `json:"is_active"`
	MetaJSON  *string `json:"meta_json"`
}

// Create 创建资产
func (h *AssetHandler) Create(c *gin.Context) {
	var req createAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	asset, err := h.svc.Create(c.Request.Context(), application.CreateAssetCommand{
		Symbol:    req.Symbol,
		Name:      req.Name,
		Exchange:  req.Exchange,
		AssetType: domain.AssetType(req.AssetType),
		Currency:  req.Currency,
		IsActive:  req.IsActive,
		MetaJSON:  req.MetaJSON,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, asset)
}

// List 按条件分页查询资产
func (h *AssetHandler) List(c *gin.Context) {
	q := domain.AssetQuery{
		Symbol:   httpx.QueryString(c, "symbol"),
		Exchange: httpx.QueryString(c, "exchange"),
		Search:   httpx.QueryString(c, "search"),
		OrderBy:  c.Query("order_by"),
		OrderDir: c.Query("order_dir"),
	}
	if raw := httpx.QueryString(c, "asset_type"); raw != nil {
		t := domain.AssetType(*raw)
		q.AssetType = &t
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

// Get 获取资产详情
func (h *AssetHandler) Get(c *gin.Context) {
	id, err := httpx.ParseUUIDID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	asset, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if asset == nil {
		response.NotFound(c, "asset not found")
		return
	}

	response.Success(c, asset)
}

// Update 部分更新资产
func (h *AssetHandler) Update(c *gin.Context) {
	id, err := httpx.ParseUUIDID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req updateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	patch := application.UpdateAssetPatch{
		Symbol:   req.Symbol,
		Name:     req.Name,
		Exchange: req.Exchange,
		Currency: req.Currency,
		IsActive: req.IsActive,
		MetaJSON: req.MetaJSON,
	}
	if req.AssetType != nil {
		t := domain.AssetType(*req.AssetType)
		patch.AssetType = &t
	}

	asset, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, asset)
}

// Delete 删除资产
func (h *AssetHandler) Delete(c *gin.Context) {
	id, err := httpx.ParseUUIDID(c)
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
