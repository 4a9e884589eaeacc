// Package domain 包含可交易资产的领域模型
package domain

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wyfcoding/strategydesk/pkg/apperr"
	"gorm.io/gorm"
)

// AssetType 资产类别
type AssetType string

const (
	AssetTypeEquity AssetType = "equity"
	AssetTypeETF    AssetType = "etf"
	AssetTypeForex  AssetType = "forex"
	AssetTypeCrypto AssetType = "crypto"
	AssetTypeFuture AssetType = "future"
	AssetTypeOption AssetType = "option"
	AssetTypeBond   AssetType = "bond"
	AssetTypeOther  AssetType = "other"
)

// Valid 判断资产类别是否合法
func (t AssetType) Valid() bool {
	switch t {
	case AssetTypeEquity, AssetTypeETF, AssetTypeForex, AssetTypeCrypto,
		AssetTypeFuture, AssetTypeOption, AssetTypeBond, AssetTypeOther:
		return true
	default:
		return false
	}
}

// Asset 可交易资产实体，(exchange, symbol) 组合唯一
type Asset struct {
	// 资产 ID，服务端生成的 UUID
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	// 标的代码
	Symbol string `gorm:"type:varchar(50);not null;uniqueIndex:uq_assets_exchange_symbol" json:"symbol"`
	// 资产名称
	Name string `gorm:"type:varchar(200);not null" json:"name"`
	// 交易所
	Exchange string `gorm:"type:varchar(50);not null;uniqueIndex:uq_assets_exchange_symbol" json:"exchange"`
	// 资产类别
	AssetType AssetType `gorm:"type:varchar(20);not null" json:"asset_type"`
	// 计价货币
	Currency string `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`
	// 是否可交易
	IsActive bool `gorm:"not null;default:true" json:"is_active"`
	// 附加元数据，自由格式
	MetaJSON *string `gorm:"type:text" json:"meta_json"`
	// 创建时间
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	// 更新时间
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Asset) TableName() string {
	return "assets"
}

// BeforeCreate 在持久化前生成 UUID
func (a *Asset) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AssetQuery 资产列表查询条件
type AssetQuery struct {
	// 代码精确匹配
	Symbol *string
	// 交易所精确匹配
	Exchange *string
	// 资产类别过滤
	AssetType *AssetType
	// 可交易状态过滤
	IsActive *bool
	// 代码/名称模糊匹配（大小写不敏感）
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

// AssetOrderableFields 返回允许排序的字段白名单
func AssetOrderableFields() []string {
	return []string{"created_at", "updated_at", "symbol", "exchange", "asset_type", "name"}
}

// Normalize 填充默认值并校验分页与排序参数
func (q *AssetQuery) Normalize() error {
	if q.Limit == 0 {
		q.Limit = 50
	}
	if q.Limit < 1 || q.Limit > 200 {
		return apperr.Validation("limit must be between 1 and 200")
	}
	if q.Offset < 0 {
		return apperr.Validation("offset must not be negative")
	}
	if q.AssetType != nil && !q.AssetType.Valid() {
		return apperr.Validation("invalid asset_type: %s", *q.AssetType)
	}
	if q.OrderBy == "" {
		q.OrderBy = "symbol"
	}
	if !slices.Contains(AssetOrderableFields(), q.OrderBy) {
		return apperr.Validation("invalid order_by field: %s", q.OrderBy)
	}
	if q.OrderDir == "" {
		q.OrderDir = "asc"
	}
	if q.OrderDir != "asc" && q.OrderDir != "desc" {
		return apperr.Validation("order_dir must be asc or desc")
	}
	return nil
}

// ApplyFilters 应用资产特有的过滤条件
func (q AssetQuery) ApplyFilters(tx *gorm.DB) *gorm.DB {
	if q.Symbol != nil {
		tx = tx.Where("symbol = ?", *q.Symbol)
	}
	if q.Exchange != nil {
		tx = tx.Where("exchange = ?", *q.Exchange)
	}
	if q.AssetType != nil {
		tx = tx.Where("asset_type = ?", *q.AssetType)
	}
	if q.IsActive != nil {
		tx = tx.Where("is_active = ?", *q.IsActive)
	}
	if q.Search != nil && *q.Search != "" {
		like := "%" + strings.ToLower(*q.Search) + "%"
		tx = tx.Where("LOWER(symbol) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}
	return tx
}

// OrderClause 返回排序字段与方向
func (q AssetQuery) OrderClause() (string, string) {
	return q.OrderBy, q.OrderDir
}

// Page 返回分页参数
func (q AssetQuery) Page() (int, int) {
	return q.Limit, q.Offset
}

// AssetRepository 资产仓储接口
type AssetRepository interface {
	Create(ctx context.Context, asset *Asset) error
	Get(ctx context.Context, id uuid.UUID) (*Asset, error)
	ListAndCount(ctx context.Context, q AssetQuery) ([]*Asset, int64, error)
	Updates(ctx context.Context, asset *Asset, fields map[string]any) error
	Delete(ctx context.Context, asset *Asset) error
}
