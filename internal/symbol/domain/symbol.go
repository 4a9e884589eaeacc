// Package domain 包含交易标的代码的领域模型
package domain

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/wyfcoding/strategydesk/pkg/apperr"
	"gorm.io/gorm"
)

// Symbol 交易标的代码实体
type Symbol struct {
	// ID，自增主键
	ID uint `gorm:"primaryKey" json:"id"`
	// 标的代码，全局唯一
	Symbol string `gorm:"type:varchar(20);not null;uniqueIndex:uq_symbols_symbol" json:"symbol"`
	// 标的名称
	Name *string `gorm:"type:varchar(120)" json:"name"`
	// 是否启用
	Active bool `gorm:"not null;default:true" json:"active"`
	// 创建时间
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	// 更新时间
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Symbol) TableName() string {
	return "symbols"
}

// SymbolQuery 标的列表查询条件
type SymbolQuery struct {
	// 代码精确匹配
	Symbol *string
	// 启用状态过滤
	Active *bool
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

// SymbolOrderableFields 返回允许排序的字段白名单
func SymbolOrderableFields() []string {
	return []string{"created_at", "updated_at", "symbol", "name", "active"}
}

// Normalize 填充默认值并校验分页与排序参数
func (q *SymbolQuery) Normalize() error {
	if q.Limit == 0 {
		q.Limit = 50
	}
	if q.Limit < 1 || q.Limit > 200 {
		return apperr.Validation("limit must be between 1 and 200")
	}
	if q.Offset < 0 {
		return apperr.Validation("offset must not be negative")
	}
	if q.OrderBy == "" {
		q.OrderBy = "symbol"
	}
	if !slices.Contains(SymbolOrderableFields(), q.OrderBy) {
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

// ApplyFilters 应用标的特有的过滤条件
func (q SymbolQuery) ApplyFilters(tx *gorm.DB) *gorm.DB {
	if q.Symbol != nil {
		tx = tx.Where("symbol = ?", *q.Symbol)
	}
	if q.Active != nil {
		tx = tx.Where("active = ?", *q.Active)
	}
	if q.Search != nil && *q.Search != "" {
		like := "%" + strings.ToLower(*q.Search) + "%"
		tx = tx.Where("LOWER(symbol) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}
	return tx
}

// OrderClause 返回排序字段与方向
func (q SymbolQuery) OrderClause() (string, string) {
	return q.OrderBy, q.OrderDir
}

// Page 返回分页参数
func (q SymbolQuery) Page() (int, int) {
	return q.Limit, q.Offset
}

// SymbolRepository 标的仓储接口
type SymbolRepository interface {
	Create(ctx context.Context, symbol *Symbol) error
	Get(ctx context.Context, id uint) (*Symbol, error)
	ListAndCount(ctx context.Context, q SymbolQuery) ([]*Symbol, int64, error)
	Updates(ctx context.Context, symbol *Symbol, fields map[string]any) error
	Delete(ctx context.Context, symbol *Symbol) error
}
