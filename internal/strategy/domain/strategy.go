// Package domain 包含交易策略的领域模型
package domain

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/wyfcoding/strategydesk/pkg/apperr"
	"gorm.io/gorm"
)

// Strategy 交易策略实体
type Strategy struct {
	// 策略 ID，自增主键
	ID uint `gorm:"primaryKey" json:"id"`
	// 策略名称，全局唯一
	Name string `gorm:"type:varchar(100);not null;uniqueIndex:uq_strategies_name" json:"name"`
	// 策略描述
	Description *string `gorm:"type:text" json:"description"`
	// 是否启用
	IsActive bool `gorm:"not null;default:true" json:"is_active"`
	// 创建时间
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	// 更新时间，每次变更刷新
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Strategy) TableName() string {
	return "strategies"
}

// StrategyQuery 策略列表查询条件
type StrategyQuery struct {
	// 名称精确匹配
	Name *string
	// 启用状态过滤
	IsActive *bool
	// 名称/描述模糊匹配（大小写不敏感）
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

// StrategyOrderableFields 返回允许排序的字段白名单
func StrategyOrderableFields() []string {
	return []string{"created_at", "updated_at", "name", "is_active"}
}

// Normalize 填充默认值并校验分页与排序参数
func (q *StrategyQuery) Normalize() error {
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
		q.OrderBy = "created_at"
	}
	if !slices.Contains(StrategyOrderableFields(), q.OrderBy) {
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

// ApplyFilters 应用策略特有的过滤条件
func (q StrategyQuery) ApplyFilters(tx *gorm.DB) *gorm.DB {
	if q.Name != nil {
		tx = tx.Where("name = ?", *q.Name)
	}
	if q.IsActive != nil {
		tx = tx.Where("is_active = ?", *q.IsActive)
	}
	if q.Search != nil && *q.Search != "" {
		like := "%" + strings.ToLower(*q.Search) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	return tx
}

// OrderClause 返回排序字段与方向
func (q StrategyQuery) OrderClause() (string, string) {
	return q.OrderBy, q.OrderDir
}

// Page 返回分页参数
func (q StrategyQuery) Page() (int, int) {
	return q.Limit, q.Offset
}

// StrategyRepository 策略仓储接口
type StrategyRepository interface {
	Create(ctx context.Context, strategy *Strategy) error
	Get(ctx context.Context, id uint) (*Strategy, error)
	ListAndCount(ctx context.Context, q StrategyQuery) ([]*Strategy, int64, error)
	Updates(ctx context.Context, strategy *Strategy, fields map[string]any) error
	Delete(ctx context.Context, strategy *Strategy) error
}
