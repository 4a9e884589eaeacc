// Package repository 提供基于 GORM 的通用仓储实现。
// 四类实体（策略、交易对、资产、订单）共享同一套 CRUD 与过滤分页算法，
// 实体差异只体现在各自的 ListQuery 实现与仓储选项上。
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/strategydesk/pkg/apperr"
	"github.com/wyfcoding/strategydesk/pkg/contextx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListQuery 列表查询契约：实体自定义过滤条件、排序字段与分页参数
type ListQuery interface {
	// ApplyFilters 将实体特有的过滤条件追加到查询上
	ApplyFilters(tx *gorm.DB) *gorm.DB
	// OrderClause 返回排序字段与方向（asc/desc）
	OrderClause() (field string, direction string)
	// Page 返回分页参数
	Page() (limit int, offset int)
}

// Options 仓储选项
type Options struct {
	// DuplicateMessage 唯一约束冲突时返回给调用方的消息
	DuplicateMessage string
	// OrderableFields 允许排序的字段白名单
	OrderableFields []string
	// DefaultOrderField 白名单外字段回退使用的排序字段
	DefaultOrderField string
	// DefaultOrderDesc 回退排序是否为降序
	DefaultOrderDesc bool
}

// Repository 通用仓储，T 为实体类型
type Repository[T any] struct {
	db                *gorm.DB
	duplicateMessage  string
	orderable         map[string]struct{}
	defaultOrderField string
	defaultOrderDesc  bool
}

// New 创建通用仓储
func New[T any](db *gorm.DB, opts Options) *Repository[T] {
	orderable := make(map[string]struct{}, len(opts.OrderableFields))
	for _, f := range opts.OrderableFields {
		orderable[f] = struct{}{}
	}
	if opts.DuplicateMessage == "" {
		opts.DuplicateMessage = "entity already exists"
	}
	return &Repository[T]{
		db:                db,
		duplicateMessage:  opts.DuplicateMessage,
		orderable:         orderable,
		defaultOrderField: opts.DefaultOrderField,
		defaultOrderDesc:  opts.DefaultOrderDesc,
	}
}

// Create 持久化新实体，唯一约束冲突转换为 Duplicate 业务错误
func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.getDB(ctx).Create(entity).Error; err != nil {
		return r.translate(err)
	}
	return nil
}

// Get 按主键获取实体，未命中返回 (nil, nil)
func (r *Repository[T]) Get(ctx context.Context, id any) (*T, error) {
	var entity T
	if err := r.getDB(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	return &entity, nil
}

// ListAndCount 按查询条件返回一页实体，并独立统计忽略分页的总数
func (r *Repository[T]) ListAndCount(ctx context.Context, q ListQuery) ([]*T, int64, error) {
	var total int64
	if err := q.ApplyFilters(r.getDB(ctx).Model(new(T))).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count entities: %w", err)
	}

	limit, offset := q.Page()

	var entities []*T
	tx := q.ApplyFilters(r.getDB(ctx).Model(new(T)))
	tx = tx.Order(r.orderClause(q)).Limit(limit).Offset(offset)
	if err := tx.Find(&entities).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list entities: %w", err)
	}

	return entities, total, nil
}

// Updates 按字段补丁更新实体，只写入补丁中出现的字段
func (r *Repository[T]) Updates(ctx context.Context, entity *T, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.getDB(ctx).Model(entity).Updates(fields).Error; err != nil {
		return r.translate(err)
	}
	return nil
}

// Delete 物理删除实体
func (r *Repository[T]) Delete(ctx context.Context, entity *T) error {
	if err := r.getDB(ctx).Delete(entity).Error; err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}
	return nil
}

// orderClause 构造排序子句，白名单外的字段回退到默认排序
func (r *Repository[T]) orderClause(q ListQuery) clause.OrderByColumn {
	field, direction := q.OrderClause()
	desc := direction == "desc"
	if _, ok := r.orderable[field]; !ok {
		field = r.defaultOrderField
		desc = r.defaultOrderDesc
	}
	return clause.OrderByColumn{Column: clause.Column{Name: field}, Desc: desc}
}

// translate 将存储层错误转换为业务错误
func (r *Repository[T]) translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Duplicate(r.duplicateMessage)
	}
	return err
}

// getDB 优先使用 context 中携带的事务
func (r *Repository[T]) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}
