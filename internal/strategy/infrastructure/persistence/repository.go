// Package persistence 提供策略仓储的 GORM 实现
package persistence

import (
	"context"

	"github.com/wyfcoding/strategydesk/internal/strategy/domain"
	"github.com/wyfcoding/strategydesk/pkg/repository"
	"gorm.io/gorm"
)

type strategyRepository struct {
	base *repository.Repository[domain.Strategy]
}

// NewStrategyRepository 创建策略仓储
func NewStrategyRepository(db *gorm.DB) domain.StrategyRepository {
	return &strategyRepository{
		base: repository.New[domain.Strategy](db, repository.Options{
			DuplicateMessage:  "strategy with this name already exists",
			OrderableFields:   domain.StrategyOrderableFields(),
			DefaultOrderField: "created_at",
			DefaultOrderDesc:  true,
		}),
	}
}

func (r *strategyRepository) Create(ctx context.Context, strategy *domain.Strategy) error {
	return r.base.Create(ctx, strategy)
}

func (r *strategyRepository) Get(ctx context.Context, id uint) (*domain.Strategy, error) {
	return r.base.Get(ctx, id)
}

func (r *strategyRepository) ListAndCount(ctx context.Context, q domain.StrategyQuery) ([]*domain.Strategy, int64, error) {
	return r.base.ListAndCount(ctx, q)
}

func (r *strategyRepository) Updates(ctx context.Context, strategy *domain.Strategy, fields map[string]any) error {
	return r.base.Updates(ctx, strategy, fields)
}

func (r *strategyRepository) Delete(ctx context.Context, strategy *domain.Strategy) error {
	return r.base.Delete(ctx, strategy)
}
