// Package persistence 提供标的仓储的 GORM 实现
package persistence

import (
	"context"

	"github.com/wyfcoding/strategydesk/internal/symbol/domain"
	"github.com/wyfcoding/strategydesk/pkg/repository"
	"gorm.io/gorm"
)

type symbolRepository struct {
	base *repository.Repository[domain.Symbol]
}

// NewSymbolRepository 创建标的仓储
func NewSymbolRepository(db *gorm.DB) domain.SymbolRepository {
	return &symbolRepository{
		base: repository.New[domain.Symbol](db, repository.Options{
			DuplicateMessage:  "symbol already exists",
			OrderableFields:   domain.SymbolOrderableFields(),
			DefaultOrderField: "symbol",
			DefaultOrderDesc:  false,
		}),
	}
}

func (r *symbolRepository) Create(ctx context.Context, symbol *domain.Symbol) error {
	return r.base.Create(ctx, symbol)
}

func (r *symbolRepository) Get(ctx context.Context, id uint) (*domain.Symbol, error) {
	return r.base.Get(ctx, id)
}

func (r *symbolRepository) ListAndCount(ctx context.Context, q domain.SymbolQuery) ([]*domain.Symbol, int64, error) {
	return r.base.ListAndCount(ctx, q)
}

func (r *symbolRepository) Updates(ctx context.Context, symbol *domain.Symbol, fields map[string]any) error {
	return r.base.Updates(ctx, symbol, fields)
}

func (r *symbolRepository) Delete(ctx context.Context, symbol *domain.Symbol) error {
	return r.base.Delete(ctx, symbol)
}
