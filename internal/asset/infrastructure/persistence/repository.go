// Package persistence 提供资产仓储的 GORM 实现
package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/wyfcoding/strategydesk/internal/asset/domain"
	"github.com/wyfcoding/strategydesk/pkg/repository"
	"gorm.io/gorm"
)

type assetRepository struct {
	base *repository.Repository[domain.Asset]
}

// NewAssetRepository 创建资产仓储
func NewAssetRepository(db *gorm.DB) domain.AssetRepository {
	return &assetRepository{
		base: repository.New[domain.Asset](db, repository.Options{
			DuplicateMessage:  "asset with this exchange+symbol already exists",
			OrderableFields:   domain.AssetOrderableFields(),
			DefaultOrderField: "symbol",
			DefaultOrderDesc:  false,
		}),
	}
}

func (r *assetRepository) Create(ctx context.Context, asset *domain.Asset) error {
	return r.base.Create(ctx, asset)
}

func (r *assetRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	return r.base.Get(ctx, id)
}

func (r *assetRepository) ListAndCount(ctx context.Context, q domain.AssetQuery) ([]*domain.Asset, int64, error) {
	return r.base.ListAndCount(ctx, q)
}

func (r *assetRepository) Updates(ctx context.Context, asset *domain.Asset, fields map[string]any) error {
	return r.base.Updates(ctx, asset, fields)
}

func (r *assetRepository) Delete(ctx context.Context, asset *domain.Asset) error {
	return r.base.Delete(ctx, asset)
}
