// Package application 提供资产的应用服务
package application

import (
	"context"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/wyfcoding/strategydesk/internal/asset/domain"
	"github.com/wyfcoding/strategydesk/pkg/apperr"
	"github.com/wyfcoding/strategydesk/pkg/logger"
)

// CreateAssetCommand 创建资产命令
type CreateAssetCommand struct {
	Symbol    string
	Name      string
	Exchange  string
	AssetType domain.AssetType
	Currency  *string
	IsActive  *bool
	MetaJSON  *string
}

// UpdateAssetPatch 资产部分更新补丁，nil 字段表示不修改
type UpdateAssetPatch struct {
	Symbol    *string
	Name      *string
	Exchange  *string
	AssetType *domain.AssetType
	Currency  *string
	IsActive  *bool
	MetaJSON  *string
}

// AssetService 资产应用服务
type AssetService struct {
	repo domain.AssetRepository
}

// NewAssetService 创建资产应用服务
func NewAssetService(repo domain.AssetRepository) *AssetService {
	return &AssetService{repo: repo}
}

// Create 创建资产，(exchange, symbol) 冲突返回 Duplicate 错误
func (s *AssetService) Create(ctx context.Context, cmd CreateAssetCommand) (*domain.Asset, error) {
	if err := validateLength("symbol", cmd.Symbol, 1, 50); err != nil {
		return nil, err
	}
	if err := validateLength("name", cmd.Name, 1, 200); err != nil {
		return nil, err
	}
	if err := validateLength("exchange", cmd.Exchange, 1, 50); err != nil {
		return nil, err
	}
	if !cmd.AssetType.Valid() {
		return nil, apperr.Validation("invalid asset_type: %s", cmd.AssetType)
	}

	asset := &domain.Asset{
		Symbol:    cmd.Symbol,
		Name:      cmd.Name,
		Exchange:  cmd.Exchange,
		AssetType: cmd.AssetType,
		Currency:  "USD",
		IsActive:  true,
		MetaJSON:  cmd.MetaJSON,
	}
	if cmd.Currency != nil {
		if err := validateLength("currency", *cmd.Currency, 3, 10); err != nil {
			return nil, err
		}
		asset.Currency = *cmd.Currency
	}
	if cmd.IsActive != nil {
		asset.IsActive = *cmd.IsActive
	}

	if err := s.repo.Create(ctx, asset); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Asset created",
		"asset_id", asset.ID, "exchange", asset.Exchange, "symbol", asset.Symbol)
	return asset, nil
}

// Get 按 ID 获取资产，未命中返回 (nil, nil)
func (s *AssetService) Get(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	return s.repo.Get(ctx, id)
}

// List 按条件返回一页资产与忽略分页的总数
func (s *AssetService) List(ctx context.Context, q domain.AssetQuery) ([]*domain.Asset, int64, error) {
	if err := q.Normalize(); err != nil {
		return nil, 0, err
	}
	return s.repo.ListAndCount(ctx, q)
}

// Update 部分更新资产，只写入补丁中出现的字段
func (s *AssetService) Update(ctx context.Context, id uuid.UUID, patch UpdateAssetPatch) (*domain.Asset, error) {
	asset, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, apperr.NotFound("asset not found")
	}

	fields := make(map[string]any)
	if patch.Symbol != nil {
		if err := validateLength("symbol", *patch.Symbol, 1, 50); err != nil {
			return nil, err
		}
		fields["symbol"] = *patch.Symbol
	}
	if patch.Name != nil {
		if err := validateLength("name", *patch.Name, 1, 200); err != nil {
			return nil, err
		}
		fields["name"] = *patch.Name
	}
	if patch.Exchange != nil {
		if err := validateLength("exchange", *patch.Exchange, 1, 50); err != nil {
			return nil, err
		}
		fields["exchange"] = *patch.Exchange
	}
	if patch.AssetType != nil {
		if !patch.AssetType.Valid() {
			return nil, apperr.Validation("invalid asset_type: %s", *patch.AssetType)
		}
		fields["asset_type"] = *patch.AssetType
	}
	if patch.Currency != nil {
		if err := validateLength("currency", *patch.Currency, 3, 10); err != nil {
			return nil, err
		}
		fields["currency"] = *patch.Currency
	}
	if patch.IsActive != nil {
		fields["is_active"] = *patch.IsActive
	}
	if patch.MetaJSON != nil {
		fields["meta_json"] = *patch.MetaJSON
	}

	if len(fields) == 0 {
		return asset, nil
	}

	if err := s.repo.Updates(ctx, asset, fields); err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

// Delete 物理删除资产
func (s *AssetService) Delete(ctx context.Context, id uuid.UUID) error {
	asset, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if asset == nil {
		return apperr.NotFound("asset not found")
	}

	if err := s.repo.Delete(ctx, asset); err != nil {
		return err
	}

	logger.Info(ctx, "Asset deleted", "asset_id", id)
	return nil
}

func validateLength(field, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if length < min || length > max {
		return apperr.Validation("%s must be between %d and %d characters", field, min, max)
	}
	return nil
}
