// Package application 提供策略的应用服务：校验命令并编排仓储调用
package application

import (
	"context"
	"unicode/utf8"

	"github.com/wyfcoding/strategydesk/internal/strategy/domain"
	"github.com/wyfcoding/strategydesk/pkg/apperr"
	"github.com/wyfcoding/strategydesk/pkg/logger"
)

// CreateStrategyCommand 创建策略命令
type CreateStrategyCommand struct {
	Name        string
	Description *string
	IsActive    *bool
}

// UpdateStrategyPatch 策略部分更新补丁，nil 字段表示不修改
type UpdateStrategyPatch struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// StrategyService 策略应用服务
type StrategyService struct {
	repo domain.StrategyRepository
}

// NewStrategyService 创建策略应用服务
func NewStrategyService(repo domain.StrategyRepository) *StrategyService {
	return &StrategyService{repo: repo}
}

// Create 创建策略，名称冲突返回 Duplicate 错误
func (s *StrategyService) Create(ctx context.Context, cmd CreateStrategyCommand) (*domain.Strategy, error) {
	if err := validateStrategyName(cmd.Name); err != nil {
		return nil, err
	}

	strategy := &domain.Strategy{
		Name:        cmd.Name,
		Description: cmd.Description,
		IsActive:    true,
	}
	if cmd.IsActive != nil {
		strategy.IsActive = *cmd.IsActive
	}

	if err := s.repo.Create(ctx, strategy); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Strategy created", "strategy_id", strategy.ID, "name", strategy.Name)
	return strategy, nil
}

// Get 按 ID 获取策略，未命中返回 (nil, nil)
func (s *StrategyService) Get(ctx context.Context, id uint) (*domain.Strategy, error) {
	return s.repo.Get(ctx, id)
}

// List 按条件返回一页策略与忽略分页的总数
func (s *StrategyService) List(ctx context.Context, q domain.StrategyQuery) ([]*domain.Strategy, int64, error) {
	if err := q.Normalize(); err != nil {
		return nil, 0, err
	}
	return s.repo.ListAndCount(ctx, q)
}

// Update 部分更新策略，只写入补丁中出现的字段
func (s *StrategyService) Update(ctx context.Context, id uint, patch UpdateStrategyPatch) (*domain.Strategy, error) {
	strategy, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if strategy == nil {
		return nil, apperr.NotFound("strategy not found")
	}

	fields := make(map[string]any)
	if patch.Name != nil {
		if err := validateStrategyName(*patch.Name); err != nil {
			return nil, err
		}
		fields["name"] = *patch.Name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.IsActive != nil {
		fields["is_active"] = *patch.IsActive
	}

	if len(fields) == 0 {
		return strategy, nil
	}

	if err := s.repo.Updates(ctx, strategy, fields); err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

// Delete 物理删除策略
func (s *StrategyService) Delete(ctx context.Context, id uint) error {
	strategy, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if strategy == nil {
		return apperr.NotFound("strategy not found")
	}

	if err := s.repo.Delete(ctx, strategy); err != nil {
		return err
	}

	logger.Info(ctx, "Strategy deleted", "strategy_id", id)
	return nil
}

func validateStrategyName(name string) error {
	length := utf8.RuneCountInString(name)
	if length < 1 || length > 100 {
		return apperr.Validation("name must be between 1 and 100 characters")
	}
	return nil
}
