// Package application 提供标的的应用服务
package application

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/wyfcoding/strategydesk/internal/symbol/domain"
	"github.com/wyfcoding/strategydesk/pkg/apperr"
	"github.com/wyfcoding/strategydesk/pkg/cache"
	"github.com/wyfcoding/strategydesk/pkg/logger"
)

const symbolCacheTTL = 5 * time.Minute

// CreateSymbolCommand 创建标的命令
type CreateSymbolCommand struct {
	Symbol string
	Name   *string
	Active *bool
}

// UpdateSymbolPatch 标的部分更新补丁，nil 字段表示不修改
type UpdateSymbolPatch struct {
	Symbol *string
	Name   *string
	Active *bool
}

// SymbolService 标的应用服务
type SymbolService struct {
	repo  domain.SymbolRepository
	cache *cache.RedisCache
}

// NewSymbolService 创建标的应用服务
func NewSymbolService(repo domain.SymbolRepository) *SymbolService {
	return &SymbolService{repo: repo}
}

// WithCache 为读路径挂接 Redis 缓存
func (s *SymbolService) WithCache(c *cache.RedisCache) *SymbolService {
	s.cache = c
	return s
}

// Create 创建标的，代码冲突返回 Duplicate 错误
func (s *SymbolService) Create(ctx context.Context, cmd CreateSymbolCommand) (*domain.Symbol, error) {
	if err := validateSymbolCode(cmd.Symbol); err != nil {
		return nil, err
	}
	if err := validateSymbolName(cmd.Name); err != nil {
		return nil, err
	}

	symbol := &domain.Symbol{
		Symbol: cmd.Symbol,
		Name:   cmd.Name,
		Active: true,
	}
	if cmd.Active != nil {
		symbol.Active = *cmd.Active
	}

	if err := s.repo.Create(ctx, symbol); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Symbol created", "symbol_id", symbol.ID, "symbol", symbol.Symbol)
	return symbol, nil
}

// Get 按 ID 获取标的，未命中返回 (nil, nil)。
// 挂接缓存时走读穿透：命中直接返回，未命中回源并写缓存，数据库未命中不缓存。
func (s *SymbolService) Get(ctx context.Context, id uint) (*domain.Symbol, error) {
	key := symbolCacheKey(id)
	if s.cache != nil {
		var cached domain.Symbol
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil && cached.ID != 0 {
			return &cached, nil
		}
	}

	symbol, err := s.repo.Get(ctx, id)
	if err != nil || symbol == nil {
		return symbol, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, symbol, symbolCacheTTL); err != nil {
			logger.Warn(ctx, "Failed to cache symbol", "symbol_id", id, "error", err)
		}
	}
	return symbol, nil
}

// List 按条件返回一页标的与忽略分页的总数
func (s *SymbolService) List(ctx context.Context, q domain.SymbolQuery) ([]*domain.Symbol, int64, error) {
	if err := q.Normalize(); err != nil {
		return nil, 0, err
	}
	return s.repo.ListAndCount(ctx, q)
}

// Update 部分更新标的，只写入补丁中出现的字段
func (s *SymbolService) Update(ctx context.Context, id uint, patch UpdateSymbolPatch) (*domain.Symbol, error) {
	symbol, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if symbol == nil {
		return nil, apperr.NotFound("symbol not found")
	}

	fields := make(map[string]any)
	if patch.Symbol != nil {
		if err := validateSymbolCode(*patch.Symbol); err != nil {
			return nil, err
		}
		fields["symbol"] = *patch.Symbol
	}
	if patch.Name != nil {
		if err := validateSymbolName(patch.Name); err != nil {
			return nil, err
		}
		fields["name"] = *patch.Name
	}
	if patch.Active != nil {
		fields["active"] = *patch.Active
	}

	if len(fields) == 0 {
		return symbol, nil
	}

	if err := s.repo.Updates(ctx, symbol, fields); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	return s.repo.Get(ctx, id)
}

// Delete 物理删除标的
func (s *SymbolService) Delete(ctx context.Context, id uint) error {
	symbol, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if symbol == nil {
		return apperr.NotFound("symbol not found")
	}

	if err := s.repo.Delete(ctx, symbol); err != nil {
		return err
	}
	s.invalidate(ctx, id)

	logger.Info(ctx, "Symbol deleted", "symbol_id", id)
	return nil
}

func (s *SymbolService) invalidate(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, symbolCacheKey(id)); err != nil {
		logger.Warn(ctx, "Failed to invalidate symbol cache", "symbol_id", id, "error", err)
	}
}

func symbolCacheKey(id uint) string {
	return fmt.Sprintf("symbol:%d", id)
}

func validateSymbolCode(code string) error {
	length := utf8.RuneCountInString(code)
	if length < 1 || length > 20 {
		return apperr.Validation("symbol must be between 1 and 20 characters")
	}
	return nil
}

func validateSymbolName(name *string) error {
	if name == nil {
		return nil
	}
	if utf8.RuneCountInString(*name) > 120 {
		return apperr.Validation("name must not exceed 120 characters")
	}
	return nil
}
