package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"civic_feed/internal/domain/user/model"
	"civic_feed/internal/domain/user/repository"
	"civic_feed/pkg/cache"

	"go.uber.org/zap"
)

// 缓存键常量
const (
	SummaryCacheKeyPrefix = "user:summary:"
	DefaultSummaryTTL     = 10 * time.Minute
)

// Directory 只读的用户目录
// 只缓存作者展示信息；handle 解析每次都查库，保证提及结果不过期
type Directory interface {
	Get(ctx context.Context, id string) (model.Summary, error)
	Summaries(ctx context.Context, ids []string) (map[string]model.Summary, error)
	ResolveHandles(ctx context.Context, handles []string, excludingID string) ([]model.HandleRef, error)
}

type directory struct {
	repo  repository.UserRepository
	cache cache.CacheService
	ttl   time.Duration
	log   *zap.Logger
}

// NewDirectory 创建用户目录
func NewDirectory(repo repository.UserRepository, c cache.CacheService, ttl time.Duration, log *zap.Logger) Directory {
	if ttl <= 0 {
		ttl = DefaultSummaryTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &directory{repo: repo, cache: c, ttl: ttl, log: log}
}

func (d *directory) cacheKey(id string) string {
	return fmt.Sprintf("%s%s", SummaryCacheKeyPrefix, id)
}

// Get 获取单个用户的展示信息
func (d *directory) Get(ctx context.Context, id string) (model.Summary, error) {
	m, err := d.Summaries(ctx, []string{id})
	if err != nil {
		return model.Summary{}, err
	}
	s, ok := m[id]
	if !ok {
		return model.Summary{}, repository.ErrNotFound
	}
	return s, nil
}

// Summaries 批量获取展示信息，未找到的用户不出现在结果中
// 先一次性读缓存，未命中的再批量查库
func (d *directory) Summaries(ctx context.Context, ids []string) (map[string]model.Summary, error) {
	result := make(map[string]model.Summary, len(ids))
	wanted := uniqueIDs(ids)
	if len(wanted) == 0 {
		return result, nil
	}

	keys := make([]string, len(wanted))
	for i, id := range wanted {
		keys[i] = d.cacheKey(id)
	}
	cached, err := d.cache.GetMany(ctx, keys)
	if err != nil {
		// 缓存故障不影响业务逻辑，只记录日志
		d.log.Warn("user summary cache read failed", zap.Int("ids", len(wanted)), zap.Error(err))
		cached = nil
	}

	var misses []string
	for i, id := range wanted {
		var s model.Summary
		if raw, ok := cached[keys[i]]; ok {
			if err := json.Unmarshal(raw, &s); err == nil {
				result[id] = s
				continue
			}
			d.log.Warn("user summary cache entry corrupt", zap.String("user_id", id))
		}
		misses = append(misses, id)
	}

	if len(misses) == 0 {
		return result, nil
	}

	users, err := d.repo.GetByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}
	for i := range users {
		s := users[i].ToSummary()
		result[s.ID] = s
		if err := d.cache.Set(ctx, d.cacheKey(s.ID), s, d.ttl); err != nil {
			d.log.Warn("user summary cache write failed", zap.String("user_id", s.ID), zap.Error(err))
		}
	}
	return result, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ResolveHandles 解析被提及的用户
func (d *directory) ResolveHandles(ctx context.Context, handles []string, excludingID string) ([]model.HandleRef, error) {
	return d.repo.FindByHandles(ctx, handles, excludingID)
}
