// Package account 提供收款账户的检索与解析
//
// 功能说明：
// - SearchProvider 是可插拔的账户来源（静态地址簿、Redis地址簿等）
// - Resolver 聚合多个来源：精确解析用于输入即选中，模糊检索用于候选列表
// - 检索结果按来源注册顺序拼接，单个来源失败只记日志不影响其余来源
//
// 依赖关系：
// - allegro/bigcache: 精确解析结果的短期缓存
// - pkg/interfaces/infrastructure/log: 日志接口
package account

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/emberwallet/v1/pkg/interfaces/infrastructure/log"
)

// AccountCandidate 账户候选项
//
// 候选项是不可变值对象，来自某个检索来源。
type AccountCandidate struct {
	// Address 账户地址（0x前缀十六进制）
	Address string `json:"address"`
	// Name 显示名称（可为空）
	Name string `json:"name"`
	// Source 提供该候选的来源名称
	Source string `json:"source"`
}

// SearchProvider 账户检索来源
type SearchProvider interface {
	// Name 来源名称，用于候选项标注与日志
	Name() string

	// Search 模糊检索
	// 返回：匹配的候选项列表，无匹配时返回空切片
	Search(ctx context.Context, query string) ([]*AccountCandidate, error)
}

// resolveCacheTTL 精确解析缓存的生存时间
const resolveCacheTTL = 10 * time.Minute

// Resolver 账户解析器
//
// 功能说明：
// - Resolve 在所有来源中查找与输入完全一致的账户（地址或名称）
// - Search 并发查询所有来源并按注册顺序拼接结果
type Resolver struct {
	providers []SearchProvider
	memo      *bigcache.BigCache
	logger    log.Logger
}

// NewResolver 创建账户解析器
func NewResolver(logger log.Logger, providers ...SearchProvider) (*Resolver, error) {
	memo, err := bigcache.New(context.Background(), bigcache.DefaultConfig(resolveCacheTTL))
	if err != nil {
		return nil, fmt.Errorf("创建解析缓存失败: %w", err)
	}
	return &Resolver{
		providers: providers,
		memo:      memo,
		logger:    logger,
	}, nil
}

// Register 追加一个检索来源
//
// 来源顺序决定检索结果的拼接顺序。
func (r *Resolver) Register(provider SearchProvider) {
	r.providers = append(r.providers, provider)
}

// Resolve 精确解析输入文本
//
// 参数：
// - text: 用户输入，与候选的地址或名称做不区分大小写的全等比较
//
// 返回：无匹配时返回 (nil, nil)
func (r *Resolver) Resolve(ctx context.Context, text string) (*AccountCandidate, error) {
	key := strings.ToLower(strings.TrimSpace(text))
	if key == "" {
		return nil, nil
	}

	if cached, err := r.memo.Get(key); err == nil {
		var candidate AccountCandidate
		if err := json.Unmarshal(cached, &candidate); err == nil {
			return &candidate, nil
		}
	}

	for _, provider := range r.providers {
		candidates, err := provider.Search(ctx, text)
		if err != nil {
			r.logger.Warnf("来源 %s 解析失败: %v", provider.Name(), err)
			continue
		}
		for _, candidate := range candidates {
			if strings.EqualFold(candidate.Address, key) || strings.EqualFold(candidate.Name, key) {
				if encoded, err := json.Marshal(candidate); err == nil {
					_ = r.memo.Set(key, encoded)
				}
				return candidate, nil
			}
		}
	}
	return nil, nil
}

// Search 模糊检索所有来源
//
// 所有来源并发查询，结果按来源注册顺序拼接。
// 单个来源失败视为贡献空结果，只记日志。
func (r *Resolver) Search(ctx context.Context, query string) []*AccountCandidate {
	if strings.TrimSpace(query) == "" {
		return nil
	}

	type slot struct {
		candidates []*AccountCandidate
	}
	slots := make([]slot, len(r.providers))
	done := make(chan int, len(r.providers))

	for i, provider := range r.providers {
		go func(i int, p SearchProvider) {
			candidates, err := p.Search(ctx, query)
			if err != nil {
				r.logger.Warnf("来源 %s 检索失败: %v", p.Name(), err)
			} else {
				slots[i].candidates = candidates
			}
			done <- i
		}(i, provider)
	}

	for range r.providers {
		select {
		case <-done:
		case <-ctx.Done():
			return nil
		}
	}

	var merged []*AccountCandidate
	for i := range slots {
		merged = append(merged, slots[i].candidates...)
	}
	return merged
}

// Close 释放解析缓存
func (r *Resolver) Close() error {
	return r.memo.Close()
}
