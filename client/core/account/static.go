package account

import (
	"context"
	"strings"
)

// Entry 地址簿条目
type Entry struct {
	// Address 账户地址
	Address string
	// Name 显示名称
	Name string
}

// StaticProvider 静态地址簿来源
//
// 功能说明：
// - 持有进程内的固定地址簿，按名称或地址子串匹配
// - 匹配不区分大小写，条目顺序即返回顺序
type StaticProvider struct {
	name    string
	entries []Entry
}

var _ SearchProvider = (*StaticProvider)(nil)

// NewStaticProvider 创建静态地址簿来源
func NewStaticProvider(name string, entries []Entry) *StaticProvider {
	return &StaticProvider{name: name, entries: entries}
}

// Name 来源名称
func (p *StaticProvider) Name() string { return p.name }

// Search 子串匹配地址簿条目
func (p *StaticProvider) Search(ctx context.Context, query string) ([]*AccountCandidate, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	var matches []*AccountCandidate
	for _, entry := range p.entries {
		if strings.Contains(strings.ToLower(entry.Name), needle) ||
			strings.Contains(strings.ToLower(entry.Address), needle) {
			matches = append(matches, &AccountCandidate{
				Address: entry.Address,
				Name:    entry.Name,
				Source:  p.name,
			})
		}
	}
	return matches, nil
}
