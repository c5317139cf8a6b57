// Package asset 提供资产能力抽象与资产注册表
//
// 资产是钱包可以发送的一种币种（主币或合约代币）。不同资产在
// 留言支持、金额换算、转账提交方式上行为不同，通过统一的能力
// 接口对上层流程屏蔽差异。
package asset

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/emberwallet/v1/client/core/transport"
)

var (
	// ErrUnknownAsset 资产未注册
	ErrUnknownAsset = errors.New("unknown asset")

	// ErrMissingAmount 转账参数中没有任何形式的金额
	ErrMissingAmount = errors.New("missing transfer amount")
)

// SendParams 转账参数
//
// 金额以两种形式之一给出：
//   - Ether: 显示单位的小数字符串（如 "1.5"）
//   - Value: 最小单位的精确数量（send-max场景下由余额快照钉住）
//
// Value 优先于 Ether。
type SendParams struct {
	From    string   // 发送方地址
	To      string   // 接收方地址
	Ether   string   // 显示单位金额（可选）
	Value   *big.Int // 最小单位金额（可选，优先）
	Message string   // 留言（仅支持留言的资产使用）
}

// Asset 资产能力接口
type Asset interface {
	// ID 资产标识符
	ID() string

	// Name 资产显示名称
	Name() string

	// Network 所属网络标识
	Network() string

	// SupportsMessages 是否支持转账留言
	SupportsMessages() bool

	// GetDisplayValue 将最小单位数量转换为显示单位字符串
	GetDisplayValue(baseUnits *big.Int) string

	// Send 执行转账，等待上链后返回回执
	Send(ctx context.Context, params *SendParams) (*transport.Receipt, error)
}

// Registry 已注册资产集合
//
// 注册顺序即展示顺序；ID在集合内必须唯一。
type Registry struct {
	assets []Asset
	byID   map[string]Asset
}

// NewRegistry 创建资产注册表
func NewRegistry(assets ...Asset) (*Registry, error) {
	r := &Registry{
		byID: make(map[string]Asset, len(assets)),
	}
	for _, a := range assets {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register 注册资产
func (r *Registry) Register(a Asset) error {
	if _, exists := r.byID[a.ID()]; exists {
		return fmt.Errorf("资产ID重复: %s", a.ID())
	}
	r.assets = append(r.assets, a)
	r.byID[a.ID()] = a
	return nil
}

// Get 按ID查找资产
func (r *Registry) Get(id string) (Asset, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// MustGet 按ID查找资产，未注册时返回 ErrUnknownAsset
func (r *Registry) MustGet(id string) (Asset, error) {
	a, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAsset, id)
	}
	return a, nil
}

// First 返回第一个注册的资产（默认资产），集合为空时返回 nil
func (r *Registry) First() Asset {
	if len(r.assets) == 0 {
		return nil
	}
	return r.assets[0]
}

// All 按注册顺序返回所有资产
func (r *Registry) All() []Asset {
	out := make([]Asset, len(r.assets))
	copy(out, r.assets)
	return out
}

// resolveValue 从转账参数中解析最小单位金额
// Value 优先；否则解析 Ether 显示金额
func resolveValue(params *SendParams, parse func(string) (*big.Int, error)) (*big.Int, error) {
	if params.Value != nil {
		return params.Value, nil
	}
	if params.Ether == "" {
		return nil, ErrMissingAmount
	}
	value, err := parse(params.Ether)
	if err != nil {
		return nil, fmt.Errorf("解析金额失败: %w", err)
	}
	return value, nil
}
