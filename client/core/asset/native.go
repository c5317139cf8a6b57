package asset

import (
	"context"
	"fmt"
	"math/big"

	"github.com/emberwallet/v1/client/core/transport"
	"github.com/emberwallet/v1/pkg/utils"
)

// NativeAsset 主币资产（如本地开发链的ETH）
//
// 主币转账直接通过节点提交 value 转账；留言以 UTF-8 字节附加在
// 交易 data 字段中，因此主币支持转账留言。
type NativeAsset struct {
	id      string
	name    string
	network string
	client  transport.Client
}

// 确保实现接口
var _ Asset = (*NativeAsset)(nil)

// NewNativeAsset 创建主币资产
func NewNativeAsset(id, name, network string, client transport.Client) *NativeAsset {
	return &NativeAsset{
		id:      id,
		name:    name,
		network: network,
		client:  client,
	}
}

// ID 资产标识符
func (a *NativeAsset) ID() string { return a.id }

// Name 资产显示名称
func (a *NativeAsset) Name() string { return a.name }

// Network 所属网络标识
func (a *NativeAsset) Network() string { return a.network }

// SupportsMessages 主币支持转账留言
func (a *NativeAsset) SupportsMessages() bool { return true }

// GetDisplayValue 将wei数量转换为显示单位字符串
func (a *NativeAsset) GetDisplayValue(baseUnits *big.Int) string {
	return utils.FormatWeiToDecimal(baseUnits)
}

// Send 执行主币转账，等待上链后返回回执
func (a *NativeAsset) Send(ctx context.Context, params *SendParams) (*transport.Receipt, error) {
	value, err := resolveValue(params, utils.ParseDecimalToWei)
	if err != nil {
		return nil, err
	}

	req := &transport.SendTxRequest{
		From:  params.From,
		To:    params.To,
		Value: value,
	}
	if params.Message != "" {
		req.Data = []byte(params.Message)
	}

	txHash, err := a.client.SendTransaction(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("提交主币转账失败: %w", err)
	}

	receipt, err := a.client.WaitForReceipt(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("等待转账回执失败: %w", err)
	}
	return receipt, nil
}
