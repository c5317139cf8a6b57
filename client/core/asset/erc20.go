package asset

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/emberwallet/v1/client/core/transport"
	"github.com/ethereum/go-ethereum/common"
)

// erc20TransferMethodID transfer(address,uint256) 的方法选择器
var erc20TransferMethodID = []byte{0xa9, 0x05, 0x9c, 0xbb}

// ERC20Asset 合约代币资产
//
// 转账通过调用代币合约的 transfer(address,uint256) 完成，
// value 恒为0。合约代币不支持转账留言。
type ERC20Asset struct {
	id       string
	name     string
	network  string
	address  string // 代币合约地址
	decimals uint8  // 代币小数位数
	client   transport.Client
}

// 确保实现接口
var _ Asset = (*ERC20Asset)(nil)

// NewERC20Asset 创建合约代币资产
// decimals 传0时按惯例使用18位
func NewERC20Asset(id, name, network, address string, decimals uint8, client transport.Client) *ERC20Asset {
	if decimals == 0 {
		decimals = 18
	}
	return &ERC20Asset{
		id:       id,
		name:     name,
		network:  network,
		address:  address,
		decimals: decimals,
		client:   client,
	}
}

// ID 资产标识符
func (a *ERC20Asset) ID() string { return a.id }

// Name 资产显示名称
func (a *ERC20Asset) Name() string { return a.name }

// Network 所属网络标识
func (a *ERC20Asset) Network() string { return a.network }

// Address 代币合约地址
func (a *ERC20Asset) Address() string { return a.address }

// SupportsMessages 合约代币不支持转账留言
func (a *ERC20Asset) SupportsMessages() bool { return false }

// GetDisplayValue 将最小单位数量转换为显示单位字符串
func (a *ERC20Asset) GetDisplayValue(baseUnits *big.Int) string {
	if baseUnits == nil {
		return "0.0"
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(a.decimals)), nil)
	integerPart := new(big.Int)
	fractionalPart := new(big.Int)
	integerPart.QuoRem(baseUnits, divisor, fractionalPart)

	if fractionalPart.Sign() == 0 {
		return fmt.Sprintf("%s.0", integerPart.String())
	}

	fractionalStr := fmt.Sprintf("%0*s", int(a.decimals), fractionalPart.String())
	fractionalStr = strings.TrimRight(fractionalStr, "0")
	return fmt.Sprintf("%s.%s", integerPart.String(), fractionalStr)
}

// parseDisplayValue 将显示单位字符串解析为最小单位数量
func (a *ERC20Asset) parseDisplayValue(display string) (*big.Int, error) {
	rat, ok := new(big.Rat).SetString(strings.TrimSpace(display))
	if !ok {
		return nil, fmt.Errorf("金额格式无效: %s", display)
	}
	if rat.Sign() < 0 {
		return nil, fmt.Errorf("金额不能为负数: %s", display)
	}

	multiplier := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(a.decimals)), nil)
	valueRat := new(big.Rat).Mul(rat, new(big.Rat).SetInt(multiplier))
	if !valueRat.IsInt() {
		return nil, fmt.Errorf("小数精度超出限制（最多%d位）: %s", a.decimals, display)
	}
	return new(big.Int).Set(valueRat.Num()), nil
}

// encodeTransfer 编码 transfer(address,uint256) 调用数据
func encodeTransfer(to string, value *big.Int) []byte {
	data := make([]byte, 0, 4+32+32)
	data = append(data, erc20TransferMethodID...)
	data = append(data, common.LeftPadBytes(common.HexToAddress(to).Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(value.Bytes(), 32)...)
	return data
}

// Send 执行代币转账，等待上链后返回回执
func (a *ERC20Asset) Send(ctx context.Context, params *SendParams) (*transport.Receipt, error) {
	value, err := resolveValue(params, a.parseDisplayValue)
	if err != nil {
		return nil, err
	}

	req := &transport.SendTxRequest{
		From: params.From,
		To:   a.address,
		Data: encodeTransfer(params.To, value),
	}

	txHash, err := a.client.SendTransaction(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("提交代币转账失败: %w", err)
	}

	receipt, err := a.client.WaitForReceipt(ctx, txHash)
	if err != nil {
		return nil, fmt.Errorf("等待转账回执失败: %w", err)
	}
	return receipt, nil
}
