// Package transport provides transport interface definitions for wallet client operations.
package transport

import (
	"context"
	"math/big"
)

// Client 统一传输客户端接口 - 钱包与节点通信的唯一通道
// 所有网络调用必须经由此接口，严禁上层流程直接发起HTTP请求
type Client interface {
	// ===== 链信息 =====

	// ChainID 获取链ID
	ChainID(ctx context.Context) (string, error)

	// BlockNumber 获取最新区块高度
	BlockNumber(ctx context.Context) (uint64, error)

	// ===== 状态查询 =====

	// GetBalance 获取账户余额（wei）
	GetBalance(ctx context.Context, address string) (*big.Int, error)

	// Call 模拟合约调用(不上链)，用于代币余额等只读查询
	Call(ctx context.Context, to string, data []byte) ([]byte, error)

	// ===== 交易提交与查询 =====

	// SendTransaction 提交转账（节点内部完成签名→广播）
	// 适用于本地开发节点等信任环境
	SendTransaction(ctx context.Context, tx *SendTxRequest) (txHash string, err error)

	// GetTransactionReceipt 获取交易回执，交易未上链时返回 nil
	GetTransactionReceipt(ctx context.Context, txHash string) (*Receipt, error)

	// WaitForReceipt 等待交易上链并返回回执
	WaitForReceipt(ctx context.Context, txHash string) (*Receipt, error)
}

// SendTxRequest 转账提交请求
type SendTxRequest struct {
	From  string   // 发送方地址（0x十六进制）
	To    string   // 接收方地址（0x十六进制）
	Value *big.Int // 转账金额（wei，合约调用时可为0）
	Data  []byte   // 合约调用数据（可选）
}

// Receipt 交易回执
type Receipt struct {
	TransactionHash string `json:"transactionHash"` // 交易哈希
	BlockNumber     uint64 `json:"-"`               // 区块高度
	Status          uint64 `json:"-"`               // 1=成功 0=失败
}

// SubscriptionType 订阅类型
type SubscriptionType string

const (
	// SubscriptionNewHeads 新区块头订阅
	SubscriptionNewHeads SubscriptionType = "newHeads"
)

// Event 订阅事件
type Event struct {
	Type        SubscriptionType // 事件类型
	BlockNumber uint64           // 区块高度（newHeads事件）
}

// Subscription 订阅句柄
type Subscription interface {
	// Events 事件通道
	Events() <-chan *Event
	// Err 错误通道
	Err() <-chan error
	// Unsubscribe 取消订阅
	Unsubscribe()
}

// Subscriber 订阅客户端接口(仅用于订阅，其余调用降级到Client)
type Subscriber interface {
	// Subscribe 订阅事件
	Subscribe(ctx context.Context, eventType SubscriptionType) (Subscription, error)
	// Close 关闭连接
	Close() error
}
