// Package flows 提供发送工作流的状态机
package flows

import (
	"context"
	"math/big"

	"github.com/emberwallet/v1/client/core/account"
	"github.com/emberwallet/v1/client/core/asset"
	"github.com/emberwallet/v1/client/core/balance"
	"github.com/emberwallet/v1/client/core/transport"
)

// ============================================================================
// Send Flow Ports（端口接口）
//
// 这些接口定义了发送工作流需要的外部协作能力，解耦流程状态机与具体实现。
// 生产环境由 balance/account/ui 等模块提供，测试用桩实现。
// ============================================================================

// BalanceSource 余额来源端口
//
// 功能：
//   - 提供当前账户的最新可发送余额快照
//   - 读取不阻塞，余额尚未加载时返回 nil
type BalanceSource interface {
	// Latest 返回最新余额快照，未加载时返回 nil
	Latest() *balance.Balance
}

// AccountSearcher 账户检索端口
//
// 功能：
//   - Resolve 精确解析输入为已知账户，无匹配返回 (nil, nil)
//   - Search 模糊检索候选，按来源注册顺序拼接
type AccountSearcher interface {
	Resolve(ctx context.Context, text string) (*account.AccountCandidate, error)
	Search(ctx context.Context, query string) []*account.AccountCandidate
}

// QRScanner 二维码扫描端口
//
// 实现方式：
//   - 摄像头扫描或终端粘贴，取消/失败返回错误
type QRScanner interface {
	// Scan 扫描并返回地址文本
	Scan(ctx context.Context) (string, error)
}

// Advisory 忙碌提示端口
//
// 功能：
//   - 向外围UI通告"提交进行中"的全局状态
//   - 纯提示用途，不参与提交互斥
type Advisory interface {
	// SetBusy 显示忙碌提示
	SetBusy(message string)
	// ClearBusy 清除忙碌提示
	ClearBusy()
}

// PostSendHook 发送完成钩子端口
//
// 功能：
//   - 插件在提交成功后接收完整结果
//   - 返回非空路径时覆盖默认的回执页跳转
type PostSendHook interface {
	// Sent 通知发送结果
	// 返回：重定向路径，空串表示使用默认回执页
	Sent(result *SendResult) string
}

// ============================================================================
// 工作流数据
// ============================================================================

// TransferIntent 转账意图
//
// 发送表单校验通过后一次性构建，之后不可变，
// 经导航状态交给确认步骤，消费且仅消费一次。
type TransferIntent struct {
	// Recipient 接收方地址
	Recipient string
	// AssetID 资产标识，必须指向已注册资产
	AssetID string
	// From 发送方地址
	From string
	// Ether 显示单位的字面金额
	Ether string
	// Value 钉住的最小单位金额（send-max时非nil，优先于Ether）
	Value *big.Int
	// Message 留言，nil表示省略
	Message *string
	// CorrelationID 外部插件提供的关联标识（可选）
	CorrelationID string
}

// SendResult 发送完成结果
//
// 提交成功后交给 PostSendHook。
type SendResult struct {
	Asset         asset.Asset
	From          string
	To            string
	Ether         string
	Value         *big.Int
	Message       *string
	Receipt       *transport.Receipt
	TxHash        string
	CorrelationID string
}
