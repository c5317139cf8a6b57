package flows

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/emberwallet/v1/client/core/asset"
	"github.com/emberwallet/v1/client/pkg/ux/nav"
	"github.com/emberwallet/v1/pkg/interfaces/infrastructure/log"
)

// ErrMissingIntent 确认步骤缺少导航状态中的转账意图
var ErrMissingIntent = errors.New("缺少转账意图")

// ConfirmSummary 确认页展示数据
type ConfirmSummary struct {
	// Recipient 接收方地址
	Recipient string
	// From 发送方地址（可为空）
	From string
	// DisplayAmount 人类可读金额，如 "1.5 Ganache ETH"
	DisplayAmount string
	// Message 留言，nil表示无
	Message *string
	// AssetName 资产显示名称
	AssetName string
}

// ConfirmFlow 确认步骤状态机
//
// 功能：
//   - 从导航状态接收一次性的 TransferIntent，缺失时立即退回发送页
//   - 确认时调用资产的转账能力，保证同一实例至多一笔在途提交
//   - 成功后经钩子决定跳转目标，失败解除锁并停留在确认页
//
// 并发：
//   - busy 标志兼作提交互斥锁，重入确认是空操作
type ConfirmFlow struct {
	registry *asset.Registry
	history  *nav.History
	advisory Advisory
	hook     PostSendHook
	logger   log.Logger

	intent *TransferIntent
	busy   atomic.Bool
}

// NewConfirmFlow 创建确认步骤
//
// 参数：
//   - advisory、hook: 均可为nil
func NewConfirmFlow(
	registry *asset.Registry,
	history *nav.History,
	advisory Advisory,
	hook PostSendHook,
	logger log.Logger,
) *ConfirmFlow {
	return &ConfirmFlow{
		registry: registry,
		history:  history,
		advisory: advisory,
		hook:     hook,
		logger:   logger,
	}
}

// Enter 进入确认步骤
//
// 从当前导航位置取出转账意图。意图缺失时替换回发送页并返回
// ErrMissingIntent，调用方不得再渲染确认内容（幂等守卫）。
// 意图按值拷贝消费，交接后对原件的修改不影响确认步骤。
func (c *ConfirmFlow) Enter() error {
	state := c.history.Current().State
	intent, ok := state.(*TransferIntent)
	if !ok || intent == nil {
		c.history.Replace("/send", nil)
		return ErrMissingIntent
	}
	consumed := *intent
	c.intent = &consumed
	return nil
}

// Summary 构建确认页展示数据
//
// 资产解析失败是前置条件被破坏，立即返回可诊断的错误而不是继续。
func (c *ConfirmFlow) Summary() (*ConfirmSummary, error) {
	if c.intent == nil {
		return nil, ErrMissingIntent
	}
	selected, err := c.registry.MustGet(c.intent.AssetID)
	if err != nil {
		return nil, fmt.Errorf("确认步骤资产解析失败: %w", err)
	}

	display := c.intent.Ether
	if display == "" && c.intent.Value != nil {
		display = selected.GetDisplayValue(c.intent.Value)
	}

	return &ConfirmSummary{
		Recipient:     c.intent.Recipient,
		From:          c.intent.From,
		DisplayAmount: fmt.Sprintf("%s %s", display, selected.Name()),
		Message:       c.intent.Message,
		AssetName:     selected.Name(),
	}, nil
}

// Busy 是否有在途提交
func (c *ConfirmFlow) Busy() bool {
	return c.busy.Load()
}

// Confirm 执行提交
//
// 返回：
//   - redirect: 成功后的跳转路径（钩子覆盖或默认回执页），空串表示未跳转
//
// 重入调用（已有在途提交）是空操作。失败时解除提交锁、清除忙碌提示、
// 记录日志并停留在确认页，重试始终由用户发起。
func (c *ConfirmFlow) Confirm(ctx context.Context) (redirect string, err error) {
	if c.intent == nil {
		return "", ErrMissingIntent
	}
	if !c.busy.CompareAndSwap(false, true) {
		return "", nil
	}

	selected, err := c.registry.MustGet(c.intent.AssetID)
	if err != nil {
		c.busy.Store(false)
		return "", fmt.Errorf("确认步骤资产解析失败: %w", err)
	}

	if c.advisory != nil {
		c.advisory.SetBusy("正在提交转账...")
	}
	sendsAttemptedTotal.Inc()
	sendsInFlight.Inc()
	defer sendsInFlight.Dec()

	params := &asset.SendParams{
		From:  c.intent.From,
		To:    c.intent.Recipient,
		Ether: c.intent.Ether,
		Value: c.intent.Value,
	}
	if c.intent.Message != nil {
		params.Message = *c.intent.Message
	}

	receipt, err := selected.Send(ctx, params)
	if c.advisory != nil {
		c.advisory.ClearBusy()
	}
	if err != nil {
		c.busy.Store(false)
		sendsFailedTotal.Inc()
		c.logger.Errorf("转账提交失败: %v", err)
		return "", fmt.Errorf("转账提交失败: %w", err)
	}
	sendsSucceededTotal.Inc()

	result := &SendResult{
		Asset:         selected,
		From:          c.intent.From,
		To:            c.intent.Recipient,
		Ether:         c.intent.Ether,
		Value:         c.intent.Value,
		Message:       c.intent.Message,
		Receipt:       receipt,
		TxHash:        receipt.TransactionHash,
		CorrelationID: c.intent.CorrelationID,
	}

	redirect = ""
	if c.hook != nil {
		redirect = c.hook.Sent(result)
	}
	if redirect == "" {
		redirect = fmt.Sprintf("/receipt/%s/%s", c.intent.AssetID, receipt.TransactionHash)
	}

	c.history.Push(redirect, result)
	return redirect, nil
}

// Cancel 取消确认，回到上一页
//
// 未发起过外部操作，无需清理。
func (c *ConfirmFlow) Cancel() {
	c.history.Back()
}
