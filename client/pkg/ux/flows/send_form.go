package flows

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/google/uuid"

	"github.com/emberwallet/v1/client/core/account"
	"github.com/emberwallet/v1/client/core/asset"
	"github.com/emberwallet/v1/client/pkg/ux/nav"
	"github.com/emberwallet/v1/pkg/interfaces/infrastructure/log"
	"github.com/emberwallet/v1/pkg/utils"
)

// recipientAddressLength 接收方地址的固定长度（0x + 40位十六进制）
const recipientAddressLength = 42

// ErrNoAssetSelected 提交时未选定资产，属于调用方契约错误
var ErrNoAssetSelected = errors.New("未选定资产")

// ErrSubmissionBlocked 表单守卫未通过，提交被禁止
var ErrSubmissionBlocked = errors.New("表单守卫未通过")

// Seed 发送表单的预填数据
//
// 来自上一步导航状态，优先级低于查询串参数。
type Seed struct {
	Recipient     string
	AssetID       string
	Amount        string
	Message       string
	From          string
	CorrelationID string
}

// SendForm 发送表单状态机
//
// 功能：
//   - 收集接收方、资产、金额、留言，维护录入期守卫
//   - 接收方输入触发精确解析与多来源扇出检索（序号栅栏，后发请求胜出）
//   - 金额支持字面量与send-max二态，钉住的最大值优先于字面文本
//   - 校验通过后一次性产出不可变的 TransferIntent
//
// 并发：
//   - 表单状态由互斥锁保护，异步检索回调通过序号栅栏丢弃过期结果
type SendForm struct {
	registry   *asset.Registry
	balances   BalanceSource
	searcher   AccountSearcher
	scanner    QRScanner
	logger     log.Logger

	mu            sync.Mutex
	recipient     string
	resolved      *account.AccountCandidate
	candidates    []*account.AccountCandidate
	selectedAsset asset.Asset
	amountText    string
	pinnedMax     *big.Int
	message       string
	from          string
	correlationID string
	sending       bool
	lastErr       error

	searchSeq uint64
}

// NewSendForm 创建发送表单
//
// 参数：
//   - scanner: 可为nil，nil时扫码入口不可用
func NewSendForm(
	registry *asset.Registry,
	balances BalanceSource,
	searcher AccountSearcher,
	scanner QRScanner,
	logger log.Logger,
) *SendForm {
	return &SendForm{
		registry: registry,
		balances: balances,
		searcher: searcher,
		scanner:  scanner,
		logger:   logger,
	}
}

// Init 初始化表单状态
//
// 三个来源按优先级合并：空默认值 < 导航状态预填 < 查询串参数。
// 查询串支持的键：to、asset、amount、message、from。
func (f *SendForm) Init(ctx context.Context, seed *Seed, query string) error {
	merged := Seed{}
	if seed != nil {
		merged = *seed
	}

	params := nav.ParseQueryString(query)
	if v, ok := params["to"]; ok {
		merged.Recipient = v
	}
	if v, ok := params["asset"]; ok {
		merged.AssetID = v
	}
	if v, ok := params["amount"]; ok {
		merged.Amount = v
	}
	if v, ok := params["message"]; ok {
		merged.Message = v
	}
	if v, ok := params["from"]; ok {
		merged.From = v
	}

	f.mu.Lock()
	f.amountText = merged.Amount
	f.message = merged.Message
	f.from = merged.From
	f.correlationID = merged.CorrelationID
	f.mu.Unlock()

	if merged.AssetID != "" {
		if err := f.SelectAsset(merged.AssetID); err != nil {
			return err
		}
	} else if first := f.registry.First(); first != nil {
		f.mu.Lock()
		f.selectedAsset = first
		f.mu.Unlock()
	}

	if merged.Recipient != "" {
		f.SetRecipient(ctx, merged.Recipient)
	}
	return nil
}

// CanSend 录入期守卫
//
// 纯状态判定，不做I/O：提交进行中、接收方为空或长度不符时为false。
func (f *SendForm) CanSend() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sending {
		return false
	}
	if f.recipient == "" {
		return false
	}
	return len(f.recipient) == recipientAddressLength
}

// SetRecipient 更新接收方输入
//
// 输入精确命中已知账户时选中并清空候选；否则清除已解析账户，
// 并发起一次扇出检索。检索带序号栅栏，过期结果不会覆盖新状态。
func (f *SendForm) SetRecipient(ctx context.Context, text string) {
	f.mu.Lock()
	f.recipient = text
	f.searchSeq++
	seq := f.searchSeq
	f.mu.Unlock()

	resolved, err := f.searcher.Resolve(ctx, text)
	if err != nil {
		f.logger.Warnf("账户解析失败: %v", err)
		f.mu.Lock()
		f.lastErr = err
		f.mu.Unlock()
	}

	if resolved != nil {
		f.mu.Lock()
		if seq == f.searchSeq {
			f.resolved = resolved
			f.candidates = nil
		}
		f.mu.Unlock()
		return
	}

	f.mu.Lock()
	if seq == f.searchSeq {
		f.resolved = nil
	}
	f.mu.Unlock()

	sendSearchesTotal.Inc()
	go func() {
		found := f.searcher.Search(ctx, text)
		f.mu.Lock()
		defer f.mu.Unlock()
		if seq != f.searchSeq {
			sendSearchesStaleDropped.Inc()
			return
		}
		f.candidates = found
	}()
}

// SelectCandidate 选中检索候选
//
// 设置已解析账户与清空候选列表在同一临界区内完成。
func (f *SendForm) SelectCandidate(candidate *account.AccountCandidate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchSeq++
	f.recipient = candidate.Address
	f.resolved = candidate
	f.candidates = nil
}

// ScanRecipient 发起二维码扫描
//
// 即发即忘：成功覆盖接收方输入，取消或失败静默忽略。
func (f *SendForm) ScanRecipient(ctx context.Context) {
	if f.scanner == nil {
		return
	}
	go func() {
		address, err := f.scanner.Scan(ctx)
		if err != nil {
			f.logger.Debugf("扫码未完成: %v", err)
			return
		}
		f.SetRecipient(ctx, address)
	}()
}

// SetAmount 更新金额输入
//
// 参数：
//   - text: 字面金额文本
//   - isMax: 输入表示"发送全部余额"
//
// send-max 仅在余额已加载时生效，钉住当前最大可发送金额；
// 任何后续字面编辑都会解除钉住。
func (f *SendForm) SetAmount(text string, isMax bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if isMax {
		snapshot := f.balances.Latest()
		if snapshot == nil {
			return
		}
		f.pinnedMax = snapshot.MaximumSendableBalance
		f.amountText = snapshot.DisplayMaximumSendableBalance
		return
	}

	f.amountText = text
	f.pinnedMax = nil
}

// SetMessage 更新留言
func (f *SendForm) SetMessage(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = text
}

// SelectAsset 选定资产
//
// 提交进行中禁止切换资产。
func (f *SendForm) SelectAsset(id string) error {
	selected, err := f.registry.MustGet(id)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sending {
		return fmt.Errorf("%w: 提交进行中不可切换资产", ErrSubmissionBlocked)
	}
	f.selectedAsset = selected
	return nil
}

// ExceedsBalance 余额守卫
//
// 字面金额超过当前最大可发送余额时为true；
// 余额未加载时不施加限制，钉住的send-max天然不超额。
func (f *SendForm) ExceedsBalance() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pinnedMax != nil {
		return false
	}
	snapshot := f.balances.Latest()
	if snapshot == nil || snapshot.MaximumSendableBalance == nil {
		return false
	}
	entered, err := utils.ParseDecimalToWei(f.amountText)
	if err != nil {
		return false
	}
	return entered.Cmp(snapshot.MaximumSendableBalance) > 0
}

// Submit 产出转账意图
//
// 未选定资产是调用方契约错误；守卫未通过时拒绝提交。
// 成功后表单进入提交中状态，直到 EndSubmission 被调用。
func (f *SendForm) Submit() (*TransferIntent, error) {
	if !f.CanSend() {
		return nil, ErrSubmissionBlocked
	}
	if f.ExceedsBalance() {
		return nil, fmt.Errorf("%w: 金额超过可发送余额", ErrSubmissionBlocked)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.selectedAsset == nil {
		return nil, ErrNoAssetSelected
	}

	// 外部插件未提供关联标识时生成一个，便于跨步骤追踪日志
	correlationID := f.correlationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	intent := &TransferIntent{
		Recipient:     f.recipient,
		AssetID:       f.selectedAsset.ID(),
		From:          f.from,
		Ether:         f.amountText,
		Value:         f.pinnedMax,
		CorrelationID: correlationID,
	}
	if f.message != "" && f.selectedAsset.SupportsMessages() {
		message := f.message
		intent.Message = &message
	}

	f.sending = true
	return intent, nil
}

// EndSubmission 结束提交中状态
//
// 确认步骤失败返回或用户取消后调用，恢复表单可编辑。
func (f *SendForm) EndSubmission() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sending = false
}

// Recipient 当前接收方输入
func (f *SendForm) Recipient() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recipient
}

// Resolved 当前已解析账户，未解析返回nil
func (f *SendForm) Resolved() *account.AccountCandidate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resolved
}

// Candidates 当前候选列表快照
func (f *SendForm) Candidates() []*account.AccountCandidate {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*account.AccountCandidate, len(f.candidates))
	copy(out, f.candidates)
	return out
}

// SelectedAsset 当前选定资产
func (f *SendForm) SelectedAsset() asset.Asset {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selectedAsset
}

// AmountText 当前金额文本
func (f *SendForm) AmountText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.amountText
}

// LastError 最近一次后台操作的错误，仅供诊断展示
func (f *SendForm) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// MaxPinned send-max是否处于钉住状态
func (f *SendForm) MaxPinned() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pinnedMax != nil
}
