package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/emberwallet/v1/client/pkg/ux/flows"
	"github.com/emberwallet/v1/client/pkg/ux/nav"
	"github.com/emberwallet/v1/client/pkg/ux/ui"
	"github.com/emberwallet/v1/internal/app"
	logconfig "github.com/emberwallet/v1/internal/config/log"
	walletconfig "github.com/emberwallet/v1/internal/config/wallet"
)

// sendFlags send命令标志
type sendFlags struct {
	To      string
	Asset   string
	Amount  string
	Max     bool
	Message string
	Scan    bool
}

var sendOpts sendFlags

// sendCmd 发送转账命令
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "发起一笔转账",
	Long: `发起一笔转账。

未通过标志提供的字段会进入交互式补全:
  ember send --to 0x... --amount 1.5
  ember send --to 0x... --max
  ember send --asset localerc20 --to 0x... --amount 10`,
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendOpts.To, "to", "", "接收方地址")
	sendCmd.Flags().StringVar(&sendOpts.Asset, "asset", "", "资产标识 (默认使用第一个注册资产)")
	sendCmd.Flags().StringVar(&sendOpts.Amount, "amount", "", "转账金额（显示单位）")
	sendCmd.Flags().BoolVar(&sendOpts.Max, "max", false, "发送全部可用余额")
	sendCmd.Flags().StringVar(&sendOpts.Message, "message", "", "转账留言（仅支持留言的资产）")
	sendCmd.Flags().BoolVar(&sendOpts.Scan, "scan", false, "通过扫码/粘贴获取接收方地址")
}

// pasteScanner 终端环境的扫码替代：粘贴二维码解析出的地址
type pasteScanner struct {
	ui ui.Components
}

func (s *pasteScanner) Scan(ctx context.Context) (string, error) {
	return s.ui.ShowInputDialog("", "粘贴接收方地址", false)
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	walletOpts := &walletconfig.WalletOptions{
		NodeRPCURL:     globalFlags.NodeRPCURL,
		NodeWSURL:      globalFlags.NodeWSURL,
		DefaultAccount: globalFlags.From,
	}
	if globalFlags.RedisAddr != "" {
		walletOpts.Redis = &walletconfig.RedisOptions{Addr: globalFlags.RedisAddr}
	}

	var logOpts *logconfig.LogOptions
	if globalFlags.LogLevel != "" {
		logOpts = &logconfig.LogOptions{Level: globalFlags.LogLevel}
	}

	wallet := app.New(
		app.WithWalletOptions(walletOpts),
		app.WithLogOptions(logOpts),
	)

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := wallet.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		_ = wallet.Stop(stopCtx)
	}()

	kit := wallet.Kit()
	flows.RegisterMetrics()

	components := ui.NewComponents()
	advisory := ui.NewSpinnerAdvisory(components)
	history := nav.NewHistory("/")
	form := flows.NewSendForm(kit.Registry, kit.Tracker, kit.Resolver, &pasteScanner{ui: components}, kit.Logger)
	router := flows.NewWorkflowRouter(history, form, kit.Registry, advisory, nil, kit.Logger, kit.Config.GetDefaultAccount())

	if err := router.OpenSendForm(ctx, "/send?"+buildSendQuery(), nil); err != nil {
		return err
	}

	if err := completeFormInteractively(ctx, components, form); err != nil {
		return err
	}

	confirm, err := router.AdvanceToConfirm()
	if err != nil {
		return err
	}

	summary, err := confirm.Summary()
	if err != nil {
		return err
	}

	rows := [][2]string{
		{"接收方", summary.Recipient},
		{"金额", summary.DisplayAmount},
	}
	if summary.From != "" {
		rows = append([][2]string{{"发送方", summary.From}}, rows...)
	}
	if summary.Message != nil {
		rows = append(rows, [2]string{"留言", *summary.Message})
	}
	if err := components.ShowKeyValuePairs("转账确认", rows); err != nil {
		return err
	}

	ok, err := components.ShowConfirmDialog("", "确认提交这笔转账？")
	if err != nil || !ok {
		router.CancelConfirm(confirm)
		_ = components.ShowInfo("已取消转账")
		return nil
	}

	redirect, err := router.CompleteSend(ctx, confirm)
	if err != nil {
		_ = components.ShowError(fmt.Sprintf("转账失败: %v", err))
		return err
	}

	_ = components.ShowSuccess("转账已上链")
	result, _ := history.Current().State.(*flows.SendResult)
	receiptRows := [][2]string{{"回执", redirect}}
	if result != nil && result.Receipt != nil {
		receiptRows = append(receiptRows,
			[2]string{"交易哈希", result.Receipt.TransactionHash},
			[2]string{"区块高度", fmt.Sprintf("%d", result.Receipt.BlockNumber)},
		)
	}
	return components.ShowKeyValuePairs("转账回执", receiptRows)
}

// buildSendQuery 将命令标志编码为发送页查询串
func buildSendQuery() string {
	var pairs []string
	add := func(key, value string) {
		if value != "" {
			pairs = append(pairs, key+"="+url.QueryEscape(value))
		}
	}
	add("to", sendOpts.To)
	add("asset", sendOpts.Asset)
	add("amount", sendOpts.Amount)
	add("message", sendOpts.Message)
	return strings.Join(pairs, "&")
}

// completeFormInteractively 补全标志未提供的字段
func completeFormInteractively(ctx context.Context, components ui.Components, form *flows.SendForm) error {
	if sendOpts.Scan && form.Recipient() == "" {
		// 扫码即发即忘，失败静默回落到手动输入
		form.ScanRecipient(ctx)
		deadline := time.Now().Add(5 * time.Minute)
		for form.Recipient() == "" && time.Now().Before(deadline) {
			time.Sleep(50 * time.Millisecond)
		}
	}

	for form.Recipient() == "" {
		text, err := components.ShowInputDialog("", "接收方地址", false)
		if err != nil {
			return fmt.Errorf("输入接收方地址失败: %w", err)
		}
		form.SetRecipient(ctx, text)

		// 扇出检索是异步的，给结果一点返回时间
		if form.Resolved() == nil {
			deadline := time.Now().Add(500 * time.Millisecond)
			for len(form.Candidates()) == 0 && time.Now().Before(deadline) {
				time.Sleep(20 * time.Millisecond)
			}
		}

		if candidates := form.Candidates(); len(candidates) > 0 && form.Resolved() == nil {
			options := make([]string, 0, len(candidates)+1)
			for _, c := range candidates {
				options = append(options, fmt.Sprintf("%s (%s)", c.Name, c.Address))
			}
			options = append(options, "重新输入")
			idx, err := components.ShowMenu("匹配的账户", options)
			if err == nil && idx >= 0 && idx < len(candidates) {
				form.SelectCandidate(candidates[idx])
			} else {
				form.SetRecipient(ctx, "")
			}
		}
	}

	if sendOpts.Max {
		form.SetAmount("", true)
		if !form.MaxPinned() {
			_ = components.ShowWarning("余额尚未加载，无法使用 --max")
		}
	}

	for form.AmountText() == "" && !form.MaxPinned() {
		text, err := components.ShowInputDialog("", "转账金额", false)
		if err != nil {
			return fmt.Errorf("输入转账金额失败: %w", err)
		}
		form.SetAmount(text, false)
	}

	if !form.CanSend() {
		return fmt.Errorf("接收方地址无效: %s", form.Recipient())
	}
	if form.ExceedsBalance() {
		return fmt.Errorf("金额超过可发送余额")
	}
	return nil
}
