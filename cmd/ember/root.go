package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	NodeRPCURL string // JSON-RPC端点
	NodeWSURL  string // WebSocket端点
	From       string // 默认发送方地址
	RedisAddr  string // Redis地址簿（可选）
	LogLevel   string // 日志级别
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "ember",
	Short: "Ember 钱包命令行客户端",
	Long: `Ember - 轻量级加密货币钱包客户端

提供完整的转账工作流:
- 收集接收方、资产、金额、留言并做录入校验
- 实时余额守卫与send-max支持
- 多来源账户检索（静态地址簿、Redis地址簿）
- 确认后提交转账并展示回执`,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.NodeRPCURL, "rpc-url", "", "节点JSON-RPC端点 (默认: http://localhost:7545)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.NodeWSURL, "ws-url", "", "节点WebSocket端点 (默认: ws://localhost:7545)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.From, "from", "", "默认发送方地址")
	rootCmd.PersistentFlags().StringVar(&globalFlags.RedisAddr, "redis-addr", "", "Redis地址簿地址 (可选)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "", "日志级别: debug|info|warn|error")

	rootCmd.AddCommand(sendCmd)
}
