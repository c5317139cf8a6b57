package main

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/emberwallet/v1/client/core/account"
	"github.com/emberwallet/v1/client/pkg/ux/ui"
)

// addressbookCmd 地址簿管理命令
var addressbookCmd = &cobra.Command{
	Use:   "addressbook",
	Short: "管理共享地址簿",
	Long:  "管理Redis共享地址簿，条目在发送流程的接收方检索中作为候选返回。",
}

// addressbookAddFlags addressbook add命令标志
var addressbookAddFlags struct {
	Address string
	Name    string
}

// addressbookAddCmd 写入地址簿条目命令
var addressbookAddCmd = &cobra.Command{
	Use:   "add",
	Short: "写入一条地址簿条目",
	Long: `写入一条地址簿条目:
  ember --redis-addr localhost:6379 addressbook add --address 0x... --name alice`,
	RunE: runAddressbookAdd,
}

func init() {
	addressbookAddCmd.Flags().StringVar(&addressbookAddFlags.Address, "address", "", "账户地址 (0x十六进制，必填)")
	addressbookAddCmd.Flags().StringVar(&addressbookAddFlags.Name, "name", "", "显示名称")
	_ = addressbookAddCmd.MarkFlagRequired("address")

	addressbookCmd.AddCommand(addressbookAddCmd)
	rootCmd.AddCommand(addressbookCmd)
}

func runAddressbookAdd(cmd *cobra.Command, args []string) error {
	if !common.IsHexAddress(addressbookAddFlags.Address) {
		return fmt.Errorf("地址格式无效: %s", addressbookAddFlags.Address)
	}
	if globalFlags.RedisAddr == "" {
		return fmt.Errorf("地址簿存储未配置，需要 --redis-addr")
	}

	provider, err := account.NewRedisProvider(&account.RedisConfig{Addr: globalFlags.RedisAddr})
	if err != nil {
		return err
	}
	defer func() { _ = provider.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entry := &account.Entry{
		Address: addressbookAddFlags.Address,
		Name:    addressbookAddFlags.Name,
	}
	if err := provider.Put(ctx, entry); err != nil {
		return err
	}

	components := ui.NewComponents()
	return components.ShowSuccess(fmt.Sprintf("地址簿条目已写入: %s", entry.Address))
}
