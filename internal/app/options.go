package app

import (
	logconfig "github.com/emberwallet/v1/internal/config/log"
	walletconfig "github.com/emberwallet/v1/internal/config/wallet"
)

// Options 应用装配选项
type Options struct {
	// Wallet 钱包配置，nil时使用默认值
	Wallet *walletconfig.WalletOptions
	// Log 日志配置，nil时使用默认值
	Log *logconfig.LogOptions
}

// Option 选项设置函数
type Option func(*Options)

// WithWalletOptions 设置钱包配置
func WithWalletOptions(opts *walletconfig.WalletOptions) Option {
	return func(o *Options) { o.Wallet = opts }
}

// WithLogOptions 设置日志配置
func WithLogOptions(opts *logconfig.LogOptions) Option {
	return func(o *Options) { o.Log = opts }
}

func newOptions(opts ...Option) *Options {
	o := &Options{}
	for _, apply := range opts {
		apply(o)
	}
	return o
}
