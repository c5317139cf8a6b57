// Package app 装配钱包客户端的依赖图
//
// 功能说明：
// - 以fx组织基础设施（日志、事件总线）与核心服务（传输、资产、余额、账户）
// - 对外暴露 Kit：CLI层从中取用已装配好的服务
//
// 依赖关系：
// - go.uber.org/fx: 依赖注入与生命周期管理
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/emberwallet/v1/client/core/account"
	"github.com/emberwallet/v1/client/core/asset"
	"github.com/emberwallet/v1/client/core/balance"
	"github.com/emberwallet/v1/client/core/transport"
	logconfig "github.com/emberwallet/v1/internal/config/log"
	walletconfig "github.com/emberwallet/v1/internal/config/wallet"
	eventmodule "github.com/emberwallet/v1/internal/core/infrastructure/event"
	logmodule "github.com/emberwallet/v1/internal/core/infrastructure/log"
	eventInterface "github.com/emberwallet/v1/pkg/interfaces/infrastructure/event"
	logInterface "github.com/emberwallet/v1/pkg/interfaces/infrastructure/log"
)

// rpcTimeout 单次JSON-RPC调用超时
const rpcTimeout = 30 * time.Second

// Kit 装配完成的核心服务集合
type Kit struct {
	fx.In

	Logger   logInterface.Logger
	Bus      eventInterface.Bus
	Config   *walletconfig.Config
	Client   transport.Client
	Registry *asset.Registry
	Resolver *account.Resolver
	Tracker  *balance.Tracker
}

// App 钱包客户端应用
type App struct {
	fxApp *fx.App
	kit   Kit
}

// New 创建并装配应用
func New(opts ...Option) *App {
	options := newOptions(opts...)

	a := &App{}
	a.fxApp = fx.New(
		fx.NopLogger,

		fx.Provide(func() *logconfig.LogOptions { return options.Log }),
		logmodule.Module(),
		eventmodule.Module(),

		fx.Provide(
			func() *walletconfig.Config { return walletconfig.New(options.Wallet) },
			provideTransportClient,
			provideSubscriber,
			provideRegistry,
			provideResolver,
			provideTracker,
		),
		fx.Invoke(registerTrackerLifecycle),

		fx.Populate(&a.kit),
	)
	return a
}

// Start 启动应用（事件总线、余额跟踪）
func (a *App) Start(ctx context.Context) error {
	if err := a.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("应用启动失败: %w", err)
	}
	return nil
}

// Stop 停止应用
func (a *App) Stop(ctx context.Context) error {
	return a.fxApp.Stop(ctx)
}

// Kit 返回装配完成的服务集合
func (a *App) Kit() *Kit {
	return &a.kit
}

// ============================================================================
// 提供者
// ============================================================================

func provideTransportClient(cfg *walletconfig.Config) transport.Client {
	return transport.NewJSONRPCClient(cfg.GetNodeRPCURL(), rpcTimeout)
}

// provideSubscriber 提供WebSocket订阅客户端
//
// WS端点未配置或连接失败时返回nil，余额退化为仅启动时查询。
func provideSubscriber(cfg *walletconfig.Config, logger logInterface.Logger) transport.Subscriber {
	wsURL := cfg.GetNodeWSURL()
	if wsURL == "" {
		return nil
	}
	subscriber, err := transport.NewWebSocketClient(wsURL)
	if err != nil {
		logger.Warnf("WebSocket连接失败，余额实时刷新不可用: %v", err)
		return nil
	}
	return subscriber
}

func provideRegistry(cfg *walletconfig.Config, client transport.Client) (*asset.Registry, error) {
	registry, err := asset.NewRegistry()
	if err != nil {
		return nil, err
	}

	for _, opts := range cfg.GetAssets() {
		var a asset.Asset
		switch opts.Kind {
		case walletconfig.AssetKindNative:
			a = asset.NewNativeAsset(opts.ID, opts.Name, opts.Network, client)
		case walletconfig.AssetKindERC20:
			if opts.ContractAddress == "" {
				return nil, fmt.Errorf("代币 %s 缺少合约地址", opts.ID)
			}
			a = asset.NewERC20Asset(opts.ID, opts.Name, opts.Network, opts.ContractAddress, opts.Decimals, client)
		default:
			return nil, fmt.Errorf("未知资产类型: %s", opts.Kind)
		}
		if err := registry.Register(a); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func provideResolver(cfg *walletconfig.Config, logger logInterface.Logger) (*account.Resolver, error) {
	var providers []account.SearchProvider

	if book := cfg.GetAddressBook(); len(book) > 0 {
		entries := make([]account.Entry, 0, len(book))
		for _, e := range book {
			entries = append(entries, account.Entry{Address: e.Address, Name: e.Name})
		}
		providers = append(providers, account.NewStaticProvider("addressbook", entries))
	}

	if redisOpts := cfg.GetRedis(); redisOpts != nil {
		redisProvider, err := account.NewRedisProvider(&account.RedisConfig{
			Addr:      redisOpts.Addr,
			Password:  redisOpts.Password,
			DB:        redisOpts.DB,
			KeyPrefix: redisOpts.KeyPrefix,
		})
		if err != nil {
			logger.Warnf("Redis地址簿不可用: %v", err)
		} else {
			providers = append(providers, redisProvider)
		}
	}

	return account.NewResolver(logger, providers...)
}

func provideTracker(
	client transport.Client,
	subscriber transport.Subscriber,
	bus eventInterface.Bus,
	logger logInterface.Logger,
	cfg *walletconfig.Config,
) *balance.Tracker {
	return balance.NewTracker(client, subscriber, bus, logger, cfg.GetDefaultAccount())
}

// registerTrackerLifecycle 将余额跟踪挂接到fx生命周期
//
// 默认账户未配置时不启动跟踪，余额上限视为未知。
func registerTrackerLifecycle(lifecycle fx.Lifecycle, tracker *balance.Tracker, cfg *walletconfig.Config) {
	if cfg.GetDefaultAccount() == "" {
		return
	}
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return tracker.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return tracker.Stop()
		},
	})
}
