// Package event 提供事件总线管理功能
package event

import (
	"context"

	eventInterface "github.com/emberwallet/v1/pkg/interfaces/infrastructure/event"
	logInterface "github.com/emberwallet/v1/pkg/interfaces/infrastructure/log"
	"go.uber.org/fx"
)

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideServices 提供事件总线服务
func ProvideServices(logger logInterface.Logger) eventInterface.Bus {
	return New(logger)
}

// registerLifecycle 将事件总线挂接到fx生命周期
func registerLifecycle(lifecycle fx.Lifecycle, bus eventInterface.Bus) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return bus.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return bus.Stop()
		},
	})
}
