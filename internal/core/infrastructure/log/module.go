// Package log 提供日志管理功能
package log

import (
	"fmt"

	logconfig "github.com/emberwallet/v1/internal/config/log"
	logInterface "github.com/emberwallet/v1/pkg/interfaces/infrastructure/log"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ModuleParams 定义日志模块的依赖参数
type ModuleParams struct {
	fx.In

	Options *logconfig.LogOptions `optional:"true"` // 用户日志配置（可选）
}

// ModuleOutput 定义日志模块的输出结构
type ModuleOutput struct {
	fx.Out

	Logger    logInterface.Logger // 日志记录器接口
	ZapLogger *zap.Logger         // zap.Logger 具体类型（供需要 zap 特性的模块使用）
}

// Module 返回日志模块
func Module() fx.Option {
	return fx.Module("log",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供日志服务
// 根据配置初始化日志记录器并设置为全局记录器
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	config := logconfig.New(params.Options)

	logger, err := New(config)
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("创建日志记录器失败: %w", err)
	}

	SetLogger(logger)

	concrete, ok := logger.(*Logger)
	if !ok {
		return ModuleOutput{}, fmt.Errorf("日志记录器类型错误: %T", logger)
	}

	return ModuleOutput{
		Logger:    logger,
		ZapLogger: concrete.GetZapLogger(),
	}, nil
}
