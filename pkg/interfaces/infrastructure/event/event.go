// Package event 提供Ember系统的事件总线接口定义
//
// 事件总线用于基础设施与业务模块之间的松耦合通知，
// 例如余额快照更新、转账提交完成等。
package event

import "context"

// Bus 事件总线接口
type Bus interface {
	// Start 启动事件总线
	Start(ctx context.Context) error

	// Stop 停止事件总线
	Stop() error

	// IsRunning 是否正在运行
	IsRunning() bool

	// Publish 发布事件
	// topic: 事件主题，如 "balance:updated"
	// data: 事件数据
	Publish(topic string, data interface{})

	// Subscribe 订阅事件（同步回调）
	// handler 必须是函数类型，参数与发布时的数据匹配
	Subscribe(topic string, handler interface{}) error

	// SubscribeAsync 订阅事件（异步回调）
	SubscribeAsync(topic string, handler interface{}) error

	// Unsubscribe 取消订阅
	Unsubscribe(topic string, handler interface{}) error

	// WaitAsync 等待所有异步回调完成
	WaitAsync()
}
