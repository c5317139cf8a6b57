// 基于asaskevich/EventBus的事件总线实现
package event

import (
	"context"
	"fmt"
	"sync/atomic"

	evbus "github.com/asaskevich/EventBus"
	eventInterface "github.com/emberwallet/v1/pkg/interfaces/infrastructure/event"
	logInterface "github.com/emberwallet/v1/pkg/interfaces/infrastructure/log"
)

// 基础事件主题
const (
	// TopicSystemStarted 系统启动完成
	TopicSystemStarted = "system:started"
	// TopicSystemStopped 系统停止
	TopicSystemStopped = "system:stopped"
)

// 注意: 业务特定的事件主题(如余额事件、转账事件等)应该由相应的业务模块定义，
// 而不是在基础设施层，避免基础设施层和业务逻辑的耦合。

// EventBus 是基于asaskevich/EventBus的实现
//
// 特性：
//   - 保持与asaskevich/EventBus的完全兼容
//   - 增加生命周期管理能力
//   - 订阅/发布错误统一记录日志
type EventBus struct {
	bus     evbus.Bus           // 底层事件总线
	logger  logInterface.Logger // 日志记录器
	running atomic.Bool         // 运行状态
}

// 确保实现接口
var _ eventInterface.Bus = (*EventBus)(nil)

// New 创建事件总线
func New(logger logInterface.Logger) *EventBus {
	return &EventBus{
		bus:    evbus.New(),
		logger: logger,
	}
}

// Start 启动事件总线
func (b *EventBus) Start(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return fmt.Errorf("事件总线已在运行")
	}
	b.bus.Publish(TopicSystemStarted)
	return nil
}

// Stop 停止事件总线
func (b *EventBus) Stop() error {
	if !b.running.CompareAndSwap(true, false) {
		return fmt.Errorf("事件总线未在运行")
	}
	b.bus.Publish(TopicSystemStopped)
	// 等待异步回调完成，避免停止后事件丢失
	b.bus.WaitAsync()
	return nil
}

// IsRunning 是否正在运行
func (b *EventBus) IsRunning() bool {
	return b.running.Load()
}

// Publish 发布事件
func (b *EventBus) Publish(topic string, data interface{}) {
	b.bus.Publish(topic, data)
}

// Subscribe 订阅事件（同步回调）
func (b *EventBus) Subscribe(topic string, handler interface{}) error {
	if err := b.bus.Subscribe(topic, handler); err != nil {
		return fmt.Errorf("订阅事件失败 %s: %w", topic, err)
	}
	return nil
}

// SubscribeAsync 订阅事件（异步回调，不保证顺序）
func (b *EventBus) SubscribeAsync(topic string, handler interface{}) error {
	if err := b.bus.SubscribeAsync(topic, handler, false); err != nil {
		return fmt.Errorf("订阅事件失败 %s: %w", topic, err)
	}
	return nil
}

// Unsubscribe 取消订阅
func (b *EventBus) Unsubscribe(topic string, handler interface{}) error {
	if err := b.bus.Unsubscribe(topic, handler); err != nil {
		return fmt.Errorf("取消订阅失败 %s: %w", topic, err)
	}
	return nil
}

// WaitAsync 等待所有异步回调完成
func (b *EventBus) WaitAsync() {
	b.bus.WaitAsync()
}
