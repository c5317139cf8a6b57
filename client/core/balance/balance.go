// Package balance 维护当前账户的可发送余额快照
//
// 功能说明：
// - 启动时查询一次余额，之后订阅新区块头并在每个新区块后重新查询
// - 对外提供非阻塞的 Latest() 快照读取，余额未加载完成时返回 nil
// - 每次快照变化通过事件总线发布 balance:updated 事件
//
// 依赖关系：
// - client/core/transport: JSON-RPC查询与WebSocket订阅
// - pkg/interfaces/infrastructure/event: 事件总线
// - pkg/interfaces/infrastructure/log: 日志接口
package balance

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/emberwallet/v1/client/core/transport"
	"github.com/emberwallet/v1/pkg/interfaces/infrastructure/event"
	"github.com/emberwallet/v1/pkg/interfaces/infrastructure/log"
	"github.com/emberwallet/v1/pkg/utils"
)

// TopicBalanceUpdated 余额快照更新事件主题
const TopicBalanceUpdated = "balance:updated"

// Balance 余额快照
//
// 快照一旦发布即不可变，消费方不得修改其中的big.Int。
type Balance struct {
	// MaximumSendableBalance 可发送的最大金额（最小单位）
	MaximumSendableBalance *big.Int
	// DisplayMaximumSendableBalance 显示单位的最大金额
	DisplayMaximumSendableBalance string
}

// Tracker 余额跟踪器
//
// 功能说明：
// - Start 后台监听新区块头，每个新区块触发一次余额重查
// - Latest 返回最近一次成功查询的快照，未就绪时返回 nil
type Tracker struct {
	client     transport.Client
	subscriber transport.Subscriber
	bus        event.Bus
	logger     log.Logger

	address string

	mu     sync.RWMutex
	latest *Balance

	running atomic.Bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewTracker 创建余额跟踪器
//
// 参数：
// - address: 被跟踪账户地址
// - subscriber: 可为nil，nil时只做启动查询不做实时刷新
func NewTracker(client transport.Client, subscriber transport.Subscriber, bus event.Bus, logger log.Logger, address string) *Tracker {
	return &Tracker{
		client:     client,
		subscriber: subscriber,
		bus:        bus,
		logger:     logger,
		address:    address,
	}
}

// Start 启动余额跟踪
//
// ctx 仅约束启动期的查询与订阅，后台循环的生存期由 Stop 控制。
func (t *Tracker) Start(ctx context.Context) error {
	if !t.running.CompareAndSwap(false, true) {
		return fmt.Errorf("余额跟踪器已在运行")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})

	// 启动时立即查询一次，失败不阻止启动（快照保持nil）
	if err := t.Refresh(ctx); err != nil {
		t.logger.Warnf("启动余额查询失败: %v", err)
	}

	var sub transport.Subscription
	if t.subscriber != nil {
		var err error
		sub, err = t.subscriber.Subscribe(ctx, transport.SubscriptionNewHeads)
		if err != nil {
			t.running.Store(false)
			cancel()
			close(t.done)
			return fmt.Errorf("订阅新区块头失败: %w", err)
		}
	}

	go t.run(runCtx, sub)
	return nil
}

// Stop 停止余额跟踪
func (t *Tracker) Stop() error {
	if !t.running.CompareAndSwap(true, false) {
		return nil
	}
	t.cancel()
	<-t.done
	return nil
}

// Latest 返回最近的余额快照
//
// 返回：未完成首次查询时返回 nil，调用方需按"余额未知"处理
func (t *Tracker) Latest() *Balance {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.latest
}

// Refresh 立即重新查询余额并发布快照
func (t *Tracker) Refresh(ctx context.Context) error {
	value, err := t.client.GetBalance(ctx, t.address)
	if err != nil {
		return fmt.Errorf("查询余额失败: %w", err)
	}

	snapshot := &Balance{
		MaximumSendableBalance:        value,
		DisplayMaximumSendableBalance: utils.FormatWeiToDecimal(value),
	}

	t.mu.Lock()
	t.latest = snapshot
	t.mu.Unlock()

	if t.bus != nil {
		t.bus.Publish(TopicBalanceUpdated, snapshot)
	}

	t.logger.Debugf("余额快照已更新: %s", snapshot.DisplayMaximumSendableBalance)
	return nil
}

// run 监听新区块头事件并触发余额刷新
func (t *Tracker) run(ctx context.Context, sub transport.Subscription) {
	defer close(t.done)
	if sub == nil {
		<-ctx.Done()
		return
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := t.Refresh(ctx); err != nil {
				t.logger.Warnf("区块 %d 后余额刷新失败: %v", ev.BlockNumber, err)
			}
		case err, ok := <-sub.Err():
			if !ok {
				return
			}
			t.logger.Errorf("余额订阅异常: %v", err)
			return
		}
	}
}
