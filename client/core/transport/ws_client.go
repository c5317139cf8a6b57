package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/websocket"
)

// WebSocketClient WebSocket客户端实现(仅用于订阅)
type WebSocketClient struct {
	endpoint  string
	conn      *websocket.Conn
	mu        sync.RWMutex
	subs      map[string]*wsSubscription
	pending   map[uint64]chan *wsMessage
	nextSubID uint64
	muSubID   sync.Mutex
	writeMu   sync.Mutex
	closeCh   chan struct{}
	closeOnce sync.Once
}

// 确保实现接口
var _ Subscriber = (*WebSocketClient)(nil)

// NewWebSocketClient 创建WebSocket客户端
func NewWebSocketClient(endpoint string) (*WebSocketClient, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, resp, err := dialer.Dial(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}
	// 关闭握手响应体
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	client := &WebSocketClient{
		endpoint: endpoint,
		conn:     conn,
		subs:     make(map[string]*wsSubscription),
		pending:  make(map[uint64]chan *wsMessage),
		closeCh:  make(chan struct{}),
	}

	// 启动消息处理循环
	go client.readLoop()

	return client, nil
}

// wsMessage WebSocket消息
type wsMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      uint64          `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *jsonrpcError   `json:"error,omitempty"`
}

// wsSubscription WebSocket订阅
//
// eventCh/errCh 只能由读循环关闭（发送方关闭原则）；取消订阅通过
// done 通知，读循环据此停止向该订阅派发。
type wsSubscription struct {
	id          string
	eventType   SubscriptionType
	eventCh     chan *Event
	errCh       chan error
	done        chan struct{}
	unsubscribe func()
}

func (s *wsSubscription) Events() <-chan *Event {
	return s.eventCh
}

func (s *wsSubscription) Err() <-chan error {
	return s.errCh
}

func (s *wsSubscription) Unsubscribe() {
	s.unsubscribe()
}

// readLoop 消息读取循环
//
// 事件与错误通道的关闭只发生在本goroutine的退出清理中，
// 避免与派发中的发送竞争。
func (c *WebSocketClient) readLoop() {
	defer func() {
		c.mu.Lock()
		for _, sub := range c.subs {
			close(sub.eventCh)
			close(sub.errCh)
		}
		c.subs = make(map[string]*wsSubscription)
		for id, ch := range c.pending {
			close(ch)
			delete(c.pending, id)
		}
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.closeCh:
			return
		default:
		}

		var msg wsMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			// 连接关闭或错误
			c.mu.RLock()
			for _, sub := range c.subs {
				select {
				case sub.errCh <- fmt.Errorf("websocket read: %w", err):
				default:
				}
			}
			c.mu.RUnlock()
			return
		}

		if msg.Method == "eth_subscription" {
			c.handleSubscriptionMessage(&msg)
			continue
		}
		if msg.ID != 0 {
			c.handleResponse(&msg)
		}
	}
}

// handleResponse 按请求ID派发调用响应
func (c *WebSocketClient) handleResponse(msg *wsMessage) {
	c.mu.Lock()
	ch, exists := c.pending[msg.ID]
	delete(c.pending, msg.ID)
	c.mu.Unlock()

	if !exists {
		return
	}
	ch <- msg
}

// handleSubscriptionMessage 处理订阅消息
func (c *WebSocketClient) handleSubscriptionMessage(msg *wsMessage) {
	var params struct {
		Subscription string          `json:"subscription"`
		Result       json.RawMessage `json:"result"`
	}

	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return
	}

	c.mu.RLock()
	sub, exists := c.subs[params.Subscription]
	c.mu.RUnlock()

	if !exists {
		return
	}

	event := &Event{Type: sub.eventType}

	// newHeads事件携带区块头，提取高度
	if sub.eventType == SubscriptionNewHeads {
		var head struct {
			Number hexutil.Uint64 `json:"number"`
		}
		if err := json.Unmarshal(params.Result, &head); err != nil {
			select {
			case sub.errCh <- fmt.Errorf("parse head: %w", err):
			default:
			}
			return
		}
		event.BlockNumber = uint64(head.Number)
	}

	select {
	case sub.eventCh <- event:
	case <-sub.done:
	case <-c.closeCh:
	}
}

// Subscribe 订阅事件
//
// 订阅ID由节点在 eth_subscribe 响应中返回，经请求ID关联后
// 用于路由后续的 eth_subscription 推送。
func (c *WebSocketClient) Subscribe(ctx context.Context, eventType SubscriptionType) (Subscription, error) {
	c.muSubID.Lock()
	c.nextSubID++
	reqID := c.nextSubID
	c.muSubID.Unlock()

	respCh := make(chan *wsMessage, 1)
	c.mu.Lock()
	c.pending[reqID] = respCh
	c.mu.Unlock()

	req := wsMessage{
		JSONRPC: "2.0",
		Method:  "eth_subscribe",
		Params:  mustMarshal([]interface{}{string(eventType)}),
		ID:      reqID,
	}

	c.writeMu.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.dropPending(reqID)
		return nil, fmt.Errorf("send subscribe: %w", err)
	}

	var subID string
	select {
	case resp := <-respCh:
		if resp == nil {
			return nil, fmt.Errorf("websocket closed")
		}
		if resp.Error != nil {
			return nil, fmt.Errorf("subscribe rejected: %s", resp.Error.Message)
		}
		if err := json.Unmarshal(resp.Result, &subID); err != nil {
			return nil, fmt.Errorf("parse subscription id: %w", err)
		}
	case <-ctx.Done():
		c.dropPending(reqID)
		return nil, ctx.Err()
	case <-c.closeCh:
		c.dropPending(reqID)
		return nil, fmt.Errorf("websocket closed")
	}

	sub := &wsSubscription{
		id:        subID,
		eventType: eventType,
		eventCh:   make(chan *Event, 100), // 缓冲100个事件
		errCh:     make(chan error, 10),
		done:      make(chan struct{}),
	}

	sub.unsubscribe = func() {
		c.unsubscribe(subID)
	}

	c.mu.Lock()
	c.subs[subID] = sub
	c.mu.Unlock()

	return sub, nil
}

// dropPending 放弃一个在途请求的响应
func (c *WebSocketClient) dropPending(reqID uint64) {
	c.mu.Lock()
	delete(c.pending, reqID)
	c.mu.Unlock()
}

// unsubscribe 取消订阅
//
// 只通知节点并摘除路由表项；事件通道的关闭归读循环所有，
// 这里关闭的是 done，让读循环停止向该订阅派发。
func (c *WebSocketClient) unsubscribe(subID string) {
	c.mu.Lock()
	sub, exists := c.subs[subID]
	delete(c.subs, subID)
	c.mu.Unlock()

	if !exists {
		return
	}
	close(sub.done)

	req := wsMessage{
		JSONRPC: "2.0",
		Method:  "eth_unsubscribe",
		Params:  mustMarshal([]interface{}{subID}),
		ID:      uint64(time.Now().UnixNano()),
	}

	c.writeMu.Lock()
	_ = c.conn.WriteJSON(req) // 忽略错误
	c.writeMu.Unlock()
}

// Close 关闭WebSocket连接
//
// 关闭底层连接后读循环退出，由其清理逻辑统一关闭所有订阅通道。
func (c *WebSocketClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
	})
	return err
}

// mustMarshal 序列化,panic on error
func mustMarshal(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("marshal: %v", err))
	}
	return data
}
