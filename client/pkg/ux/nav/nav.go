// Package nav 提供发送流程的页面导航与查询串解析
//
// 功能说明：
// - History 维护进程内的导航栈，携带一次性的页面状态负载
// - ParseQueryString 解析预填参数（to/asset/amount/message等）
package nav

import (
	"net/url"
	"strings"
	"sync"
)

// Location 当前导航位置
type Location struct {
	// Path 页面路径，如 "/send"
	Path string
	// Query 原始查询串（不含问号）
	Query string
	// State 导航状态负载，跳转方写入、目标页一次性读取
	State interface{}
}

// History 进程内导航栈
//
// 并发安全。State 负载按值传递引用，约定目标页读取后不再修改。
type History struct {
	mu    sync.Mutex
	stack []*Location
}

// NewHistory 创建导航栈
//
// 参数：
// - initialPath: 初始页面路径
func NewHistory(initialPath string) *History {
	h := &History{}
	h.stack = append(h.stack, splitPath(initialPath, nil))
	return h
}

// Push 压入新位置
//
// path 可携带查询串，如 "/send?to=0xabc"。
func (h *History) Push(path string, state interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stack = append(h.stack, splitPath(path, state))
}

// Replace 替换当前位置，不增加栈深度
func (h *History) Replace(path string, state interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stack[len(h.stack)-1] = splitPath(path, state)
}

// Back 回退一层
//
// 栈底时保持不动。
func (h *History) Back() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.stack) > 1 {
		h.stack = h.stack[:len(h.stack)-1]
	}
}

// Current 返回当前位置
func (h *History) Current() *Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack[len(h.stack)-1]
}

// Depth 当前栈深度
func (h *History) Depth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.stack)
}

func splitPath(path string, state interface{}) *Location {
	loc := &Location{State: state}
	if idx := strings.IndexByte(path, '?'); idx >= 0 {
		loc.Path = path[:idx]
		loc.Query = path[idx+1:]
	} else {
		loc.Path = path
	}
	return loc
}

// ParseQueryString 解析查询串为键值表
//
// 规则：
// - 按 & 切分，每段按第一个 = 分为键和值
// - 加号解码为空格，百分号转义按URL规则解码
// - 无 = 的段视为值为空串的键
// - 解码失败的段保留原文
func ParseQueryString(raw string) map[string]string {
	raw = strings.TrimPrefix(raw, "?")
	params := make(map[string]string)
	if raw == "" {
		return params
	}

	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		key, value := pair, ""
		if idx := strings.IndexByte(pair, '='); idx >= 0 {
			key, value = pair[:idx], pair[idx+1:]
		}
		params[unescape(key)] = unescape(value)
	}
	return params
}

func unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
