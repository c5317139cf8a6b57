package ui

import "sync"

// SpinnerAdvisory 基于加载动画的忙碌提示
//
// 功能：
//   - 向终端用户展示"提交进行中"的全局状态
//   - 纯提示用途，不参与提交互斥
type SpinnerAdvisory struct {
	ui Components

	mu      sync.Mutex
	spinner Spinner
}

// NewSpinnerAdvisory 创建忙碌提示
func NewSpinnerAdvisory(ui Components) *SpinnerAdvisory {
	return &SpinnerAdvisory{ui: ui}
}

// SetBusy 显示忙碌提示
//
// 已有提示在显示时更新文本而不叠加动画。
func (a *SpinnerAdvisory) SetBusy(message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.spinner != nil {
		_ = a.spinner.UpdateText(message)
		return
	}
	spinner := a.ui.ShowSpinner(message)
	if err := spinner.Start(); err != nil {
		return
	}
	a.spinner = spinner
}

// ClearBusy 清除忙碌提示
func (a *SpinnerAdvisory) ClearBusy() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.spinner == nil {
		return
	}
	_ = a.spinner.Stop()
	a.spinner = nil
}
