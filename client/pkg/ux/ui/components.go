// Package ui 提供基础 UI 组件库
package ui

import (
	"fmt"
	"syscall"

	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Components UI组件接口，定义发送流程需要的UI组件
type Components interface {
	// === 数据展示组件 ===

	// ShowKeyValuePairs 显示键值对
	// title: 标题
	// rows: 键值对数据，保持传入顺序
	ShowKeyValuePairs(title string, rows [][2]string) error

	// === 交互选择组件 ===

	// ShowMenu 显示菜单供用户选择
	// title: 菜单标题
	// options: 菜单选项
	// 返回: 选中的索引
	ShowMenu(title string, options []string) (int, error)

	// ShowConfirmDialog 显示确认对话框
	// title: 对话框标题
	// message: 提示消息
	// 返回: 用户是否确认
	ShowConfirmDialog(title, message string) (bool, error)

	// ShowInputDialog 显示输入对话框
	// title: 对话框标题
	// prompt: 输入提示
	// isPassword: 是否为密码输入（隐藏显示）
	// 返回: 用户输入的内容
	ShowInputDialog(title, prompt string, isPassword bool) (string, error)

	// === 进度反馈组件 ===

	// ShowSpinner 显示加载动画
	// message: 加载消息
	ShowSpinner(message string) Spinner

	// === 状态显示组件 ===

	// ShowSuccess 显示成功消息
	ShowSuccess(message string) error

	// ShowError 显示错误消息
	ShowError(message string) error

	// ShowWarning 显示警告消息
	ShowWarning(message string) error

	// ShowInfo 显示信息消息
	ShowInfo(message string) error

	// ShowHeader 显示标题
	ShowHeader(text string) error
}

// Spinner 加载动画接口
type Spinner interface {
	// Start 开始动画
	Start() error

	// UpdateText 更新文本
	UpdateText(text string) error

	// Stop 停止动画
	Stop() error

	// Success 以成功状态停止
	Success(message string) error

	// Fail 以失败状态停止
	Fail(message string) error
}

// components UI组件集合的pterm实现
type components struct{}

var _ Components = (*components)(nil)

// NewComponents 创建UI组件实例
func NewComponents() Components {
	return &components{}
}

// ShowKeyValuePairs 显示键值对
func (c *components) ShowKeyValuePairs(title string, rows [][2]string) error {
	if title != "" {
		pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgLightBlue)).Println(title)
	}

	data := [][]string{{"项目", "值"}}
	for _, row := range rows {
		data = append(data, []string{row[0], row[1]})
	}
	table := pterm.DefaultTable.WithHasHeader().WithHeaderRowSeparator("-")
	return table.WithData(data).Render()
}

// ShowMenu 显示菜单选择
func (c *components) ShowMenu(title string, options []string) (int, error) {
	if title != "" {
		pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgLightBlue)).Println(title)
		pterm.Println()
	}

	result, err := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithDefaultText("请选择一个选项").
		WithMaxHeight(10).
		WithFilter(false).
		Show()
	if err != nil {
		return -1, fmt.Errorf("菜单选择失败: %v", err)
	}

	for i, option := range options {
		if option == result {
			return i, nil
		}
	}
	return -1, fmt.Errorf("未找到选中的选项: %s", result)
}

// ShowConfirmDialog 显示确认对话框
func (c *components) ShowConfirmDialog(title, message string) (bool, error) {
	if title != "" {
		pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgYellow)).Println(title)
		pterm.Println()
	}
	pterm.Info.Println(message)
	pterm.Println()

	result, err := pterm.DefaultInteractiveConfirm.
		WithDefaultText("确认继续吗？").
		WithDefaultValue(false).
		Show()
	if err != nil {
		return false, fmt.Errorf("确认对话框失败: %v", err)
	}
	return result, nil
}

// ShowInputDialog 显示输入对话框
func (c *components) ShowInputDialog(title, prompt string, isPassword bool) (string, error) {
	if title != "" {
		pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgLightBlue)).Println(title)
		pterm.Println()
	}

	if isPassword {
		pterm.Print(prompt + ": ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		pterm.Println()
		if err != nil {
			return "", fmt.Errorf("读取输入失败: %v", err)
		}
		return string(raw), nil
	}

	result, err := pterm.DefaultInteractiveTextInput.
		WithDefaultText(prompt).
		Show()
	if err != nil {
		return "", fmt.Errorf("输入对话框失败: %v", err)
	}
	return result, nil
}

// ShowSpinner 显示加载动画
func (c *components) ShowSpinner(message string) Spinner {
	return &ptermSpinner{message: message}
}

// ShowSuccess 显示成功消息
func (c *components) ShowSuccess(message string) error {
	pterm.Success.Println(message)
	return nil
}

// ShowError 显示错误消息
func (c *components) ShowError(message string) error {
	pterm.Error.Println(message)
	return nil
}

// ShowWarning 显示警告消息
func (c *components) ShowWarning(message string) error {
	pterm.Warning.Println(message)
	return nil
}

// ShowInfo 显示信息消息
func (c *components) ShowInfo(message string) error {
	pterm.Info.Println(message)
	return nil
}

// ShowHeader 显示标题
func (c *components) ShowHeader(text string) error {
	pterm.DefaultHeader.WithFullWidth().Println(text)
	return nil
}

// ptermSpinner pterm加载动画封装
type ptermSpinner struct {
	message string
	printer *pterm.SpinnerPrinter
}

var _ Spinner = (*ptermSpinner)(nil)

func (s *ptermSpinner) Start() error {
	printer, err := pterm.DefaultSpinner.Start(s.message)
	if err != nil {
		return err
	}
	s.printer = printer
	return nil
}

func (s *ptermSpinner) UpdateText(text string) error {
	if s.printer != nil {
		s.printer.UpdateText(text)
	}
	return nil
}

func (s *ptermSpinner) Stop() error {
	if s.printer == nil {
		return nil
	}
	return s.printer.Stop()
}

func (s *ptermSpinner) Success(message string) error {
	if s.printer != nil {
		s.printer.Success(message)
	}
	return nil
}

func (s *ptermSpinner) Fail(message string) error {
	if s.printer != nil {
		s.printer.Fail(message)
	}
	return nil
}
