// Package log 提供Ember系统的日志级别接口定义
package log

import "github.com/emberwallet/v1/pkg/types"

// LogLevel 日志级别（定义于 pkg/types）
type LogLevel = types.LogLevel

// 常量别名
const (
	DebugLevel = types.DebugLevel
	InfoLevel  = types.InfoLevel
	WarnLevel  = types.WarnLevel
	ErrorLevel = types.ErrorLevel
	FatalLevel = types.FatalLevel
)
