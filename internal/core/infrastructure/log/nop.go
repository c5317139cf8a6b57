package log

import (
	logInterface "github.com/emberwallet/v1/pkg/interfaces/infrastructure/log"
	"go.uber.org/zap"
)

// nopLogger 丢弃所有日志的空实现，用于测试和禁用日志的场景
type nopLogger struct{}

// NewNop 创建空日志记录器
func NewNop() logInterface.Logger {
	return nopLogger{}
}

func (nopLogger) Debug(msg string)                           {}
func (nopLogger) Debugf(format string, args ...interface{})  {}
func (nopLogger) Info(msg string)                            {}
func (nopLogger) Infof(format string, args ...interface{})   {}
func (nopLogger) Warn(msg string)                            {}
func (nopLogger) Warnf(format string, args ...interface{})   {}
func (nopLogger) Error(msg string)                           {}
func (nopLogger) Errorf(format string, args ...interface{})  {}
func (nopLogger) Fatal(msg string)                           {}
func (nopLogger) Fatalf(format string, args ...interface{})  {}
func (n nopLogger) With(fields ...zap.Field) logInterface.Logger { return n }
func (nopLogger) Sync() error                                { return nil }
