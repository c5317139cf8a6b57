package log

import (
	"go.uber.org/zap/zapcore"
)

// 日志配置默认值
const (
	// === 基础日志配置 ===

	// defaultLogLevel 默认日志级别设为"info"
	// info级别平衡了信息量和性能，记录重要事件但不过于详细
	defaultLogLevel = "info"

	// defaultToConsole 钱包客户端默认不向控制台输出日志
	// 控制台是交互界面，日志混入会破坏 pterm 渲染
	defaultToConsole = false

	// defaultLogFile 默认日志文件名
	defaultLogFile = "ember.log"

	// === 日志轮转配置 ===

	// defaultMaxSize 单个日志文件最大大小设为20MB
	// 钱包客户端日志量远小于节点，20MB足够覆盖长期使用
	defaultMaxSize = 20

	// defaultMaxBackups 最大备份文件数设为5
	defaultMaxBackups = 5

	// defaultMaxAge 日志文件最大保留天数设为30天
	defaultMaxAge = 30

	// defaultCompress 默认启用历史日志压缩
	defaultCompress = true

	// === 调试配置 ===

	// defaultEnableCaller 默认启用调用者信息
	defaultEnableCaller = true

	// defaultEnableStacktrace 默认对Error级别启用堆栈跟踪
	defaultEnableStacktrace = true
)

// 默认的日志级别映射
var defaultLevelMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"panic": zapcore.PanicLevel,
	"fatal": zapcore.FatalLevel,
}
