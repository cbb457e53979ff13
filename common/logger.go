package common

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// LogLevel 日志级别
type LogLevel int

const (
	// Debug 调试
	Debug LogLevel = iota + 1
	// Info 信息
	Info
	// Warn 警告
	Warn
	// Error 错误
	Error
	// Critical 严重错误
	Critical
)

var logLevelNames = map[LogLevel]string{
	Debug:    "debug",
	Info:     "info",
	Warn:     "warn",
	Error:    "error",
	Critical: "critical",
}

func (p LogLevel) String() string {
	if name, ok := logLevelNames[p]; ok {
		return name
	}
	return fmt.Sprintf("LogLevel(%d)", int(p))
}

// ParseLogLevel 解析日志级别,不区分大小写
func ParseLogLevel(level string) (LogLevel, bool) {
	level = strings.ToLower(strings.TrimSpace(level))
	for l, name := range logLevelNames {
		if name == level {
			return l, true
		}
	}
	return 0, false
}

func (p LogLevel) zapLevel() (zapcore.Level, bool) {
	switch p {
	case Debug:
		return zapcore.DebugLevel, true
	case Info:
		return zapcore.InfoLevel, true
	case Warn:
		return zapcore.WarnLevel, true
	case Error:
		return zapcore.ErrorLevel, true
	case Critical:
		return zapcore.DPanicLevel, true
	}
	return zapcore.InfoLevel, false
}

// Logger 日志接口
type Logger interface {
	Debugf(format string, params ...interface{})
	Infof(format string, params ...interface{})
	Warnf(format string, params ...interface{})
	Errorf(format string, params ...interface{})
	Criticalf(format string, params ...interface{})

	DebugEnabled() bool
	InfoEnabled() bool
	WarnEnabled() bool
	ErrorEnabled() bool

	// SetLevel 动态调整日志级别
	SetLevel(level LogLevel)
	// Sync 刷新缓冲的日志
	Sync()
}

var (
	loggerLock sync.RWMutex
	logger     Logger = NewZapLogger(&LogConfig{})
)

func currentLogger() Logger {
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	return logger
}

// initLogger 使用conf替换全局的Logger
func initLogger(conf *LogConfig) error {
	if conf == nil {
		return errInvalidConf
	}
	if conf.Level != "" {
		if _, ok := ParseLogLevel(conf.Level); !ok {
			return fmt.Errorf("invalid log level %q", conf.Level)
		}
	}
	newLogger := NewZapLogger(conf)

	loggerLock.Lock()
	old := logger
	logger = newLogger
	loggerLock.Unlock()

	if old != nil {
		old.Sync()
	}
	fmt.Fprintf(os.Stderr, "init logger,env:%s,level:%s,file:%s\n", conf.Env, conf.Level, conf.FileName)
	return nil
}

// Debugf debug
func Debugf(format string, params ...interface{}) {
	currentLogger().Debugf(format, params...)
}

// Infof info
func Infof(format string, params ...interface{}) {
	currentLogger().Infof(format, params...)
}

// Warnf warn
func Warnf(format string, params ...interface{}) {
	currentLogger().Warnf(format, params...)
}

// Errorf error
func Errorf(format string, params ...interface{}) {
	currentLogger().Errorf(format, params...)
}

// Criticalf critical
func Criticalf(format string, params ...interface{}) {
	currentLogger().Criticalf(format, params...)
}

// Logf 按照level记录日志
func Logf(level LogLevel, format string, params ...interface{}) {
	l := currentLogger()
	switch level {
	case Debug:
		l.Debugf(format, params...)
	case Warn:
		l.Warnf(format, params...)
	case Error:
		l.Errorf(format, params...)
	case Critical:
		l.Criticalf(format, params...)
	default:
		l.Infof(format, params...)
	}
}

// SetLogLevel 设置日志级别,无效的级别会被忽略
func SetLogLevel(level LogLevel) {
	currentLogger().SetLevel(level)
}

// DebugEnabled debug是否开启
func DebugEnabled() bool {
	return currentLogger().DebugEnabled()
}

// InfoEnabled info是否开启
func InfoEnabled() bool {
	return currentLogger().InfoEnabled()
}

// WarnEnabled warn是否开启
func WarnEnabled() bool {
	return currentLogger().WarnEnabled()
}

// ErrorEnabled error是否开启
func ErrorEnabled() bool {
	return currentLogger().ErrorEnabled()
}

// SyncLog 刷新日志
func SyncLog() {
	currentLogger().Sync()
}
