// Package logging 创建驱动程序使用的 zap 日志记录器
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DebugEnv 打开调试日志的环境变量
const DebugEnv = "ELFC_DEBUG"

// Options 日志选项
type Options struct {
	Verbose bool   // 输出 debug 级别日志
	LogPath string // 额外写入的日志文件，为空则只输出到标准错误
}

// debugFromEnv 检查环境变量是否打开了调试日志
func debugFromEnv() bool {
	debug := os.Getenv(DebugEnv)
	return debug == "1" || debug == "true" || debug == "on"
}

// New 创建日志记录器
//
// 日志始终输出到标准错误；Verbose 或环境变量 ELFC_DEBUG 打开 debug 级别。
func New(opts Options) (*zap.Logger, error) {
	level := zap.InfoLevel
	if opts.Verbose || debugFromEnv() {
		level = zap.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Development = false
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if opts.LogPath != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, opts.LogPath)
	}

	return cfg.Build()
}
