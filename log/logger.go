/*
*

	@author: shiliang
	@date: 2025/2/14
	@note: 基于zap的全局日志，支持lumberjack日志轮转

*
*/
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 全局日志实例，InitLogger之前使用默认配置
var Logger *zap.SugaredLogger

func init() {
	// 默认控制台日志，保证未初始化时（如单元测试）Logger可用
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		zapcore.InfoLevel,
	)
	Logger = zap.New(core).Sugar()
}

// Options 日志初始化参数
type Options struct {
	Level      string // debug/info/warn/error
	FilePath   string // 为空时只输出到stdout
	MaxSizeMB  int    // 单个日志文件大小上限
	MaxBackups int    // 保留的历史文件数
	MaxAgeDays int    // 保留天数
	Compress   bool   // 是否压缩历史文件
}

// InitLogger 初始化全局日志
func InitLogger(opts Options) error {
	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil && opts.Level != "" {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	syncers := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if opts.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		syncers = append(syncers, zapcore.AddSync(rotator))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(syncers...), level)
	Logger = zap.New(core, zap.AddCaller()).Sugar()
	return nil
}

// Sync 刷新缓冲日志，进程退出前调用
func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}
