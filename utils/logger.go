package utils

import (
	"os"
	"strings"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

func levelFromString(l string) zapcore.Level {
	switch strings.ToLower(l) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// rotatingWriter 按天切分的日志文件，保留 7 天
func rotatingWriter(file string) (zapcore.WriteSyncer, error) {
	w, err := rotatelogs.New(
		file+".%Y%m%d",
		rotatelogs.WithLinkName(file),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(w), nil
}

// InitLogger 初始化全局日志器（dev 模式输出可读格式，否则 JSON）
//
// file 非空时同时写入按天切分的日志文件。
func InitLogger(level string, dev bool, file string) error {
	lvl := levelFromString(level)
	if dev {
		c := zap.NewDevelopmentConfig()
		c.Level = zap.NewAtomicLevelAt(lvl)
		l, err := c.Build()
		if err != nil {
			return err
		}
		logger = l
		return nil
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	out := zapcore.AddSync(os.Stdout)
	if file != "" {
		fileOut, err := rotatingWriter(file)
		if err != nil {
			return err
		}
		out = zapcore.NewMultiWriteSyncer(out, fileOut)
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), out, lvl)
	logger = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return nil
}

// Logger 获取全局日志器（未初始化时返回 Nop，方便测试）
func Logger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// SyncLogger 刷新日志缓冲
func SyncLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}
