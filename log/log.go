package log

import (
	"os"

	"doi-frontend/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 全局日志对象，Init 之前是一个不输出任何内容的 logger
var Logger = zap.NewNop()

// Init 根据配置创建 logger：始终输出到 stdout，配置了 file 时额外写入按大小切割的日志文件
func Init(conf config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(conf.Level)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if conf.Encoding == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.Lock(os.Stdout), level),
	}
	if conf.File != "" {
		rotate := &lumberjack.Logger{
			Filename:   conf.File,
			MaxSize:    conf.MaxSize,
			MaxBackups: conf.MaxBackups,
			MaxAge:     conf.MaxAge,
			Compress:   conf.Compress,
		}
		// 文件里固定使用 json，方便采集
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rotate), level))
	}

	Logger = zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return Logger, nil
}

// Sync 刷新缓冲区，进程退出前调用
func Sync() {
	_ = Logger.Sync()
}
