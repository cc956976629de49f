package logging

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	// FilePath 为空时只输出到标准输出。
	FilePath string `mapstructure:"file_path"`
	// Level 为 debug/info/warn/error，解析失败回退 info。
	Level string `mapstructure:"level"`
	// MaxSizeMB 为单个日志文件上限（MB）。
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	MaxBackups int  `mapstructure:"max_backups"`
	Compress   bool `mapstructure:"compress"`
	// Development 开启后同时打印到标准输出。
	Development bool `mapstructure:"development"`
}

var (
	mu     sync.RWMutex
	logger = zap.NewNop().Sugar()
)

// Init 按配置初始化全局 logger：JSON 编码，经 lumberjack 滚动落盘。
func Init(cfg Config) {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var syncers []zapcore.WriteSyncer
	if cfg.FilePath != "" {
		syncers = append(syncers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSizeMB,
			MaxAge:     cfg.MaxAgeDays,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}))
	}
	if cfg.Development || cfg.FilePath == "" {
		syncers = append(syncers, zapcore.AddSync(os.Stdout))
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.NewMultiWriteSyncer(syncers...),
		zap.NewAtomicLevelAt(level),
	)

	mu.Lock()
	logger = zap.New(core, zap.AddCaller()).Sugar()
	mu.Unlock()
}

// L 返回全局 logger；Init 之前返回 no-op，测试里不用特殊处理。
func L() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Sync 刷新缓冲，进程退出前调用。
func Sync() {
	_ = L().Sync()
}
