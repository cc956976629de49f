package collector

import (
	"runtime"
	"time"
)

type ErrorHandler func(err error)

type ErrptConfig struct {
	// Enabled 控制 errpt 采集是否启用。用指针区分“未配置”（默认启用）
	// 与显式关闭。
	Enabled *bool `mapstructure:"enabled"`
	// Interval 为 errpt 采集周期（调度用，采集核心不感知）。
	Interval time.Duration `mapstructure:"interval"`
	// TimeRange 选择 errpt 命令的回溯窗口：1h / 1d / 1w，其余取全量。
	TimeRange string `mapstructure:"time_range"`
	// SeverityLevels 为严重级别白名单。目前只加载不过滤，保留字段
	// 是为了配置向后兼容；接到过滤需求时再接线。
	SeverityLevels []string `mapstructure:"severity_levels"`
}

type SyslogConfig struct {
	// Enabled 含义同 ErrptConfig.Enabled。
	Enabled *bool `mapstructure:"enabled"`
	// Interval 为系统日志采集周期（通常比 errpt 更频繁）。
	Interval time.Duration `mapstructure:"interval"`
	// LogFiles 为待采集的远端日志文件列表；不可读的文件会被跳过。
	LogFiles []string `mapstructure:"log_files"`
	// TailLines 为每个文件每次拉取的行数。
	TailLines int `mapstructure:"tail_lines"`
}

type Config struct {
	Errpt  ErrptConfig  `mapstructure:"errpt"`
	Syslog SyslogConfig `mapstructure:"syslog"`

	// Workers 为并发采集的服务器数上限。
	Workers int `mapstructure:"workers"`
	// CommandTimeout 为单条远端命令的超时。
	CommandTimeout time.Duration `mapstructure:"command_timeout"`

	// OnError 为异步错误回调（探活失败、写库失败等）；默认丢弃。
	OnError ErrorHandler `mapstructure:"-"`
}

func boolPtr(v bool) *bool { return &v }

// 未配置按启用处理，与 DefaultConfig 一致。
func (c ErrptConfig) enabled() bool  { return c.Enabled == nil || *c.Enabled }
func (c SyslogConfig) enabled() bool { return c.Enabled == nil || *c.Enabled }

func DefaultConfig() Config {
	return Config{
		Errpt: ErrptConfig{
			Enabled:        boolPtr(true),
			Interval:       300 * time.Second,
			TimeRange:      "1h",
			SeverityLevels: []string{"H", "S", "M", "L"},
		},
		Syslog: SyslogConfig{
			Enabled:  boolPtr(true),
			Interval: 60 * time.Second,
			LogFiles: []string{
				"/var/adm/ras/errlog",
				"/var/adm/ras/conslog",
				"/var/adm/messages",
			},
			TailLines: 100,
		},
		Workers:        max(2, runtime.NumCPU()),
		CommandTimeout: 30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Errpt.Enabled == nil {
		c.Errpt.Enabled = def.Errpt.Enabled
	}
	if c.Syslog.Enabled == nil {
		c.Syslog.Enabled = def.Syslog.Enabled
	}
	if c.Errpt.Interval <= 0 {
		c.Errpt.Interval = def.Errpt.Interval
	}
	if c.Syslog.Interval <= 0 {
		c.Syslog.Interval = def.Syslog.Interval
	}
	if len(c.Syslog.LogFiles) == 0 {
		c.Syslog.LogFiles = def.Syslog.LogFiles
	}
	if c.Syslog.TailLines <= 0 {
		c.Syslog.TailLines = def.Syslog.TailLines
	}
	if c.Workers <= 0 {
		c.Workers = def.Workers
	}
	if c.CommandTimeout <= 0 {
		c.CommandTimeout = def.CommandTimeout
	}
	if c.OnError == nil {
		c.OnError = func(error) {}
	}
	return c
}
