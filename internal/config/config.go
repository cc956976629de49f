package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/wwwzy/aixcollect/internal/collector"
	"github.com/wwwzy/aixcollect/internal/logging"
	"github.com/wwwzy/aixcollect/internal/remote"
	"github.com/wwwzy/aixcollect/internal/storage"
	"github.com/wwwzy/aixcollect/internal/tsdb"
)

type Config struct {
	// Servers 为待采集的 AIX 服务器清单。
	Servers []remote.Server `mapstructure:"servers"`

	SSH       remote.Config    `mapstructure:"ssh"`
	Collector collector.Config `mapstructure:"collector"`
	InfluxDB  tsdb.Config      `mapstructure:"influxdb"`
	Storage   storage.Config   `mapstructure:"storage"`
	Logging   logging.Config   `mapstructure:"logging"`
}

func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		// 默认搜索路径
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.aixcollect")
		v.AddConfigPath("/etc/aixcollect")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("AIXCOLLECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件未找到时落到默认值，服务器清单为空会在 Validate 报错
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Servers) == 0 {
		return fmt.Errorf("servers is required: configure at least one AIX host")
	}
	seen := make(map[string]struct{}, len(c.Servers))
	for i, s := range c.Servers {
		if s.Name == "" {
			return fmt.Errorf("servers[%d].name is required", i)
		}
		if s.Hostname == "" {
			return fmt.Errorf("server %q: hostname is required", s.Name)
		}
		if s.Username == "" {
			return fmt.Errorf("server %q: username is required", s.Name)
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("duplicate server name %q", s.Name)
		}
		seen[s.Name] = struct{}{}
	}

	if c.InfluxDB.URL == "" {
		return fmt.Errorf("influxdb.url is required (or set AIXCOLLECT_INFLUXDB_URL env var)")
	}
	if c.InfluxDB.Token == "" {
		return fmt.Errorf("influxdb.token is required (or set AIXCOLLECT_INFLUXDB_TOKEN env var)")
	}
	if c.InfluxDB.Org == "" {
		return fmt.Errorf("influxdb.org is required")
	}
	if c.InfluxDB.Bucket == "" {
		return fmt.Errorf("influxdb.bucket is required")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// -------------------------------------------------------------------------
	// SSH Defaults (连接默认值)
	// -------------------------------------------------------------------------
	sshDefaults := remote.DefaultConfig()
	v.SetDefault("ssh.private_key_path", sshDefaults.PrivateKeyPath)
	v.SetDefault("ssh.timeout", sshDefaults.Timeout)
	v.SetDefault("ssh.max_connections", sshDefaults.MaxConnections)

	// -------------------------------------------------------------------------
	// Collector Defaults (采集默认值)
	// -------------------------------------------------------------------------
	colDefaults := collector.DefaultConfig()
	v.SetDefault("collector.errpt.enabled", *colDefaults.Errpt.Enabled)
	v.SetDefault("collector.errpt.interval", colDefaults.Errpt.Interval)
	v.SetDefault("collector.errpt.time_range", colDefaults.Errpt.TimeRange)
	v.SetDefault("collector.errpt.severity_levels", colDefaults.Errpt.SeverityLevels)
	v.SetDefault("collector.syslog.enabled", *colDefaults.Syslog.Enabled)
	v.SetDefault("collector.syslog.interval", colDefaults.Syslog.Interval)
	v.SetDefault("collector.syslog.log_files", colDefaults.Syslog.LogFiles)
	v.SetDefault("collector.syslog.tail_lines", colDefaults.Syslog.TailLines)
	v.SetDefault("collector.workers", colDefaults.Workers)
	v.SetDefault("collector.command_timeout", colDefaults.CommandTimeout)

	// -------------------------------------------------------------------------
	// InfluxDB Defaults (时序库默认值)
	// -------------------------------------------------------------------------
	v.SetDefault("influxdb.url", "http://localhost:8086")
	// token 无默认值，但要让 viper 认识这个 key，否则纯环境变量注入
	// 的 token 不会被 Unmarshal 带出来
	v.SetDefault("influxdb.token", "")
	v.SetDefault("influxdb.org", "aix-monitoring")
	v.SetDefault("influxdb.bucket", "aix-logs")

	// -------------------------------------------------------------------------
	// Storage Defaults (本地运行历史默认值)
	// -------------------------------------------------------------------------
	v.SetDefault("storage.path", "aixcollect.db")
	v.SetDefault("storage.busy_timeout", 5*time.Second)

	// -------------------------------------------------------------------------
	// Logging Defaults (日志默认值)
	// -------------------------------------------------------------------------
	v.SetDefault("logging.file_path", "logs/aixcollect.log")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_age_days", 14)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.compress", true)
}
