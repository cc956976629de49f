package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const minimalConfig = `
servers:
  - name: "aix-prod-01"
    hostname: "10.0.0.5"
    username: "monitor"
influxdb:
  token: "file-token"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(configFile, []byte(content), 0644)
	assert.NoError(t, err)
	return configFile
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	// 验证默认值
	assert.Equal(t, "http://localhost:8086", cfg.InfluxDB.URL)
	assert.Equal(t, "aix-logs", cfg.InfluxDB.Bucket)
	assert.Equal(t, "aixcollect.db", cfg.Storage.Path)
	assert.Equal(t, 30*time.Second, cfg.SSH.Timeout)
	assert.Equal(t, 10, cfg.SSH.MaxConnections)
	assert.True(t, *cfg.Collector.Errpt.Enabled)
	assert.Equal(t, 300*time.Second, cfg.Collector.Errpt.Interval)
	assert.Equal(t, "1h", cfg.Collector.Errpt.TimeRange)
	assert.Equal(t, 60*time.Second, cfg.Collector.Syslog.Interval)
	assert.Equal(t, 100, cfg.Collector.Syslog.TailLines)
	assert.Contains(t, cfg.Collector.Syslog.LogFiles, "/var/adm/ras/errlog")
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	configFile := writeConfig(t, `
servers:
  - name: "aix-prod-01"
    hostname: "10.0.0.5"
    username: "monitor"
    port: 2222
  - name: "aix-prod-02"
    hostname: "aix02.internal"
    username: "monitor"
ssh:
  private_key_path: "/opt/keys/collector"
  timeout: "45s"
collector:
  errpt:
    time_range: "1d"
  syslog:
    enabled: false
influxdb:
  url: "http://influx.internal:8086"
  token: "file-token"
  org: "ops"
  bucket: "aix"
storage:
  path: "test.db"
  busy_timeout: "10s"
logging:
  level: "debug"
`)

	cfg, err := Load(configFile)
	assert.NoError(t, err)

	// 验证覆盖值
	assert.Len(t, cfg.Servers, 2)
	assert.Equal(t, 2222, cfg.Servers[0].Port)
	assert.Equal(t, "/opt/keys/collector", cfg.SSH.PrivateKeyPath)
	assert.Equal(t, 45*time.Second, cfg.SSH.Timeout)
	assert.Equal(t, "1d", cfg.Collector.Errpt.TimeRange)
	assert.False(t, *cfg.Collector.Syslog.Enabled)
	assert.True(t, *cfg.Collector.Errpt.Enabled)
	assert.Equal(t, "http://influx.internal:8086", cfg.InfluxDB.URL)
	assert.Equal(t, "test.db", cfg.Storage.Path)
	assert.Equal(t, 10*time.Second, cfg.Storage.BusyTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("AIXCOLLECT_INFLUXDB_TOKEN", "env-token")

	cfg, err := Load(writeConfig(t, `
servers:
  - name: "aix-prod-01"
    hostname: "10.0.0.5"
    username: "monitor"
`))
	assert.NoError(t, err)
	assert.Equal(t, "env-token", cfg.InfluxDB.Token)
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no servers",
			content: `influxdb: {token: "t"}`,
			wantErr: "servers is required",
		},
		{
			name: "missing hostname",
			content: `
servers:
  - name: "aix-prod-01"
    username: "monitor"
influxdb:
  token: "t"
`,
			wantErr: "hostname is required",
		},
		{
			name: "duplicate name",
			content: `
servers:
  - name: "aix-prod-01"
    hostname: "10.0.0.5"
    username: "monitor"
  - name: "aix-prod-01"
    hostname: "10.0.0.6"
    username: "monitor"
influxdb:
  token: "t"
`,
			wantErr: "duplicate server name",
		},
		{
			name: "missing token",
			content: `
servers:
  - name: "aix-prod-01"
    hostname: "10.0.0.5"
    username: "monitor"
`,
			wantErr: "influxdb.token is required",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
