package tsdb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"

	"github.com/wwwzy/aixcollect/internal/logging"
	"github.com/wwwzy/aixcollect/internal/report"
)

// 入库的三类 measurement。
const (
	MeasurementErrpt           = "errpt"
	MeasurementSyslog          = "syslog"
	MeasurementCollectionStats = "collection_stats"
)

type Config struct {
	URL    string `mapstructure:"url"`
	Token  string `mapstructure:"token"`
	Org    string `mapstructure:"org"`
	Bucket string `mapstructure:"bucket"`
}

// Store 封装 InfluxDB v2 客户端，批量写入与 Flux 汇总查询。
// 写入按“每次采集一批”的粒度整体成败，不做单条重试。
type Store struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	queryAPI api.QueryAPI
	bucket   string
}

func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URL == "" || cfg.Token == "" || cfg.Org == "" || cfg.Bucket == "" {
		return nil, errors.New("influxdb url/token/org/bucket are required")
	}

	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	s := &Store{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		queryAPI: client.QueryAPI(cfg.Org),
		bucket:   cfg.Bucket,
	}

	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("influxdb health check: %w", err)
	}
	// 降级状态不拒绝启动，交给写入时再失败。
	if health.Status != domain.HealthCheckStatusPass {
		logging.L().Warnw("influxdb health degraded", "status", health.Status)
	}
	return s, nil
}

func (s *Store) Close() {
	if s == nil || s.client == nil {
		return
	}
	s.client.Close()
}

func getString(rec report.Record, key string) string {
	if v, ok := rec[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

func getInt(rec report.Record, key string) int {
	if v, ok := rec[key]; ok {
		if n, ok := v.(int); ok {
			return n
		}
	}
	return 0
}

func stringOr(rec report.Record, key, fallback string) string {
	if v := getString(rec, key); v != "" {
		return v
	}
	return fallback
}

// WriteErrpt 将一批 errpt 记录写入 errpt measurement，整批成败。
func (s *Store) WriteErrpt(ctx context.Context, serverName string, records []report.Record) error {
	if s == nil || s.writeAPI == nil {
		return errors.New("tsdb not initialized")
	}
	if len(records) == 0 {
		return nil
	}

	now := time.Now()
	points := make([]*write.Point, 0, len(records))
	for _, rec := range records {
		tags := map[string]string{
			"server_name":   serverName,
			"severity":      stringOr(rec, "severity", report.SeverityUnknown),
			"error_id":      getString(rec, "error_id"),
			"resource_name": getString(rec, "resource_name"),
		}
		fields := map[string]any{
			"count":               1,
			"description":         getString(rec, "description"),
			"resource_type":       getString(rec, "resource_type"),
			"resource_class":      getString(rec, "resource_class"),
			"sequence_number":     getInt(rec, "sequence_number"),
			"machine_id":          getString(rec, "machine_id"),
			"node_id":             getString(rec, "node_id"),
			"class":               getString(rec, "class"),
			"type":                getString(rec, "type"),
			"resource_id":         getString(rec, "resource_id"),
			"logical_resource_id": getString(rec, "logical_resource_id"),
			"location_code":       getString(rec, "location_code"),
			"vpd":                 getString(rec, "vpd"),
		}
		points = append(points, influxdb2.NewPoint(MeasurementErrpt, tags, fields, now))
	}

	if err := s.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("write errpt points: %w", err)
	}
	return nil
}

// WriteSyslog 将一批系统日志记录写入 syslog measurement，整批成败。
func (s *Store) WriteSyslog(ctx context.Context, serverName string, records []report.Record) error {
	if s == nil || s.writeAPI == nil {
		return errors.New("tsdb not initialized")
	}
	if len(records) == 0 {
		return nil
	}

	now := time.Now()
	points := make([]*write.Point, 0, len(records))
	for _, rec := range records {
		tags := map[string]string{
			"server_name": serverName,
			"facility":    stringOr(rec, "facility", report.FacilityUnknown),
			"priority":    stringOr(rec, "priority", report.PriorityUnknown),
			"source":      getString(rec, "source"),
		}
		fields := map[string]any{
			"count":      1,
			"message":    getString(rec, "message"),
			"timestamp":  getString(rec, "timestamp"),
			"process_id": getString(rec, "process_id"),
			"hostname":   getString(rec, "hostname"),
		}
		points = append(points, influxdb2.NewPoint(MeasurementSyslog, tags, fields, now))
	}

	if err := s.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("write syslog points: %w", err)
	}
	return nil
}

// CollectionStats 为一次采集的运行指标。
type CollectionStats struct {
	Success          bool
	RecordsCollected int
	ExecutionTime    time.Duration
}

// WriteCollectionStats 写入 collection_stats 指标点；success 按 0/1 整数入库。
func (s *Store) WriteCollectionStats(ctx context.Context, serverName string, stats CollectionStats) error {
	if s == nil || s.writeAPI == nil {
		return errors.New("tsdb not initialized")
	}

	success := 0
	if stats.Success {
		success = 1
	}
	point := influxdb2.NewPoint(MeasurementCollectionStats,
		map[string]string{"server_name": serverName},
		map[string]any{
			"success":           success,
			"records_collected": stats.RecordsCollected,
			"execution_time":    stats.ExecutionTime.Seconds(),
		},
		time.Now())

	if err := s.writeAPI.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("write collection stats: %w", err)
	}
	return nil
}

// SummaryRow 为汇总查询的一行：按 server + 分组标签求和后的计数。
type SummaryRow struct {
	ServerName string
	Tag        string
	Count      int64
	Timestamp  time.Time
}

// QueryErrptSummary 按 severity 汇总 errpt 计数；serverName 为空时跨全部服务器。
// timeRange 为 Flux 相对区间（如 "1h"、"1d"）。
func (s *Store) QueryErrptSummary(ctx context.Context, serverName, timeRange string) ([]SummaryRow, error) {
	return s.querySummary(ctx, MeasurementErrpt, "severity", serverName, timeRange)
}

// QuerySyslogSummary 按 facility 汇总 syslog 计数。
func (s *Store) QuerySyslogSummary(ctx context.Context, serverName, timeRange string) ([]SummaryRow, error) {
	return s.querySummary(ctx, MeasurementSyslog, "facility", serverName, timeRange)
}

func (s *Store) querySummary(ctx context.Context, measurement, groupTag, serverName, timeRange string) ([]SummaryRow, error) {
	if s == nil || s.queryAPI == nil {
		return nil, errors.New("tsdb not initialized")
	}

	query := summaryFlux(s.bucket, measurement, groupTag, serverName, timeRange)
	result, err := s.queryAPI.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s summary: %w", measurement, err)
	}
	defer result.Close()

	var rows []SummaryRow
	for result.Next() {
		rec := result.Record()
		row := SummaryRow{Timestamp: rec.Time()}
		if v, ok := rec.ValueByKey("server_name").(string); ok {
			row.ServerName = v
		}
		if v, ok := rec.ValueByKey(groupTag).(string); ok {
			row.Tag = v
		}
		switch v := rec.Value().(type) {
		case int64:
			row.Count = v
		case float64:
			row.Count = int64(v)
		}
		rows = append(rows, row)
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("iterate %s summary: %w", measurement, result.Err())
	}
	return rows, nil
}

// summaryFlux 生成与既有看板相同口径的汇总查询。
func summaryFlux(bucket, measurement, groupTag, serverName, timeRange string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `from(bucket: %q)
  |> range(start: -%s)
  |> filter(fn: (r) => r["_measurement"] == %q)
  |> filter(fn: (r) => r["_field"] == "count")
`, bucket, timeRange, measurement)
	if serverName != "" {
		fmt.Fprintf(&b, "  |> filter(fn: (r) => r[\"server_name\"] == %q)\n", serverName)
	}
	fmt.Fprintf(&b, `  |> group(columns: ["server_name", %q])
  |> sum()
  |> yield(name: "summary")
`, groupTag)
	return b.String()
}

// ServerList 返回近 30 天内有数据的服务器名（去重）。
func (s *Store) ServerList(ctx context.Context) ([]string, error) {
	if s == nil || s.queryAPI == nil {
		return nil, errors.New("tsdb not initialized")
	}

	query := fmt.Sprintf(`from(bucket: %q)
  |> range(start: -30d)
  |> filter(fn: (r) => r["_measurement"] == %q or r["_measurement"] == %q)
  |> keep(columns: ["server_name"])
  |> distinct(column: "server_name")
`, s.bucket, MeasurementErrpt, MeasurementSyslog)

	result, err := s.queryAPI.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query server list: %w", err)
	}
	defer result.Close()

	seen := make(map[string]bool)
	var servers []string
	for result.Next() {
		name, _ := result.Record().ValueByKey("server_name").(string)
		if name != "" && !seen[name] {
			seen[name] = true
			servers = append(servers, name)
		}
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("iterate server list: %w", result.Err())
	}
	return servers, nil
}
