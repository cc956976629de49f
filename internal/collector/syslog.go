package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wwwzy/aixcollect/internal/logging"
	"github.com/wwwzy/aixcollect/internal/remote"
	"github.com/wwwzy/aixcollect/internal/report"
)

// SyslogCollector 从一组远端日志文件里拉取最新若干行并写入时序库。
// 每个文件先探测可读性，不可读的直接跳过，不影响其余文件。
type SyslogCollector struct {
	exec   Executor
	writer PointWriter
	cfg    Config
}

func NewSyslogCollector(exec Executor, writer PointWriter, cfg Config) *SyslogCollector {
	return &SyslogCollector{exec: exec, writer: writer, cfg: cfg.withDefaults()}
}

func probeCommand(file string) string {
	return fmt.Sprintf("test -r %s && echo 'exists' || echo 'not_exists'", file)
}

func tailCommand(file string, lines int) string {
	return fmt.Sprintf("tail -%d %s", lines, file)
}

// Collect 遍历配置的日志文件，逐个采集后合并写入。
func (c *SyslogCollector) Collect(ctx context.Context, server remote.Server) Result {
	start := time.Now()
	res := Result{ServerName: server.Name, Kind: KindSyslog}

	var entries []report.LogEntry
	for _, file := range c.cfg.Syslog.LogFiles {
		entries = append(entries, c.fetchFile(server, file, c.cfg.Syslog.TailLines)...)
	}

	if len(entries) == 0 {
		res.Success = true
		res.ExecutionTime = time.Since(start)
		return res
	}

	records := make([]report.Record, 0, len(entries))
	for _, rec := range report.ParseSyslogEntries(entries) {
		records = append(records, report.EnrichSyslog(rec, server.Name, server.Hostname))
	}

	if err := c.writer.WriteSyslog(ctx, server.Name, records); err != nil {
		res.ErrorMessage = fmt.Sprintf("write syslog records: %v", err)
		res.ExecutionTime = time.Since(start)
		return res
	}

	res.Success = true
	res.RecordsCollected = len(records)
	res.ExecutionTime = time.Since(start)
	logging.L().Infow("syslog collection done",
		"server", server.Name,
		"records", res.RecordsCollected,
		"files", len(c.cfg.Syslog.LogFiles),
	)
	return res
}

// CollectFile 采集单个日志文件，供命令行按需拉取使用。
func (c *SyslogCollector) CollectFile(ctx context.Context, server remote.Server, file string, lines int) Result {
	start := time.Now()
	res := Result{ServerName: server.Name, Kind: KindSyslog}
	if lines <= 0 {
		lines = c.cfg.Syslog.TailLines
	}

	entries := c.fetchFile(server, file, lines)
	if len(entries) == 0 {
		res.Success = true
		res.ExecutionTime = time.Since(start)
		return res
	}

	records := make([]report.Record, 0, len(entries))
	for _, rec := range report.ParseSyslogEntries(entries) {
		records = append(records, report.EnrichSyslog(rec, server.Name, server.Hostname))
	}
	if err := c.writer.WriteSyslog(ctx, server.Name, records); err != nil {
		res.ErrorMessage = fmt.Sprintf("write syslog records: %v", err)
		res.ExecutionTime = time.Since(start)
		return res
	}
	res.Success = true
	res.RecordsCollected = len(records)
	res.ExecutionTime = time.Since(start)
	return res
}

// fetchFile 探测并拉取单个文件，返回带采集时间戳的原始行。
func (c *SyslogCollector) fetchFile(server remote.Server, file string, lines int) []report.LogEntry {
	ok, stdout, _ := c.exec.Execute(server, probeCommand(file), c.cfg.CommandTimeout)
	if !ok || !strings.Contains(stdout, "exists") || strings.Contains(stdout, "not_exists") {
		logging.L().Debugw("log file not readable, skipping", "server", server.Name, "file", file)
		return nil
	}

	ok, stdout, stderr := c.exec.Execute(server, tailCommand(file, lines), c.cfg.CommandTimeout)
	if !ok {
		logging.L().Warnw("tail failed",
			"server", server.Name,
			"file", file,
			"stderr", strings.TrimSpace(stderr),
		)
		return nil
	}

	now := time.Now().Format(time.RFC3339)
	var entries []report.LogEntry
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		entries = append(entries, report.LogEntry{Source: file, Message: line, Timestamp: now})
	}
	return entries
}
