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

// ErrptCollector 拉取 AIX errpt -a 详细错误报告并写入时序库。
type ErrptCollector struct {
	exec   Executor
	writer PointWriter
	cfg    Config
}

func NewErrptCollector(exec Executor, writer PointWriter, cfg Config) *ErrptCollector {
	return &ErrptCollector{exec: exec, writer: writer, cfg: cfg.withDefaults()}
}

// errptCommand 按回溯窗口生成 errpt 命令。AIX date 不支持 -d，
// 这里依赖远端安装的 GNU coreutils；没有窗口时退回全量报告。
func errptCommand(timeRange string) string {
	switch strings.ToLower(timeRange) {
	case "1h":
		return `errpt -a -s $(date -d '1 hour ago' +%m%d%H%M%y)`
	case "1d":
		return `errpt -a -s $(date -d '1 day ago' +%m%d%H%M%y)`
	case "1w":
		return `errpt -a -s $(date -d '7 days ago' +%m%d%H%M%y)`
	default:
		return "errpt -a"
	}
}

// Collect 对单台服务器执行一次 errpt 采集。
func (c *ErrptCollector) Collect(ctx context.Context, server remote.Server) Result {
	start := time.Now()
	res := Result{ServerName: server.Name, Kind: KindErrpt}

	ok, stdout, stderr := c.exec.Execute(server, errptCommand(c.cfg.Errpt.TimeRange), c.cfg.CommandTimeout)
	if !ok {
		res.ErrorMessage = fmt.Sprintf("errpt command failed: %s", strings.TrimSpace(stderr))
		res.ExecutionTime = time.Since(start)
		return res
	}

	parsed := report.ParseErrptReport(stdout)
	if len(parsed) == 0 {
		// 没有新错误也是一次成功采集
		logging.L().Debugw("no errpt records", "server", server.Name)
		res.Success = true
		res.ExecutionTime = time.Since(start)
		return res
	}

	records := make([]report.Record, 0, len(parsed))
	for _, rec := range parsed {
		records = append(records, report.EnrichErrpt(rec, server.Name, server.Hostname))
	}

	if err := c.writer.WriteErrpt(ctx, server.Name, records); err != nil {
		res.ErrorMessage = fmt.Sprintf("write errpt records: %v", err)
		res.ExecutionTime = time.Since(start)
		return res
	}

	res.Success = true
	res.RecordsCollected = len(records)
	res.ExecutionTime = time.Since(start)
	logging.L().Infow("errpt collection done",
		"server", server.Name,
		"records", res.RecordsCollected,
		"elapsed", res.ExecutionTime,
	)
	return res
}
