package collector

import (
	"context"
	"time"

	"github.com/wwwzy/aixcollect/internal/remote"
	"github.com/wwwzy/aixcollect/internal/report"
	"github.com/wwwzy/aixcollect/internal/tsdb"
)

// 采集类型，同时用作 collection_stats 与本地运行记录的 kind 字段。
const (
	KindErrpt      = "errpt"
	KindSyslog     = "syslog"
	KindConnection = "connection_test"
)

// Executor 抽象远端命令执行，生产实现是 remote.Client。
type Executor interface {
	Execute(server remote.Server, command string, timeout time.Duration) (ok bool, stdout, stderr string)
	TestConnection(server remote.Server) bool
}

// PointWriter 抽象时序库写入，生产实现是 tsdb.Store。
type PointWriter interface {
	WriteErrpt(ctx context.Context, serverName string, records []report.Record) error
	WriteSyslog(ctx context.Context, serverName string, records []report.Record) error
	WriteCollectionStats(ctx context.Context, serverName string, stats tsdb.CollectionStats) error
}

// Result 为一次单机单类型采集的结果。写入失败按全有或全无处理：
// RecordsCollected 归零，不统计已解析但未落库的记录。
type Result struct {
	ServerName       string
	Kind             string
	Success          bool
	RecordsCollected int
	ErrorMessage     string
	ExecutionTime    time.Duration
}
