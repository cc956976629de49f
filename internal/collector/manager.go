package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wwwzy/aixcollect/internal/logging"
	"github.com/wwwzy/aixcollect/internal/remote"
	"github.com/wwwzy/aixcollect/internal/storage"
	"github.com/wwwzy/aixcollect/internal/tsdb"
)

// Stats 为管理器累计的采集统计，按需由 Stats() 快照。
type Stats struct {
	TotalCollections int64
	Successful       int64
	Failed           int64
	TotalRecords     int64
	LastCollection   time.Time
}

// Manager 负责整个机群的采集调度：并发控制、结果落库与累计统计。
// 采集器通过 WithX 注入，便于测试时替换。
type Manager struct {
	cfg     Config
	servers []remote.Server

	exec   Executor
	writer PointWriter
	store  *storage.Storage

	errpt  *ErrptCollector
	syslog *SyslogCollector

	started atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	statsMu sync.Mutex
	stats   Stats
}

func NewManager(cfg Config, servers []remote.Server, exec Executor, writer PointWriter) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		cfg:     cfg,
		servers: servers,
		exec:    exec,
		writer:  writer,
		errpt:   NewErrptCollector(exec, writer, cfg),
		syslog:  NewSyslogCollector(exec, writer, cfg),
	}
}

// WithStore 注入本地运行历史存储；不注入则只写时序库。
func (m *Manager) WithStore(st *storage.Storage) *Manager {
	if m == nil {
		return nil
	}
	m.store = st
	return m
}

func (m *Manager) WithErrptCollector(c *ErrptCollector) *Manager {
	if m == nil {
		return nil
	}
	m.errpt = c
	return m
}

func (m *Manager) WithSyslogCollector(c *SyslogCollector) *Manager {
	if m == nil {
		return nil
	}
	m.syslog = c
	return m
}

// CollectServer 对单台服务器跑一轮指定类型的采集。kinds 为空时按配置
// 的启用开关采集全部类型。连接探活失败会短路后续采集。
func (m *Manager) CollectServer(ctx context.Context, server remote.Server, kinds ...string) []Result {
	runID := uuid.NewString()

	if !m.exec.TestConnection(server) {
		res := Result{
			ServerName:   server.Name,
			Kind:         KindConnection,
			ErrorMessage: fmt.Sprintf("connection test failed for %s", server.Hostname),
		}
		m.record(ctx, runID, server, res)
		return []Result{res}
	}

	want := func(kind string) bool {
		if len(kinds) == 0 {
			switch kind {
			case KindErrpt:
				return m.cfg.Errpt.enabled()
			case KindSyslog:
				return m.cfg.Syslog.enabled()
			}
			return false
		}
		for _, k := range kinds {
			if k == kind {
				return true
			}
		}
		return false
	}

	var results []Result
	if want(KindErrpt) {
		results = append(results, m.collectGuarded(ctx, server, KindErrpt, m.errpt.Collect))
	}
	if want(KindSyslog) {
		results = append(results, m.collectGuarded(ctx, server, KindSyslog, m.syslog.Collect))
	}
	for _, res := range results {
		m.record(ctx, runID, server, res)
	}
	return results
}

// collectGuarded 带 panic 恢复地执行一次采集：单台机器的异常
// 不允许拖垮整轮调度。
func (m *Manager) collectGuarded(ctx context.Context, server remote.Server, kind string, fn func(context.Context, remote.Server) Result) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			logging.L().Errorw("collector panic", "server", server.Name, "kind", kind, "panic", r)
			res = Result{
				ServerName:   server.Name,
				Kind:         kind,
				ErrorMessage: fmt.Sprintf("collector panic: %v", r),
			}
		}
	}()
	return fn(ctx, server)
}

// CollectAll 用 worker 池对所有服务器并发跑一轮采集。
func (m *Manager) CollectAll(ctx context.Context, kinds ...string) []Result {
	jobs := make(chan remote.Server)
	out := make(chan []Result)

	workers := m.cfg.Workers
	if workers > len(m.servers) {
		workers = len(m.servers)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for server := range jobs {
				out <- m.CollectServer(ctx, server, kinds...)
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, server := range m.servers {
			select {
			case jobs <- server:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(out)
	}()

	var all []Result
	for batch := range out {
		all = append(all, batch...)
	}
	return all
}

// record 把一次采集结果同时写入时序库与本地运行历史，并更新统计。
func (m *Manager) record(ctx context.Context, runID string, server remote.Server, res Result) {
	m.statsMu.Lock()
	m.stats.TotalCollections++
	if res.Success {
		m.stats.Successful++
		m.stats.TotalRecords += int64(res.RecordsCollected)
	} else {
		m.stats.Failed++
	}
	m.stats.LastCollection = time.Now()
	m.statsMu.Unlock()

	if err := m.writer.WriteCollectionStats(ctx, server.Name, tsdb.CollectionStats{
		Success:          res.Success,
		RecordsCollected: res.RecordsCollected,
		ExecutionTime:    res.ExecutionTime,
	}); err != nil {
		m.cfg.OnError(fmt.Errorf("write collection stats for %s: %w", server.Name, err))
	}

	if m.store == nil {
		return
	}
	now := time.Now()
	run := &storage.CollectionRun{
		RunID:            runID,
		ServerName:       server.Name,
		Hostname:         server.Hostname,
		Kind:             res.Kind,
		Success:          res.Success,
		RecordsCollected: res.RecordsCollected,
		ErrorMessage:     res.ErrorMessage,
		StartedAt:        now.Add(-res.ExecutionTime),
		FinishedAt:       now,
	}
	if err := m.store.InsertCollectionRun(ctx, run); err != nil {
		m.cfg.OnError(fmt.Errorf("record collection run for %s: %w", server.Name, err))
	}
}

// Stats 返回累计统计的快照。
func (m *Manager) Stats() Stats {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	return m.stats
}

// Run 以守护模式运行：errpt 与 syslog 各自按配置周期独立调度，
// 启动时先各跑一轮。ctx 取消后等所有在途采集结束才返回。
func (m *Manager) Run(ctx context.Context) error {
	if m == nil {
		return errors.New("manager is nil")
	}
	if !m.started.CompareAndSwap(false, true) {
		return errors.New("manager already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	schedule := func(kind string, interval time.Duration) {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.CollectAll(runCtx, kind)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-runCtx.Done():
					return
				case <-ticker.C:
					m.CollectAll(runCtx, kind)
				}
			}
		}()
	}

	if m.cfg.Errpt.enabled() {
		schedule(KindErrpt, m.cfg.Errpt.Interval)
	}
	if m.cfg.Syslog.enabled() {
		schedule(KindSyslog, m.cfg.Syslog.Interval)
	}

	<-runCtx.Done()
	m.wg.Wait()
	return runCtx.Err()
}

// Stop 请求停止守护循环。
func (m *Manager) Stop() {
	if m == nil || m.cancel == nil {
		return
	}
	m.cancel()
}
