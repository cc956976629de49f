package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/wwwzy/aixcollect/internal/collector"
	"github.com/wwwzy/aixcollect/internal/logging"
	"github.com/wwwzy/aixcollect/internal/remote"
	"github.com/wwwzy/aixcollect/internal/storage"
	"github.com/wwwzy/aixcollect/internal/tsdb"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	collectServer string
	collectRange  string
	collectKind   string
	collectFile   string
	collectLines  int
)

// collectCmd 代表 collect 命令
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "立即执行一轮采集",
	Long: `对所有（或指定）服务器立即执行一轮采集并退出。
--range 控制 errpt 的回溯窗口（1h / 1d / 1w / all），
--kind 可以只跑 errpt 或 syslog。`,
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVar(&collectServer, "server", "", "只采集指定名称的服务器")
	collectCmd.Flags().StringVar(&collectRange, "range", "", "errpt 回溯窗口: 1h / 1d / 1w / all")
	collectCmd.Flags().StringVar(&collectKind, "kind", "", "只采集指定类型: errpt / syslog")
	collectCmd.Flags().StringVar(&collectFile, "file", "", "只拉取单个远端日志文件（需配合 --server）")
	collectCmd.Flags().IntVar(&collectLines, "lines", 0, "配合 --file 使用，拉取行数（默认取 tail_lines 配置）")
}

func runCollect(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	defer logging.Sync()

	servers := cfg.Servers
	if collectServer != "" {
		servers = nil
		for _, s := range cfg.Servers {
			if s.Name == collectServer {
				servers = append(servers, s)
			}
		}
		if len(servers) == 0 {
			return fmt.Errorf("unknown server %q", collectServer)
		}
	}

	colCfg := cfg.Collector
	if collectRange != "" {
		colCfg.Errpt.TimeRange = collectRange
	}
	colCfg.OnError = func(err error) {
		logging.L().Errorw("collection error", "error", err)
	}

	var kinds []string
	switch collectKind {
	case "":
	case collector.KindErrpt, collector.KindSyslog:
		kinds = append(kinds, collectKind)
	default:
		return fmt.Errorf("unknown kind %q (want errpt or syslog)", collectKind)
	}

	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("打开存储失败: %w", err)
	}
	defer store.Close()

	tsStore, err := tsdb.Open(ctx, cfg.InfluxDB)
	if err != nil {
		return fmt.Errorf("连接 InfluxDB 失败: %w", err)
	}
	defer tsStore.Close()

	sshClient, err := remote.NewClient(cfg.SSH)
	if err != nil {
		return fmt.Errorf("初始化 SSH 客户端失败: %w", err)
	}
	defer sshClient.CloseAll()

	if collectFile != "" {
		if len(servers) != 1 {
			return fmt.Errorf("--file requires --server")
		}
		c := collector.NewSyslogCollector(sshClient, tsStore, colCfg)
		printResults([]collector.Result{c.CollectFile(ctx, servers[0], collectFile, collectLines)})
		return nil
	}

	mgr := collector.NewManager(colCfg, servers, sshClient, tsStore).WithStore(store)
	results := mgr.CollectAll(ctx, kinds...)

	printResults(results)
	return nil
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	headStyle = lipgloss.NewStyle().Bold(true)
)

func printResults(results []collector.Result) {
	fmt.Println(headStyle.Render("Collection Results"))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "Server\tKind\tStatus\tRecords\tElapsed\tError")
	fmt.Fprintln(w, "------\t----\t------\t-------\t-------\t-----")
	for _, res := range results {
		status := okStyle.Render("ok")
		if !res.Success {
			status = failStyle.Render("failed")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			res.ServerName, res.Kind, status, res.RecordsCollected,
			res.ExecutionTime.Round(time.Millisecond), res.ErrorMessage)
	}
	w.Flush()
}
