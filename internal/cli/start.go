package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wwwzy/aixcollect/internal/collector"
	"github.com/wwwzy/aixcollect/internal/logging"
	"github.com/wwwzy/aixcollect/internal/remote"
	"github.com/wwwzy/aixcollect/internal/storage"
	"github.com/wwwzy/aixcollect/internal/tsdb"

	"github.com/spf13/cobra"
)

// startCmd 代表 start 命令
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "启动 aixcollect 采集服务",
	Long: `启动 aixcollect 后台采集服务。
这将初始化本地数据库，连接 InfluxDB，并按配置周期从所有服务器采集
errpt 错误报告与系统日志。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		defer logging.Sync()

		// 1. 初始化本地运行历史存储
		fmt.Println("正在初始化存储...")
		store, err := storage.Open(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("打开存储失败: %w", err)
		}
		defer store.Close()

		// 2. 连接 InfluxDB
		fmt.Println("正在连接 InfluxDB...")
		tsStore, err := tsdb.Open(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("连接 InfluxDB 失败: %w", err)
		}
		defer tsStore.Close()

		// 3. 初始化 SSH 客户端
		sshClient, err := remote.NewClient(cfg.SSH)
		if err != nil {
			return fmt.Errorf("初始化 SSH 客户端失败: %w", err)
		}
		defer sshClient.CloseAll()

		// 4. 初始化采集管理器
		fmt.Println("正在初始化采集管理器...")
		colCfg := cfg.Collector
		colCfg.OnError = func(err error) {
			logging.L().Errorw("collection error", "error", err)
		}
		mgr := collector.NewManager(colCfg, cfg.Servers, sshClient, tsStore).WithStore(store)

		// 5. 守护循环放后台，前台等信号
		errCh := make(chan error, 1)
		go func() {
			errCh <- mgr.Run(ctx)
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		fmt.Printf("aixcollect 已启动，监控 %d 台服务器。按 Ctrl+C 停止。\n", len(cfg.Servers))

		select {
		case sig := <-sigChan:
			fmt.Printf("收到信号: %s, 正在关闭...\n", sig)
			mgr.Stop()
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("采集管理器退出: %w", err)
			}
			return nil
		}

		// 等在途采集收尾
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("管理器停止时发生错误: %w", err)
		}

		stats := mgr.Stats()
		fmt.Printf("关闭完成。累计采集 %d 次，成功 %d，失败 %d，记录 %d 条。\n",
			stats.TotalCollections, stats.Successful, stats.Failed, stats.TotalRecords)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
