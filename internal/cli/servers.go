package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/wwwzy/aixcollect/internal/remote"
	"github.com/wwwzy/aixcollect/internal/tsdb"

	"github.com/spf13/cobra"
)

// serversCmd 代表 servers 命令
var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "查看和检测配置的服务器",
}

var serversListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出配置的服务器与时序库中出现过的服务器",
	RunE:  runServersList,
}

var serversTestCmd = &cobra.Command{
	Use:   "test",
	Short: "逐台检测 SSH 连通性",
	RunE:  runServersTest,
}

func init() {
	rootCmd.AddCommand(serversCmd)
	serversCmd.AddCommand(serversListCmd)
	serversCmd.AddCommand(serversTestCmd)
}

func runServersList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "Name\tHostname\tPort\tUser")
	fmt.Fprintln(w, "----\t--------\t----\t----")
	for _, s := range cfg.Servers {
		port := s.Port
		if port <= 0 {
			port = 22
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", s.Name, s.Hostname, port, s.Username)
	}
	w.Flush()

	// 时序库里最近 30 天出现过的服务器，连不上就只展示配置清单
	tsStore, err := tsdb.Open(ctx, cfg.InfluxDB)
	if err != nil {
		return nil
	}
	defer tsStore.Close()

	seen, err := tsStore.ServerList(ctx)
	if err != nil || len(seen) == 0 {
		return nil
	}
	fmt.Println()
	fmt.Println(headStyle.Render("Seen in InfluxDB (30d)"))
	for _, name := range seen {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

func runServersTest(cmd *cobra.Command, args []string) error {
	sshClient, err := remote.NewClient(cfg.SSH)
	if err != nil {
		return fmt.Errorf("初始化 SSH 客户端失败: %w", err)
	}
	defer sshClient.CloseAll()

	failed := 0
	for _, s := range cfg.Servers {
		fmt.Printf("%-20s %-24s ", s.Name, s.Hostname)
		if sshClient.TestConnection(s) {
			fmt.Println(okStyle.Render("ok"))
		} else {
			fmt.Println(failStyle.Render("unreachable"))
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d/%d servers unreachable", failed, len(cfg.Servers))
	}
	return nil
}
