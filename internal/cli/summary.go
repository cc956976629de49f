package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/wwwzy/aixcollect/internal/report"
	"github.com/wwwzy/aixcollect/internal/tsdb"

	"github.com/spf13/cobra"
)

var (
	summaryServer   string
	summaryRange    string
	summaryCritical bool
)

// summaryCmd 代表 summary 命令
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "查看时序库中的采集数据汇总",
}

var summaryErrptCmd = &cobra.Command{
	Use:   "errpt",
	Short: "按 severity 汇总 errpt 错误计数",
	RunE:  runErrptSummary,
}

var summarySyslogCmd = &cobra.Command{
	Use:   "syslog",
	Short: "按 facility 汇总系统日志计数",
	RunE:  runSyslogSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.AddCommand(summaryErrptCmd)
	summaryCmd.AddCommand(summarySyslogCmd)

	summaryCmd.PersistentFlags().StringVar(&summaryServer, "server", "", "只看指定服务器")
	summaryCmd.PersistentFlags().StringVar(&summaryRange, "range", "24h", "回溯窗口（Flux 相对区间，如 1h / 24h / 7d）")
	summaryErrptCmd.Flags().BoolVar(&summaryCritical, "critical", false, "只看 H/S 级别")
}

func runErrptSummary(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	tsStore, err := tsdb.Open(ctx, cfg.InfluxDB)
	if err != nil {
		return fmt.Errorf("连接 InfluxDB 失败: %w", err)
	}
	defer tsStore.Close()

	rows, err := tsStore.QueryErrptSummary(ctx, summaryServer, summaryRange)
	if err != nil {
		return err
	}
	if summaryCritical {
		var kept []tsdb.SummaryRow
		for _, row := range rows {
			if row.Tag == report.SeverityHigh || row.Tag == report.SeveritySerious {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	title := fmt.Sprintf("errpt by severity (last %s)", summaryRange)
	printSummary(title, "Severity", rows, renderSeverity)
	return nil
}

func runSyslogSummary(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	tsStore, err := tsdb.Open(ctx, cfg.InfluxDB)
	if err != nil {
		return fmt.Errorf("连接 InfluxDB 失败: %w", err)
	}
	defer tsStore.Close()

	rows, err := tsStore.QuerySyslogSummary(ctx, summaryServer, summaryRange)
	if err != nil {
		return err
	}
	printSummary(fmt.Sprintf("syslog by facility (last %s)", summaryRange), "Facility", rows, nil)
	return nil
}

// renderSeverity 给 H/S 上色，其余原样输出。
func renderSeverity(tag string) string {
	switch tag {
	case report.SeverityHigh, report.SeveritySerious:
		return failStyle.Render(tag)
	default:
		return tag
	}
}

func printSummary(title, tagHeader string, rows []tsdb.SummaryRow, render func(string) string) {
	fmt.Println(headStyle.Render(title))
	if len(rows) == 0 {
		fmt.Println("no data")
		return
	}
	if render == nil {
		render = func(tag string) string { return tag }
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].ServerName != rows[j].ServerName {
			return rows[i].ServerName < rows[j].ServerName
		}
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Tag < rows[j].Tag
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintf(w, "Server\t%s\tCount\n", tagHeader)
	fmt.Fprintf(w, "------\t%s\t-----\n", strings.Repeat("-", len(tagHeader)))
	var total int64
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d\n", row.ServerName, render(row.Tag), row.Count)
		total += row.Count
	}
	fmt.Fprintf(w, "\tTotal\t%d\n", total)
	w.Flush()
}
