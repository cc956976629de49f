package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/wwwzy/aixcollect/internal/storage"
)

// storageCmd represents the storage command
var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "管理本地运行历史数据库",
	Long:  `提供查看本地数据库概况、浏览采集运行历史和清理旧记录的命令。`,
}

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "显示数据库统计概况",
	Run:   runInfo,
}

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "浏览最近的采集运行记录",
	Run:   runRuns,
}

// pruneCmd represents the prune command
var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "清理旧的运行记录",
	Long:  `根据用户指定的保留条数或天数，清理旧的采集运行记录。`,
	Run:   runPrune,
}

var (
	keepRunCount int
	keepRunDays  int

	runsServer string
	runsKind   string
	runsLimit  int
	runsFailed bool
)

func init() {
	pruneCmd.Flags().IntVar(&keepRunCount, "keep", 0, "保留最近的 N 条记录")
	pruneCmd.Flags().IntVar(&keepRunDays, "days", 0, "保留最近 N 天的记录")

	runsCmd.Flags().StringVar(&runsServer, "server", "", "只看指定服务器")
	runsCmd.Flags().StringVar(&runsKind, "kind", "", "只看指定类型: errpt / syslog / connection_test")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 50, "最多显示 N 条")
	runsCmd.Flags().BoolVar(&runsFailed, "failed", false, "只看失败的运行")

	rootCmd.AddCommand(storageCmd)
	storageCmd.AddCommand(infoCmd)
	storageCmd.AddCommand(runsCmd)
	storageCmd.AddCommand(pruneCmd)
}

func openStore(ctx context.Context) *storage.Storage {
	if cfg == nil {
		fmt.Println("Config not loaded")
		os.Exit(1)
	}
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		fmt.Printf("Error opening database: %v\n", err)
		os.Exit(1)
	}
	return store
}

func runInfo(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	store := openStore(ctx)
	defer store.Close()

	dbSizeStr := cfg.Storage.Path
	if abs, err := filepath.Abs(cfg.Storage.Path); err == nil {
		dbSizeStr = abs
	}
	if fi, err := os.Stat(cfg.Storage.Path); err == nil {
		dbSizeStr = fmt.Sprintf("%s (%.1f KiB)", dbSizeStr, float64(fi.Size())/1024)
	}
	fmt.Printf("Database File: %s\n\n", dbSizeStr)

	count, err := store.CountCollectionRuns(ctx)
	if err != nil {
		fmt.Printf("Error counting runs: %v\n", err)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "Table\tCount")
	fmt.Fprintln(w, "-----\t-----")
	fmt.Fprintf(w, "CollectionRuns\t%d\n", count)
	w.Flush()
}

func runRuns(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	store := openStore(ctx)
	defer store.Close()

	q := storage.RunQuery{
		ServerName: runsServer,
		Kind:       runsKind,
		Limit:      runsLimit,
		Desc:       true,
	}
	if runsFailed {
		failed := false
		q.Success = &failed
	}

	runs, err := store.QueryCollectionRuns(ctx, q)
	if err != nil {
		fmt.Printf("Error querying runs: %v\n", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "Finished\tServer\tKind\tStatus\tRecords\tError")
	fmt.Fprintln(w, "--------\t------\t----\t------\t-------\t-----")
	for _, run := range runs {
		status := "ok"
		if !run.Success {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			run.FinishedAt.Local().Format("2006-01-02 15:04:05"),
			run.ServerName, run.Kind, status, run.RecordsCollected, run.ErrorMessage)
	}
	w.Flush()
}

func runPrune(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	if keepRunCount <= 0 && keepRunDays <= 0 {
		fmt.Println("Error: must specify either --keep or --days")
		cmd.Usage()
		os.Exit(1)
	}

	store := openStore(ctx)
	defer store.Close()

	var deletedCount int64

	if keepRunCount > 0 {
		fmt.Printf("Pruning collection runs, keeping latest %d records...\n", keepRunCount)
		count, err := store.DeleteCollectionRunsKeepLatest(ctx, keepRunCount)
		if err != nil {
			fmt.Printf("Error pruning by count: %v\n", err)
			os.Exit(1)
		}
		deletedCount += count
	}

	if keepRunDays > 0 {
		before := time.Now().UTC().AddDate(0, 0, -keepRunDays)
		fmt.Printf("Pruning collection runs older than %d days (before %s)...\n", keepRunDays, before.Format(time.RFC3339))
		count, err := store.DeleteCollectionRunsBefore(ctx, before)
		if err != nil {
			fmt.Printf("Error pruning by days: %v\n", err)
			os.Exit(1)
		}
		deletedCount += count
	}

	fmt.Printf("Prune completed. Deleted %d records.\n", deletedCount)

	if count, err := store.CountCollectionRuns(ctx); err == nil {
		fmt.Printf("Remaining Collection Runs: %d\n", count)
	}
}
