package cli

import (
	"fmt"
	"os"

	"github.com/wwwzy/aixcollect/internal/config"
	"github.com/wwwzy/aixcollect/internal/logging"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd 是没有子命令时调用的基础命令
var rootCmd = &cobra.Command{
	Use:   "aixcollect",
	Short: "aixcollect 是一个 AIX 机群日志采集代理",
	Long: `aixcollect 通过 SSH 从一组 AIX 服务器拉取 errpt 错误报告与系统日志，
解析、分类后写入 InfluxDB，并在本地保留采集运行历史。`,
}

// Execute 将所有子命令添加到根命令并适当设置标志。
// 这由 main.main() 调用。它只需要对 rootCmd 调用一次。
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件（默认按 ./config.yaml、$HOME/.aixcollect/config.yaml、/etc/aixcollect/config.yaml 搜索）")
}

// initConfig 读取配置文件和环境变量，并初始化全局日志。
func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.Logging)
}
