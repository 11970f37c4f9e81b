package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// 全局变量
	serverURL  string
	outputJSON bool
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "job-executor",
	Short: "Job Executor CLI - 并发Job执行器命令行工具",
	Long: `Job Executor CLI 用于批量启动、终止和等待相互独立的异步Job。

支持的功能：
  - 在本进程内运行一批演示Job（run）
  - 启动HTTP API服务（server start）
  - 通过HTTP API管理远端执行器（jobs）

使用示例：
  # 本地运行10个Job，1秒后终止其中3个
  job-executor run --count 10 --terminate 3 --terminate-after 1s

  # 启动HTTP服务
  job-executor server start --config ./configs/job-executor.yaml

  # 向服务提交5个Job并等待完成
  job-executor jobs execute 5 --wait`,
	SilenceUsage: true,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "Job Executor服务器地址")
	rootCmd.PersistentFlags().BoolVarP(&outputJSON, "json", "j", false, "使用JSON格式输出")

	// 添加子命令
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(versionCmd)
}
