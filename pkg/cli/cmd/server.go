package cmd

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LENAX/job-executor/pkg/cli/output"
	"github.com/LENAX/job-executor/pkg/config"
	"github.com/LENAX/job-executor/pkg/logger"
)

var (
	serverPort int
	configPath string
	serverHost string
)

// serverCmd server子命令
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "服务管理命令",
	Long:  `管理Job Executor HTTP API服务。`,
}

// serverStartCmd 启动服务
var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "启动HTTP API服务",
	Long: `启动Job Executor HTTP API服务，同时运行配置中的定时批次。

示例：
  # 使用默认配置启动
  job-executor server start

  # 指定端口启动
  job-executor server start --port 8080

  # 指定配置文件启动
  job-executor server start --config ./configs/job-executor.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			// 尝试默认配置路径
			for _, p := range []string{
				"./configs/job-executor.yaml",
				"./config/job-executor.yaml",
				"./job-executor.yaml",
			} {
				if _, err := os.Stat(p); err == nil {
					configPath = p
					break
				}
			}
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			output.Error("加载配置失败: %v", err)
			return err
		}
		if configPath != "" {
			output.Info("使用配置文件: %s", configPath)
		} else {
			output.Info("未找到配置文件，使用默认配置")
		}

		// 命令行参数优先于配置文件
		if cmd.Flags().Changed("host") {
			cfg.JobExecutor.Server.Host = serverHost
		}
		if cmd.Flags().Changed("port") {
			cfg.JobExecutor.Server.Port = serverPort
		}

		log, err := logger.New(cfg.GetLogLevel(), cfg.JobExecutor.General.LogFormat)
		if err != nil {
			return err
		}

		a, err := newApp(cfg, log)
		if err != nil {
			output.Error("初始化失败: %v", err)
			return err
		}

		ln, err := net.Listen("tcp", a.server.Addr())
		if err != nil {
			output.Error("监听 %s 失败: %v", a.server.Addr(), err)
			return fmt.Errorf("listen %s: %w", a.server.Addr(), err)
		}
		output.Success("Job Executor Server started on %s", ln.Addr())

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := a.run(ctx, ln); err != nil {
			output.Error("服务异常退出: %v", err)
			return err
		}
		output.Success("服务已停止")
		return nil
	},
}

func init() {
	serverStartCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "监听端口")
	serverStartCmd.Flags().StringVarP(&serverHost, "host", "H", "0.0.0.0", "监听地址")
	serverStartCmd.Flags().StringVarP(&configPath, "config", "c", "", "配置文件路径")

	serverCmd.AddCommand(serverStartCmd)
}
