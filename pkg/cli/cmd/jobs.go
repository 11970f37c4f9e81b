package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/LENAX/job-executor/pkg/cli/client"
	"github.com/LENAX/job-executor/pkg/cli/output"
)

var executeWait bool

// jobsCmd jobs子命令
var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Job管理命令",
	Long:  `通过HTTP API管理远端执行器中的Job，包括查看状态、启动、终止和等待。`,
}

// jobsStatusCmd 查看执行器状态
var jobsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "查看执行器状态",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := client.New(serverURL).Status(cmd.Context())
		if err != nil {
			output.Error("查询失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(status)
		}

		table := output.NewTable("SIZE", "STARTED", "SUCCEEDED", "FAILED", "CANCELLED")
		table.AddRow(status.Size, status.Stats.Started, status.Stats.Succeeded, status.Stats.Failed, status.Stats.Cancelled)
		table.Render()

		if len(status.Schedules) > 0 {
			output.Info("定时调度项")
			schedules := output.NewTable("SCHEDULE", "SPEC", "COUNT", "NEXT")
			for _, s := range status.Schedules {
				next := "-"
				if !s.Next.IsZero() {
					next = s.Next.Format("2006-01-02 15:04:05")
				}
				schedules.AddRow(s.Name, s.Spec, s.Count, next)
			}
			schedules.Render()
		}
		return nil
	},
}

// jobsExecuteCmd 启动一批Job
var jobsExecuteCmd = &cobra.Command{
	Use:   "execute <count>",
	Short: "启动一批Job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("count必须是整数: %w", err)
		}

		result, err := client.New(serverURL).Execute(cmd.Context(), count, executeWait)
		if err != nil {
			output.Error("启动失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(result)
		}
		if result.Completed {
			output.Success("批次 %s 已完成: %d 个Job", result.BatchID, result.Count)
		} else {
			output.Success("批次 %s 已启动: %d 个Job，当前共 %d 个", result.BatchID, result.Count, result.Size)
		}
		return nil
	},
}

// jobsTerminateCmd 终止Job
var jobsTerminateCmd = &cobra.Command{
	Use:   "terminate [count]",
	Short: "终止Job，不指定count时终止全部",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var count *int
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("count必须是整数: %w", err)
			}
			count = &n
		}

		result, err := client.New(serverURL).Terminate(cmd.Context(), count)
		if err != nil {
			output.Error("终止失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(result)
		}
		if result.Terminated == 0 {
			output.Warning("没有可终止的Job")
			return nil
		}
		output.Success("已终止 %d 个Job，剩余 %d 个", result.Terminated, result.Size)
		return nil
	},
}

// jobsWaitCmd 等待全部Job结束
var jobsWaitCmd = &cobra.Command{
	Use:   "wait",
	Short: "等待全部Job结束",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := client.New(serverURL).Wait(cmd.Context())
		if err != nil {
			output.Error("等待失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(result)
		}
		output.Success("全部Job已结束，耗时 %s", result.Elapsed)
		return nil
	},
}

func init() {
	jobsExecuteCmd.Flags().BoolVarP(&executeWait, "wait", "w", false, "等待本批次完成")

	jobsCmd.AddCommand(jobsStatusCmd)
	jobsCmd.AddCommand(jobsExecuteCmd)
	jobsCmd.AddCommand(jobsTerminateCmd)
	jobsCmd.AddCommand(jobsWaitCmd)
}
