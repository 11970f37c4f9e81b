package cmd

import (
	"github.com/spf13/cobra"

	"github.com/LENAX/job-executor/pkg/cli/output"
)

// 版本信息（编译时注入）
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// versionCmd version命令
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	RunE: func(cmd *cobra.Command, args []string) error {
		if outputJSON {
			return output.PrintJSON(map[string]string{
				"version":    Version,
				"git_commit": GitCommit,
				"build_time": BuildTime,
			})
		}
		table := output.NewTable("COMPONENT", "VALUE")
		table.AddRow("Version", Version)
		table.AddRow("Git Commit", GitCommit)
		table.AddRow("Build Time", BuildTime)
		table.Render()
		return nil
	},
}
