// Package cmd contains the command line applications for the project.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// configPath 配置文件所在目录, 空表示使用默认搜索路径.
	configPath string

	rootCmd = &cobra.Command{
		Use:   "taskvault",
		Short: "Content addressed file vault for project management apps",
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file directory")

	registerServeCommands()
	registerSweepCommands()
	registerUsageCommands()
	registerDBCommands()
	registerKVCommands()
	registerMQCommands()
	registerConfigsCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
