package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/taskvault/pkg/app"
	"github.com/yeisme/taskvault/pkg/configs"
	"github.com/yeisme/taskvault/pkg/internal/storage"
	"github.com/yeisme/taskvault/pkg/log"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "run one expiry sweep and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configs.InitConfig(configPath); err != nil {
			return err
		}
		log.Init()

		mgr, err := storage.Init(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = mgr.Close() }()

		v, err := app.BuildVault(configs.GetConfig(), mgr)
		if err != nil {
			return err
		}

		report, err := v.SweepExpired(cmd.Context())
		if err != nil {
			return err
		}

		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))

		return nil
	},
}

// registerSweepCommands 注册清扫命令.
func registerSweepCommands() {
	rootCmd.AddCommand(sweepCmd)
}
