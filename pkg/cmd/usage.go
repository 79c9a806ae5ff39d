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

var (
	usageOwner  string
	usageGlobal bool

	usageCmd = &cobra.Command{
		Use:   "usage",
		Short: "print storage usage for an owner or globally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !usageGlobal && usageOwner == "" {
				return fmt.Errorf("either --owner or --global is required")
			}

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

			var out any
			if usageGlobal {
				out, err = v.GlobalUsage(cmd.Context())
			} else {
				out, err = v.Usage(cmd.Context(), usageOwner)
			}
			if err != nil {
				return err
			}

			b, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}
)

// registerUsageCommands 注册用量查询命令.
func registerUsageCommands() {
	usageCmd.Flags().StringVar(&usageOwner, "owner", "", "owner identity to report")
	usageCmd.Flags().BoolVar(&usageGlobal, "global", false, "report global usage across owners")

	rootCmd.AddCommand(usageCmd)
}
