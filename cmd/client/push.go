package main

import (
	"github.com/spf13/cobra"
	"github.com/watchdeck/watchdeck/internal/client/sync"
)

func init() {
	rootCmd.AddCommand(newPushCmd())
}

func newPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Upload every tracked file to the selected dashboards",
		Long: "Scans the watch directories for tracked extensions and uploads each file\n" +
			"once, without starting the watch daemon. Useful to seed a fresh dashboard\n" +
			"or to repair one after downtime.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			targets, gate, err := resolveTargets(cfg)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			uploader := sync.NewUploader(cfg, targets, gate)
			return sync.NewPusher(cfg, uploader).Run(cmd.Context())
		},
	}
}
