package main

import (
	"github.com/spf13/cobra"
	"github.com/watchdeck/watchdeck/internal/client/sync"
)

func init() {
	rootCmd.AddCommand(newReconcileCmd())
}

func newReconcileCmd() *cobra.Command {
	var dryRun bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Delete dashboard files that no longer exist locally",
		Long: "Compares the tracked local files against each selected dashboard's file\n" +
			"tree and deletes the remote leftovers. Candidates are listed and confirmed\n" +
			"before anything is removed; already-missing files count as deleted.",
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

			rec := sync.NewReconciler(cfg, targets, gate)
			return rec.Run(cmd.Context(), &sync.ReconcileOptions{
				DryRun: dryRun,
				Yes:    yes,
			})
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "list deletion candidates without deleting anything")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
