package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/watchdeck/watchdeck/internal/client/config"
	"github.com/watchdeck/watchdeck/internal/client/sync"
)

func init() {
	rootCmd.AddCommand(newStatusCmd())
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Probe the selected dashboards and show their collection stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			targets, _, err := resolveTargets(cfg)
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			for _, target := range targets {
				printTargetStatus(cmd.Context(), cfg, target)
			}
			return nil
		},
	}
}

func printTargetStatus(ctx context.Context, cfg *config.Config, target *sync.Target) {
	probeCtx, cancel := context.WithTimeout(ctx, cfg.HealthTimeout)
	health, err := target.Client.Health(probeCtx)
	cancel()

	if err != nil {
		fmt.Printf("%s %s\n", red.Render("DOWN"), target.URL)
		fmt.Printf("     %s\n", gray.Render(err.Error()))
		return
	}
	fmt.Printf("%s %s %s\n", green.Render("UP  "), target.URL, gray.Render(health.Timestamp))

	resp, err := target.Client.ListCollections(ctx)
	if err != nil {
		fmt.Printf("     %s\n", gray.Render("collections unavailable: "+err.Error()))
		return
	}
	if len(resp.Collections) == 0 {
		fmt.Printf("     %s\n", gray.Render("no uploads recorded"))
		return
	}
	for _, c := range resp.Collections {
		fmt.Printf("     %-24s %4d files  %10s  %s\n",
			c.Collection, c.Files, humanize.Bytes(uint64(c.TotalSize)), gray.Render(c.LastUpload))
	}
}
