package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newFetchCmd())
}

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <remote-path>",
		Short: "Print a stored file's content to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			targets, gate, err := resolveTargets(cfg)
			if err != nil {
				return err
			}
			if len(targets) != 1 {
				return fmt.Errorf("fetch needs a single target, use --target local or --target server")
			}
			cmd.SilenceUsage = true

			target := targets[0]
			remotePath := strings.Trim(args[0], "/")
			auth := gate.ForPath(cmd.Context(), target.URL, remotePath)

			data, err := target.Client.GetContent(cmd.Context(), remotePath, auth)
			if err != nil {
				return err
			}

			_, err = os.Stdout.Write(data)
			return err
		},
	}
}
