package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hybridrag/ragctl/internal/shell"
)

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Open an interactive session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			sh, err := shell.New(a.cfg, store, a.logger, os.Stdin, os.Stdout)
			if err != nil {
				return err
			}
			return sh.Run(cmd.Context())
		},
	}
}
