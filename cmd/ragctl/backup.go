package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hybridrag/ragctl/internal/config"
	"github.com/hybridrag/ragctl/internal/maintenance"
)

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup [file]",
		Short: "Back up the application config (or any file) with retention",
		Long: `Backup copies the file into the ragctl backup directory with a timestamp
suffix, pruning old copies beyond the configured retention. Without an
argument it backs up the application config and the secrets database.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.EnsureDataDir(); err != nil {
				return err
			}

			if len(args) == 1 {
				dst, err := maintenance.BackupFile(args[0], config.BackupDir(), a.cfg.BackupKeep)
				if err != nil {
					return err
				}
				fmt.Printf("backed up %s -> %s\n", args[0], dst)
				return nil
			}

			sources := []string{a.cfg.RAGConfigPath, config.DBPath()}
			written, err := maintenance.BackupAll(sources, config.BackupDir(), a.cfg.BackupKeep)
			if err != nil {
				return err
			}
			if len(written) == 0 {
				return errors.New("nothing to back up: no config or database found")
			}
			for _, dst := range written {
				fmt.Printf("backed up -> %s\n", dst)
			}
			return nil
		},
	}
	cmd.AddCommand(newBackupListCmd(a))
	return cmd
}

func newBackupListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [file]",
		Short: "List backups for a file, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := a.cfg.RAGConfigPath
			if len(args) == 1 {
				src = args[0]
			}

			backups, err := maintenance.ListBackups(config.BackupDir(), filepath.Base(src))
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				fmt.Printf("no backups for %s\n", filepath.Base(src))
				return nil
			}
			for _, b := range backups {
				fmt.Println(b)
			}
			return nil
		},
	}
}
