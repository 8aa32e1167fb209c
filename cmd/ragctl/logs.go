package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hybridrag/ragctl/internal/credstore"
)

func newLogsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Inspect the local probe history",
	}
	cmd.AddCommand(
		newLogsListCmd(a),
		newLogsPruneCmd(a),
	)
	return cmd
}

func newLogsListCmd(a *app) *cobra.Command {
	var (
		limit    int
		provider string
		status   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded probes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}

			entries, err := store.ListProbes(credstore.ProbeFilter{
				Provider:   provider,
				StatusCode: status,
				Limit:      limit,
			})
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no probes recorded")
				return nil
			}

			for _, e := range entries {
				outcome := fmt.Sprintf("HTTP %d", e.StatusCode)
				if e.ErrorMessage != "" {
					outcome = "error: " + e.ErrorMessage
				}
				fmt.Printf("%s  %-19s %-8s %-6dtok  %.2fs  %s  %s\n",
					e.ID,
					e.CreatedAt.Format("2006-01-02 15:04:05"),
					e.Provider,
					e.PromptTokens+e.CompletionTokens,
					e.Duration.Seconds(),
					outcome,
					e.URL,
				)
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&limit, "limit", 20, "maximum entries to show")
	fs.StringVar(&provider, "provider", "", "only show probes against this provider")
	fs.IntVar(&status, "status", 0, "only show probes with this HTTP status")
	return cmd
}

func newLogsPruneCmd(a *app) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete probe history older than a cutoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}

			n, err := store.PruneProbes(time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Printf("pruned %d probe(s) older than %s\n", n, olderThan)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age cutoff, e.g. 720h")
	return cmd
}
