package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hybridrag/ragctl/internal/credstore"
	"github.com/hybridrag/ragctl/internal/endpoint"
)

func newCredsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "creds",
		Short: "Manage the encrypted credential store",
	}
	cmd.AddCommand(
		newCredsStoreKeyCmd(a),
		newCredsStoreEndpointCmd(a),
		newCredsStatusCmd(a),
		newCredsDeleteCmd(a),
	)
	return cmd
}

// readSecret reads a secret value: from the flag if given, otherwise from
// stdin. Prompting goes to stderr so output stays pipeable.
func readSecret(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprintf(os.Stderr, "%s: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("empty value")
	}
	return line, nil
}

func newCredsStoreKeyCmd(a *app) *cobra.Command {
	var value string
	cmd := &cobra.Command{
		Use:   "store-key",
		Short: "Store the API key, encrypted at rest",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := readSecret(value, "API key")
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.SetSecret(credstore.ServiceName, credstore.AccountAPIKey, key); err != nil {
				return err
			}
			fmt.Printf("stored API key %s\n", credstore.MaskSecret(key))
			return nil
		},
	}
	cmd.Flags().StringVar(&value, "value", "", "key value (if empty, read from stdin)")
	return cmd
}

func newCredsStoreEndpointCmd(a *app) *cobra.Command {
	var value string
	cmd := &cobra.Command{
		Use:   "store-endpoint",
		Short: "Store the endpoint URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := readSecret(value, "Endpoint URL")
			if err != nil {
				return err
			}

			// A dry-run resolution catches obviously broken URLs before
			// they are persisted.
			if _, err := endpoint.Resolve(endpoint.Config{BaseURL: url}); err != nil {
				return fmt.Errorf("not storing: %w", err)
			}
			provider := endpoint.ClassifyProvider(url)

			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.SetSecret(credstore.ServiceName, credstore.AccountEndpoint, url); err != nil {
				return err
			}
			fmt.Printf("stored endpoint (%s): %s\n", provider, url)
			return nil
		},
	}
	cmd.Flags().StringVar(&value, "value", "", "endpoint URL (if empty, read from stdin)")
	return cmd
}

func newCredsStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which secrets are stored, masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			for _, account := range []string{credstore.AccountEndpoint, credstore.AccountAPIKey} {
				value, err := store.GetSecret(credstore.ServiceName, account)
				switch {
				case errors.Is(err, credstore.ErrNotFound):
					fmt.Printf("  %-10s not stored\n", account)
				case err != nil:
					return err
				default:
					fmt.Printf("  %-10s %s\n", account, credstore.MaskSecret(value))
				}
			}
			return nil
		},
	}
}

func newCredsDeleteCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "delete [account]",
		Short: "Delete a stored secret (api_key or endpoint)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var accounts []string
			switch {
			case all:
				accounts = []string{credstore.AccountAPIKey, credstore.AccountEndpoint}
			case len(args) == 1:
				if args[0] != credstore.AccountAPIKey && args[0] != credstore.AccountEndpoint {
					return fmt.Errorf("unknown account %q; expected %q or %q",
						args[0], credstore.AccountAPIKey, credstore.AccountEndpoint)
				}
				accounts = []string{args[0]}
			default:
				return errors.New("specify an account or --all")
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			for _, account := range accounts {
				if err := store.DeleteSecret(credstore.ServiceName, account); err != nil {
					return err
				}
				fmt.Printf("deleted %s\n", account)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete every stored secret")
	return cmd
}
