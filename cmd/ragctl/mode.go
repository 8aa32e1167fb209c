package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hybridrag/ragctl/internal/credstore"
	"github.com/hybridrag/ragctl/internal/ragconfig"
)

func newModeCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "mode [online|offline|status]",
		Short: "Show or switch the application routing mode",
		Long: `Without an argument, mode prints the current routing mode from the
application config. Switching to online requires both an endpoint and an
API key in the credential store, so the application never comes up online
with nothing to call; --force skips that check.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ragconfig.Load(a.cfg.RAGConfigPath)
			if err != nil {
				return err
			}

			if len(args) == 0 || args[0] == "status" {
				fmt.Printf("mode: %s\n", f.Mode())
				return nil
			}

			target := args[0]
			if target == ragconfig.ModeOnline && !force {
				if err := checkOnlineCreds(a); err != nil {
					return err
				}
			}

			if err := f.SetMode(target); err != nil {
				return err
			}
			if err := f.Save(); err != nil {
				return err
			}
			fmt.Printf("mode set to: %s\n", target)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "switch to online without checking stored credentials")
	return cmd
}

// checkOnlineCreds verifies both secrets needed for online mode exist.
func checkOnlineCreds(a *app) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}

	var missing []string
	for _, account := range []string{credstore.AccountEndpoint, credstore.AccountAPIKey} {
		ok, err := store.HasSecret(credstore.ServiceName, account)
		if err != nil {
			return err
		}
		if !ok {
			missing = append(missing, account)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("cannot go online: missing %v; store them with 'ragctl creds' or use --force", missing)
	}
	return nil
}
