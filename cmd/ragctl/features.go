package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hybridrag/ragctl/internal/ragconfig"
)

func newFeaturesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Inspect and toggle application feature flags",
	}
	cmd.AddCommand(
		newFeaturesListCmd(a),
		newFeaturesStatusCmd(a),
		newFeaturesEnableCmd(a),
		newFeaturesDisableCmd(a),
	)
	return cmd
}

func newFeaturesListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every known feature with its current state",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ragconfig.Load(a.cfg.RAGConfigPath)
			if err != nil {
				return err
			}

			category := ""
			for _, state := range f.Features() {
				if state.Category != category {
					category = state.Category
					fmt.Printf("%s:\n", category)
				}
				mark := "off"
				if state.Enabled {
					mark = "ON"
				}
				fmt.Printf("  [%-3s] %-22s %s\n", mark, state.ID, state.DisplayName)
			}
			return nil
		},
	}
}

func newFeaturesStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <feature>",
		Short: "Show one feature in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, ok := ragconfig.FindFeature(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", ragconfig.ErrUnknownFeature, args[0])
			}
			f, err := ragconfig.Load(a.cfg.RAGConfigPath)
			if err != nil {
				return err
			}

			state := "disabled"
			if f.FeatureEnabled(def) {
				state = "enabled"
			}
			fmt.Printf("%s (%s)\n", def.DisplayName, def.ID)
			fmt.Printf("  state:    %s\n", state)
			fmt.Printf("  category: %s\n", def.Category)
			fmt.Printf("  config:   %s.%s\n", def.ConfigSection, def.ConfigKey)
			fmt.Printf("  %s\n", def.Description)
			if def.ImpactNote != "" {
				fmt.Printf("  note: %s\n", def.ImpactNote)
			}
			if len(def.Requires) > 0 {
				fmt.Printf("  requires: %v\n", def.Requires)
			}
			return nil
		},
	}
}

func newFeaturesEnableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "enable <feature>",
		Short: "Enable a feature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toggleFeature(a, args[0], true)
		},
	}
}

func newFeaturesDisableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "disable <feature>",
		Short: "Disable a feature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return toggleFeature(a, args[0], false)
		},
	}
}

func toggleFeature(a *app, id string, enable bool) error {
	f, err := ragconfig.Load(a.cfg.RAGConfigPath)
	if err != nil {
		return err
	}

	if enable {
		err = f.EnableFeature(id)
	} else {
		err = f.DisableFeature(id)
	}
	if err != nil {
		return err
	}
	if err := f.Save(); err != nil {
		return err
	}

	verb := "disabled"
	if enable {
		verb = "enabled"
	}
	fmt.Printf("%s %s\n", verb, id)
	return nil
}
