package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hybridrag/ragctl/internal/credstore"
	"github.com/hybridrag/ragctl/internal/endpoint"
)

// resolveBaseURL picks the endpoint to resolve: the positional argument if
// given, otherwise the stored endpoint secret.
func resolveBaseURL(a *app, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	store, err := a.openStore()
	if err != nil {
		return "", err
	}
	url, err := store.GetSecret(credstore.ServiceName, credstore.AccountEndpoint)
	if errors.Is(err, credstore.ErrNotFound) {
		return "", errors.New("no endpoint given and none stored; pass a URL or run 'ragctl creds store-endpoint'")
	}
	if err != nil {
		return "", err
	}
	return url, nil
}

func resolveEndpoint(a *app, args []string, deployment, apiVersion string) (*endpoint.ResolvedRequest, error) {
	baseURL, err := resolveBaseURL(a, args)
	if err != nil {
		return nil, err
	}

	env := endpoint.ProcessEnv(append(
		append([]string{}, endpoint.DeploymentEnvAliases...),
		endpoint.APIVersionEnvAliases...)...)

	return endpoint.Resolve(endpoint.Config{
		BaseURL:            baseURL,
		DeploymentOverride: deployment,
		APIVersionOverride: apiVersion,
		Env:                env,
	})
}

func newResolveCmd(a *app) *cobra.Command {
	var (
		deployment string
		apiVersion string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "resolve [url]",
		Short: "Show how an endpoint URL resolves, without sending anything",
		Long: `Resolve classifies the endpoint as Azure OpenAI or OpenAI-compatible,
builds the final chat-completions URL and auth header shape, and reports
any problems it sees. Nothing is sent over the network and no secret is
included in the output.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := resolveEndpoint(a, args, deployment, apiVersion)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			res.Render(os.Stdout)
			if len(res.Problems) > 0 {
				return fmt.Errorf("%d problem(s) detected", len(res.Problems))
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&deployment, "deployment", "", "override the deployment name")
	fs.StringVar(&apiVersion, "api-version", "", "override the Azure api-version")
	fs.BoolVar(&asJSON, "json", false, "emit the resolution as JSON")
	return cmd
}
