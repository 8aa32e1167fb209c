package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hybridrag/ragctl/internal/credstore"
	"github.com/hybridrag/ragctl/internal/probe"
	"github.com/hybridrag/ragctl/internal/tokenizer"
	"github.com/hybridrag/ragctl/internal/types"
)

func newProbeCmd(a *app) *cobra.Command {
	var (
		offline    bool
		prompt     string
		model      string
		maxTokens  int
		deployment string
		apiVersion string
	)
	cmd := &cobra.Command{
		Use:   "probe [url]",
		Short: "Send one live chat-completions request and report what happened",
		Long: `Probe resolves the endpoint, sends a single small chat request with the
stored API key, and reports status, latency, token usage and a diagnosis
hint for common failures. With --offline it probes the local Ollama
server instead. Every probe is recorded in the local history (see
'ragctl logs').`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if offline {
				return runOfflineProbe(a, cmd, prompt)
			}

			res, err := resolveEndpoint(a, args, deployment, apiVersion)
			if err != nil {
				return err
			}
			if len(res.Problems) > 0 {
				res.Render(os.Stdout)
				return errors.New("refusing to probe an endpoint with unresolved problems")
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			key, err := store.GetSecret(credstore.ServiceName, credstore.AccountAPIKey)
			if errors.Is(err, credstore.ErrNotFound) {
				return errors.New("no API key stored; run 'ragctl creds store-key'")
			}
			if err != nil {
				return err
			}

			if prompt == "" {
				prompt = "say hello"
			}
			if model == "" {
				model = a.cfg.Model
			}

			countModel := model
			if res.DeploymentName != "" {
				countModel = res.DeploymentName
			}
			if n, err := tokenizer.New().CountMessages([]types.Message{
				{Role: types.RoleUser, Content: prompt},
			}, countModel); err == nil {
				fmt.Printf("sending:  %d prompt token(s) to %s\n", n, res.FinalURL)
			} else {
				fmt.Printf("sending:  probe to %s\n", res.FinalURL)
			}

			client := probe.NewClient(a.cfg.ProbeTimeout)
			result, err := client.Chat(cmd.Context(), res, key, probe.Options{
				Prompt:      prompt,
				Model:       model,
				MaxTokens:   maxTokens,
				Temperature: a.cfg.Temperature,
			})
			if err != nil {
				logProbe(a, res.FinalURL, string(res.Provider), string(res.Strategy), nil, err)
				return fmt.Errorf("%s", probe.DiagnoseError(err))
			}

			printProbeResult(result)
			logProbe(a, res.FinalURL, string(res.Provider), string(res.Strategy), result, nil)
			if !result.OK() {
				return fmt.Errorf("probe returned HTTP %d", result.StatusCode)
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.BoolVar(&offline, "offline", false, "probe the local Ollama server instead of the remote endpoint")
	fs.StringVar(&prompt, "prompt", "", "probe prompt (default \"say hello\")")
	fs.StringVar(&model, "model", "", "model name for OpenAI-compatible endpoints")
	fs.IntVar(&maxTokens, "max-tokens", 0, "completion token cap for the probe")
	fs.StringVar(&deployment, "deployment", "", "override the deployment name")
	fs.StringVar(&apiVersion, "api-version", "", "override the Azure api-version")
	return cmd
}

func runOfflineProbe(a *app, cmd *cobra.Command, prompt string) error {
	o := probe.NewOllama(a.cfg.OllamaBaseURL, a.cfg.OllamaModel, a.cfg.ProbeTimeout)
	if !o.Available(cmd.Context()) {
		return fmt.Errorf("ollama not reachable at %s; is it running?", a.cfg.OllamaBaseURL)
	}
	fmt.Printf("ollama reachable at %s (model %s)\n", a.cfg.OllamaBaseURL, a.cfg.OllamaModel)

	if prompt == "" {
		prompt = "say hello"
	}
	result, err := o.Generate(cmd.Context(), prompt)
	if err != nil {
		logProbe(a, a.cfg.OllamaBaseURL, "ollama", "local_generate", nil, err)
		return fmt.Errorf("%s", probe.DiagnoseError(err))
	}

	printProbeResult(result)
	logProbe(a, a.cfg.OllamaBaseURL, "ollama", "local_generate", result, nil)
	return nil
}

func printProbeResult(result *probe.Result) {
	fmt.Printf("status:   %d (%.2fs)\n", result.StatusCode, result.Latency.Seconds())
	if result.OK() {
		fmt.Printf("answer:   %s\n", strings.TrimSpace(result.Text))
		fmt.Printf("tokens:   %d in / %d out\n", result.Usage.PromptTokens, result.Usage.CompletionTokens)
		return
	}
	if result.Diagnosis != "" {
		fmt.Printf("hint:     %s\n", result.Diagnosis)
	}
	if result.RawBody != "" {
		fmt.Printf("body:     %s\n", result.RawBody)
	}
}

// logProbe records the outcome in the local history. Recording failures
// are logged but never fail the probe itself.
func logProbe(a *app, url, provider, strategy string, result *probe.Result, probeErr error) {
	store, err := a.openStore()
	if err != nil {
		a.logger.Warn("failed to open store for probe history", "error", err)
		return
	}

	entry := &credstore.ProbeLog{
		URL:      url,
		Provider: provider,
		Strategy: strategy,
	}
	if result != nil {
		entry.StatusCode = result.StatusCode
		entry.PromptTokens = result.Usage.PromptTokens
		entry.CompletionTokens = result.Usage.CompletionTokens
		entry.Duration = result.Latency
	}
	if probeErr != nil {
		entry.ErrorMessage = probeErr.Error()
	}
	if err := store.LogProbe(entry); err != nil {
		a.logger.Warn("failed to record probe", "error", err)
	}
}
