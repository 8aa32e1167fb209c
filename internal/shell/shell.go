// Package shell is the interactive operator console. It wires the same
// operations as the one-shot CLI commands, keeping secret lookups and
// resolutions cached between commands and tracking external edits to the
// application config.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/fsnotify/fsnotify"

	"github.com/hybridrag/ragctl/internal/config"
	"github.com/hybridrag/ragctl/internal/credstore"
	"github.com/hybridrag/ragctl/internal/endpoint"
	"github.com/hybridrag/ragctl/internal/probe"
	"github.com/hybridrag/ragctl/internal/ragconfig"
)

// secretTTL bounds how long a cached secret lookup is trusted.
const secretTTL = 5 * time.Minute

// Shell is one interactive session.
type Shell struct {
	cfg    *config.Config
	store  credstore.Store
	client *probe.Client
	logger *slog.Logger

	cache *ristretto.Cache[string, any]

	in  io.Reader
	out io.Writer
}

// New creates a shell session reading commands from in and writing to out.
func New(cfg *config.Config, store credstore.Store, logger *slog.Logger, in io.Reader, out io.Writer) (*Shell, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	return &Shell{
		cfg:    cfg,
		store:  store,
		client: probe.NewClient(cfg.ProbeTimeout),
		logger: logger,
		cache:  cache,
		in:     in,
		out:    out,
	}, nil
}

// Run reads and dispatches commands until quit or EOF. A watcher on the
// application config invalidates the cached mode when the file is edited
// outside the shell.
func (s *Shell) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		defer watcher.Close()
		if err := watcher.Add(s.cfg.RAGConfigPath); err != nil {
			s.logger.Debug("config watch unavailable", "path", s.cfg.RAGConfigPath, "error", err)
		} else {
			go s.watchConfig(ctx, watcher)
		}
	}

	fmt.Fprintln(s.out, "ragctl interactive shell. Type 'help' for commands, 'quit' to exit.")

	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprintf(s.out, "ragctl[%s]> ", s.currentMode())
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		if cmd == "quit" || cmd == "exit" {
			return nil
		}
		s.dispatch(ctx, cmd, args)
	}
}

// watchConfig invalidates the cached mode whenever the config file changes.
func (s *Shell) watchConfig(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
				s.cache.Del("mode")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Debug("config watch error", "error", err)
		}
	}
}

func (s *Shell) dispatch(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "help":
		s.printHelp()
	case "resolve":
		s.cmdResolve(args)
	case "probe":
		s.cmdProbe(ctx, args)
	case "creds":
		s.cmdCreds(args)
	case "mode":
		s.cmdMode(args)
	case "features":
		s.cmdFeatures(args)
	default:
		fmt.Fprintf(s.out, "unknown command %q; type 'help'\n", cmd)
	}
}

func (s *Shell) printHelp() {
	fmt.Fprint(s.out, `commands:
  resolve [url]        show how an endpoint resolves (dry run, no network)
  probe [url]          live chat-completions probe; 'probe offline' probes Ollama
  creds status         show which secrets are stored
  mode [online|offline] show or switch the application mode
  features             list feature toggles with current state
  quit                 exit the shell
`)
}

// cachedSecret returns a secret through the TTL cache.
func (s *Shell) cachedSecret(account string) (string, error) {
	if v, ok := s.cache.Get("secret:" + account); ok {
		if secret, ok := v.(string); ok {
			return secret, nil
		}
	}
	v, err := s.store.GetSecret(credstore.ServiceName, account)
	if err != nil {
		return "", err
	}
	s.cache.SetWithTTL("secret:"+account, v, 1, secretTTL)
	s.cache.Wait()
	return v, nil
}

// currentMode reads the application mode through the cache; the config
// watcher drops the entry when the file changes.
func (s *Shell) currentMode() string {
	if v, ok := s.cache.Get("mode"); ok {
		if mode, ok := v.(string); ok {
			return mode
		}
	}
	mode := "?"
	if f, err := ragconfig.Load(s.cfg.RAGConfigPath); err == nil {
		mode = f.Mode()
	}
	s.cache.SetWithTTL("mode", mode, 1, secretTTL)
	s.cache.Wait()
	return mode
}

func (s *Shell) resolveEndpoint(args []string) (*endpoint.ResolvedRequest, error) {
	baseURL := ""
	if len(args) > 0 {
		baseURL = args[0]
	} else {
		stored, err := s.cachedSecret(credstore.AccountEndpoint)
		if err != nil {
			if errors.Is(err, credstore.ErrNotFound) {
				return nil, errors.New("no endpoint stored; run 'ragctl creds store-endpoint' or pass a URL")
			}
			return nil, err
		}
		baseURL = stored
	}

	if v, ok := s.cache.Get("resolve:" + baseURL); ok {
		if res, ok := v.(*endpoint.ResolvedRequest); ok {
			return res, nil
		}
	}

	env := endpoint.ProcessEnv(append(
		append([]string{}, endpoint.DeploymentEnvAliases...),
		endpoint.APIVersionEnvAliases...)...)

	res, err := endpoint.Resolve(endpoint.Config{BaseURL: baseURL, Env: env})
	if err != nil {
		return nil, err
	}
	s.cache.SetWithTTL("resolve:"+baseURL, res, 1, secretTTL)
	s.cache.Wait()
	return res, nil
}

func (s *Shell) cmdResolve(args []string) {
	res, err := s.resolveEndpoint(args)
	if err != nil {
		fmt.Fprintf(s.out, "resolve failed: %v\n", err)
		return
	}
	res.Render(s.out)
}

func (s *Shell) cmdProbe(ctx context.Context, args []string) {
	if len(args) > 0 && args[0] == "offline" {
		o := probe.NewOllama(s.cfg.OllamaBaseURL, s.cfg.OllamaModel, s.cfg.ProbeTimeout)
		if !o.Available(ctx) {
			fmt.Fprintf(s.out, "ollama not reachable at %s\n", s.cfg.OllamaBaseURL)
			return
		}
		result, err := o.Generate(ctx, "say hello")
		if err != nil {
			fmt.Fprintf(s.out, "probe failed: %s\n", probe.DiagnoseError(err))
			return
		}
		printProbeResult(s.out, result)
		return
	}

	res, err := s.resolveEndpoint(args)
	if err != nil {
		fmt.Fprintf(s.out, "probe failed: %v\n", err)
		return
	}
	if len(res.Problems) > 0 {
		fmt.Fprintln(s.out, "refusing to probe; resolution reported problems:")
		for _, p := range res.Problems {
			fmt.Fprintf(s.out, "  - %s\n", p.Description())
		}
		return
	}

	key, err := s.cachedSecret(credstore.AccountAPIKey)
	if err != nil {
		fmt.Fprintf(s.out, "probe failed: no API key stored (run 'ragctl creds store-key')\n")
		return
	}

	result, err := s.client.Chat(ctx, res, key, probe.Options{
		Model:       s.cfg.Model,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		fmt.Fprintf(s.out, "probe failed: %s\n", probe.DiagnoseError(err))
		return
	}
	printProbeResult(s.out, result)

	entry := &credstore.ProbeLog{
		URL:              res.FinalURL,
		Provider:         string(res.Provider),
		Strategy:         string(res.Strategy),
		StatusCode:       result.StatusCode,
		PromptTokens:     result.Usage.PromptTokens,
		CompletionTokens: result.Usage.CompletionTokens,
		Duration:         result.Latency,
	}
	if err := s.store.LogProbe(entry); err != nil {
		s.logger.Warn("failed to record probe", "error", err)
	}
}

func (s *Shell) cmdCreds(args []string) {
	if len(args) == 0 || args[0] != "status" {
		fmt.Fprintln(s.out, "usage: creds status (store/delete via 'ragctl creds')")
		return
	}

	for _, account := range []string{credstore.AccountEndpoint, credstore.AccountAPIKey} {
		value, err := s.cachedSecret(account)
		switch {
		case errors.Is(err, credstore.ErrNotFound):
			fmt.Fprintf(s.out, "  %-10s not stored\n", account)
		case err != nil:
			fmt.Fprintf(s.out, "  %-10s error: %v\n", account, err)
		default:
			fmt.Fprintf(s.out, "  %-10s %s\n", account, credstore.MaskSecret(value))
		}
	}
}

func (s *Shell) cmdMode(args []string) {
	f, err := ragconfig.Load(s.cfg.RAGConfigPath)
	if err != nil {
		fmt.Fprintf(s.out, "cannot load %s: %v\n", s.cfg.RAGConfigPath, err)
		return
	}

	if len(args) == 0 {
		fmt.Fprintf(s.out, "mode: %s\n", f.Mode())
		return
	}

	if err := f.SetMode(args[0]); err != nil {
		fmt.Fprintf(s.out, "%v\n", err)
		return
	}
	if err := f.Save(); err != nil {
		fmt.Fprintf(s.out, "save failed: %v\n", err)
		return
	}
	s.cache.Del("mode")
	fmt.Fprintf(s.out, "mode set to: %s\n", args[0])
}

func (s *Shell) cmdFeatures(args []string) {
	f, err := ragconfig.Load(s.cfg.RAGConfigPath)
	if err != nil {
		fmt.Fprintf(s.out, "cannot load %s: %v\n", s.cfg.RAGConfigPath, err)
		return
	}

	category := ""
	for _, state := range f.Features() {
		if state.Category != category {
			category = state.Category
			fmt.Fprintf(s.out, "%s:\n", category)
		}
		mark := "off"
		if state.Enabled {
			mark = "ON"
		}
		fmt.Fprintf(s.out, "  [%-3s] %-22s %s\n", mark, state.ID, state.DisplayName)
	}
}

// printProbeResult renders a probe outcome.
func printProbeResult(out io.Writer, result *probe.Result) {
	fmt.Fprintf(out, "status:  %d (%.2fs)\n", result.StatusCode, result.Latency.Seconds())
	if result.OK() && result.Diagnosis == "" {
		fmt.Fprintf(out, "answer:  %s\n", strings.TrimSpace(result.Text))
		fmt.Fprintf(out, "tokens:  %d in / %d out\n", result.Usage.PromptTokens, result.Usage.CompletionTokens)
		return
	}
	if result.Diagnosis != "" {
		fmt.Fprintf(out, "hint:    %s\n", result.Diagnosis)
	}
	if result.RawBody != "" {
		fmt.Fprintf(out, "body:    %s\n", result.RawBody)
	}
}
