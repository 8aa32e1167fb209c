package main

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/hybridrag/ragctl/internal/config"
	"github.com/hybridrag/ragctl/internal/endpoint"
)

func testApp(t *testing.T) *app {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, name := range append(
		append([]string{}, endpoint.DeploymentEnvAliases...),
		endpoint.APIVersionEnvAliases...) {
		t.Setenv(name, "")
	}
	return &app{
		cfg: &config.Config{
			ProbeTimeout: 5 * time.Second,
			BackupKeep:   5,
		},
		logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()

	want := []string{"resolve", "probe", "creds", "mode", "features", "fix-text", "backup", "logs", "shell"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestResolveEndpointExplicitURL(t *testing.T) {
	a := testApp(t)

	res, err := resolveEndpoint(a, []string{"https://myco.openai.azure.com"}, "", "")
	if err != nil {
		t.Fatalf("resolveEndpoint failed: %v", err)
	}
	if res.Provider != endpoint.ProviderAzure {
		t.Errorf("Provider = %q, want azure", res.Provider)
	}
	want := "https://myco.openai.azure.com/openai/deployments/gpt-35-turbo/chat/completions?api-version=2024-02-01"
	if res.FinalURL != want {
		t.Errorf("FinalURL = %q, want %q", res.FinalURL, want)
	}
}

func TestResolveEndpointOverrides(t *testing.T) {
	a := testApp(t)

	res, err := resolveEndpoint(a, []string{"https://myco.openai.azure.com"}, "my-gpt4", "2024-06-01")
	if err != nil {
		t.Fatalf("resolveEndpoint failed: %v", err)
	}
	if res.DeploymentName != "my-gpt4" {
		t.Errorf("DeploymentName = %q, want my-gpt4", res.DeploymentName)
	}
	if res.APIVersion != "2024-06-01" {
		t.Errorf("APIVersion = %q, want 2024-06-01", res.APIVersion)
	}
}

func TestResolveEndpointReportsProblems(t *testing.T) {
	a := testApp(t)

	res, err := resolveEndpoint(a, []string{"https://myco.openai.azure.com//openai/deployments/d1/chat/completions?api-version=2024-02-01"}, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Problems) == 0 {
		t.Fatal("expected a double-slash problem")
	}

	var buf bytes.Buffer
	res.Render(&buf)
	if !bytes.Contains(buf.Bytes(), []byte("problems:")) {
		t.Errorf("Render output missing problems section:\n%s", buf.String())
	}
}
