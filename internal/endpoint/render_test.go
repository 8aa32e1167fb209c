package endpoint

import (
	"strings"
	"testing"
)

func TestSourceLabel(t *testing.T) {
	env := Source{Kind: SourceEnv, EnvVar: "AZURE_DEPLOYMENT"}
	if got := env.Label(); got != "from env AZURE_DEPLOYMENT" {
		t.Errorf("Label() = %q", got)
	}
	if got := (Source{Kind: SourceGuessed}).Label(); got != string(SourceGuessed) {
		t.Errorf("Label() = %q, want %q", got, SourceGuessed)
	}
}

func TestRender(t *testing.T) {
	res, err := Resolve(Config{BaseURL: "https://myco.openai.azure.com"})
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	res.Render(&sb)
	got := sb.String()

	for _, want := range []string{
		"provider:    azure",
		"strategy:    build_full_path",
		"deployment:  gpt-35-turbo (guessed)",
		"api-key: {key}",
		"problems:    none",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render output missing %q:\n%s", want, got)
		}
	}
}

func TestRenderProblems(t *testing.T) {
	res, err := Resolve(Config{BaseURL: "https://myco.openai.azure.com//openai/deployments/d1/chat/completions?api-version=2024-02-01"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Problems) == 0 {
		t.Fatal("expected a double-slash problem")
	}

	var sb strings.Builder
	res.Render(&sb)
	if !strings.Contains(sb.String(), "problems:\n  - ") {
		t.Errorf("Render output missing problems list:\n%s", sb.String())
	}
}
