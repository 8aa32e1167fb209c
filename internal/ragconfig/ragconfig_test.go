package ragconfig

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleConfig = `mode: offline
ollama:
  base_url: http://localhost:11434
  model: llama3
api:
  endpoint: https://api.openai.com
  max_tokens: 500
hallucination_guard:
  enabled: true
retrieval:
  hybrid_search: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "default_config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAndMode(t *testing.T) {
	f, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Mode() != ModeOffline {
		t.Errorf("mode = %q, want offline", f.Mode())
	}
}

func TestSetModeRoundTrip(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := f.SetMode(ModeOnline); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if err := f.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Mode() != ModeOnline {
		t.Errorf("mode after save = %q, want online", reloaded.Mode())
	}
}

func TestSetModeRejectsUnknown(t *testing.T) {
	f, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := f.SetMode("turbo"); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("error = %v, want ErrUnknownMode", err)
	}
}

func TestSavePreservesUnknownKeys(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := f.SetMode(ModeOnline); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if err := f.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	for _, key := range []string{"ollama", "base_url", "max_tokens", "hybrid_search"} {
		if !strings.Contains(string(raw), key) {
			t.Errorf("saved config lost key %q", key)
		}
	}
}

func TestModeDefaultsOffline(t *testing.T) {
	f, err := Load(writeConfig(t, "api:\n  endpoint: https://x\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Mode() != ModeOffline {
		t.Errorf("mode = %q, want offline default", f.Mode())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFeatureStates(t *testing.T) {
	f, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	states := f.Features()
	if len(states) != len(Catalog) {
		t.Fatalf("states = %d, want %d", len(states), len(Catalog))
	}

	byID := map[string]bool{}
	for _, s := range states {
		byID[s.ID] = s.Enabled
	}
	if !byID["hallucination-filter"] {
		t.Error("hallucination-filter should read as enabled from config")
	}
	if byID["cost-tracker"] {
		t.Error("cost-tracker should default off")
	}
	if !byID["audit-log"] {
		t.Error("audit-log should fall back to its catalog default (on)")
	}
}

func TestEnableDisableFeature(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := f.EnableFeature("cost-tracker"); err != nil {
		t.Fatalf("EnableFeature: %v", err)
	}
	if err := f.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	def, _ := FindFeature("cost-tracker")
	if !reloaded.FeatureEnabled(def) {
		t.Error("cost-tracker not enabled after save")
	}

	if err := reloaded.DisableFeature("cost-tracker"); err != nil {
		t.Fatalf("DisableFeature: %v", err)
	}
	if reloaded.FeatureEnabled(def) {
		t.Error("cost-tracker still enabled after disable")
	}
}

func TestEnableFeatureRequirements(t *testing.T) {
	// Config without hybrid_search: reranker must refuse.
	f, err := Load(writeConfig(t, "mode: offline\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := f.EnableFeature("reranker"); err == nil {
		t.Error("expected requirement error for reranker without hybrid-search")
	}

	if err := f.EnableFeature("hybrid-search"); err != nil {
		t.Fatalf("EnableFeature hybrid-search: %v", err)
	}
	if err := f.EnableFeature("reranker"); err != nil {
		t.Errorf("EnableFeature reranker after requirement met: %v", err)
	}
}

func TestUnknownFeature(t *testing.T) {
	f, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := f.EnableFeature("warp-drive"); !errors.Is(err, ErrUnknownFeature) {
		t.Errorf("error = %v, want ErrUnknownFeature", err)
	}
	if err := f.DisableFeature("warp-drive"); !errors.Is(err, ErrUnknownFeature) {
		t.Errorf("error = %v, want ErrUnknownFeature", err)
	}
}
