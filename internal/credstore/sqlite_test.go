package credstore

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

var testKey = bytes.Repeat([]byte{0x42}, 32)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenWithKey(filepath.Join(t.TempDir(), "ragctl.db"), testKey)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSecretRoundTrip(t *testing.T) {
	store := newTestStore(t)

	if err := store.SetSecret(ServiceName, AccountAPIKey, "sk-test-12345"); err != nil {
		t.Fatalf("SetSecret: %v", err)
	}

	got, err := store.GetSecret(ServiceName, AccountAPIKey)
	if err != nil {
		t.Fatalf("GetSecret: %v", err)
	}
	if got != "sk-test-12345" {
		t.Errorf("got %q, want sk-test-12345", got)
	}
}

func TestSecretOverwrite(t *testing.T) {
	store := newTestStore(t)

	if err := store.SetSecret(ServiceName, AccountEndpoint, "https://old.example.com"); err != nil {
		t.Fatalf("SetSecret: %v", err)
	}
	if err := store.SetSecret(ServiceName, AccountEndpoint, "https://new.example.com"); err != nil {
		t.Fatalf("SetSecret overwrite: %v", err)
	}

	got, err := store.GetSecret(ServiceName, AccountEndpoint)
	if err != nil {
		t.Fatalf("GetSecret: %v", err)
	}
	if got != "https://new.example.com" {
		t.Errorf("got %q, want the overwritten value", got)
	}
}

func TestSecretNotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.GetSecret(ServiceName, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSecretInvalidInput(t *testing.T) {
	store := newTestStore(t)

	if err := store.SetSecret("", AccountAPIKey, "v"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty service: error = %v, want ErrInvalidInput", err)
	}
	if err := store.SetSecret(ServiceName, AccountAPIKey, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty value: error = %v, want ErrInvalidInput", err)
	}
}

func TestDeleteSecret(t *testing.T) {
	store := newTestStore(t)

	if err := store.SetSecret(ServiceName, AccountAPIKey, "sk-test"); err != nil {
		t.Fatalf("SetSecret: %v", err)
	}
	if err := store.DeleteSecret(ServiceName, AccountAPIKey); err != nil {
		t.Fatalf("DeleteSecret: %v", err)
	}
	if _, err := store.GetSecret(ServiceName, AccountAPIKey); !errors.Is(err, ErrNotFound) {
		t.Errorf("error after delete = %v, want ErrNotFound", err)
	}

	// Deleting again is not an error
	if err := store.DeleteSecret(ServiceName, AccountAPIKey); err != nil {
		t.Errorf("repeat delete: %v", err)
	}
}

func TestHasSecret(t *testing.T) {
	store := newTestStore(t)

	ok, err := store.HasSecret(ServiceName, AccountAPIKey)
	if err != nil || ok {
		t.Errorf("HasSecret before store = %v, %v; want false, nil", ok, err)
	}

	if err := store.SetSecret(ServiceName, AccountAPIKey, "sk-test"); err != nil {
		t.Fatalf("SetSecret: %v", err)
	}

	ok, err = store.HasSecret(ServiceName, AccountAPIKey)
	if err != nil || !ok {
		t.Errorf("HasSecret after store = %v, %v; want true, nil", ok, err)
	}
}

func TestSecretEncryptedAtRest(t *testing.T) {
	store := newTestStore(t)

	if err := store.SetSecret(ServiceName, AccountAPIKey, "sk-plaintext-marker"); err != nil {
		t.Fatalf("SetSecret: %v", err)
	}

	var raw string
	err := store.db.QueryRow(
		"SELECT value FROM secrets WHERE service = ? AND account = ?",
		ServiceName, AccountAPIKey,
	).Scan(&raw)
	if err != nil {
		t.Fatalf("raw read: %v", err)
	}
	if raw == "sk-plaintext-marker" {
		t.Error("secret stored in plaintext")
	}
}

func TestProbeLogRoundTrip(t *testing.T) {
	store := newTestStore(t)

	entry := &ProbeLog{
		URL:              "https://my-co.openai.azure.com/openai/deployments/d1/chat/completions?api-version=2024-02-01",
		Provider:         "azure",
		Strategy:         "build_full_path",
		StatusCode:       200,
		PromptTokens:     12,
		CompletionTokens: 34,
		Duration:         1500 * time.Millisecond,
	}
	if err := store.LogProbe(entry); err != nil {
		t.Fatalf("LogProbe: %v", err)
	}
	if entry.ID == "" {
		t.Error("expected generated ID")
	}

	logs, err := store.ListProbes(ProbeFilter{})
	if err != nil {
		t.Fatalf("ListProbes: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("got %d logs, want 1", len(logs))
	}
	got := logs[0]
	if got.StatusCode != 200 || got.PromptTokens != 12 || got.Duration != 1500*time.Millisecond {
		t.Errorf("unexpected log entry: %+v", got)
	}
}

func TestProbeLogFilter(t *testing.T) {
	store := newTestStore(t)

	for _, p := range []struct {
		provider string
		status   int
	}{
		{"azure", 200}, {"azure", 404}, {"openai_compatible", 200},
	} {
		if err := store.LogProbe(&ProbeLog{URL: "https://x", Provider: p.provider, Strategy: "s", StatusCode: p.status}); err != nil {
			t.Fatalf("LogProbe: %v", err)
		}
	}

	azure, err := store.ListProbes(ProbeFilter{Provider: "azure"})
	if err != nil {
		t.Fatalf("ListProbes: %v", err)
	}
	if len(azure) != 2 {
		t.Errorf("azure logs = %d, want 2", len(azure))
	}

	notFound, err := store.ListProbes(ProbeFilter{StatusCode: 404})
	if err != nil {
		t.Fatalf("ListProbes: %v", err)
	}
	if len(notFound) != 1 {
		t.Errorf("404 logs = %d, want 1", len(notFound))
	}
}

func TestPruneProbes(t *testing.T) {
	store := newTestStore(t)

	old := &ProbeLog{URL: "https://x", Provider: "azure", Strategy: "s", CreatedAt: time.Now().UTC().Add(-48 * time.Hour)}
	fresh := &ProbeLog{URL: "https://y", Provider: "azure", Strategy: "s"}
	if err := store.LogProbe(old); err != nil {
		t.Fatalf("LogProbe: %v", err)
	}
	if err := store.LogProbe(fresh); err != nil {
		t.Fatalf("LogProbe: %v", err)
	}

	n, err := store.PruneProbes(time.Now().UTC().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("PruneProbes: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}

	logs, err := store.ListProbes(ProbeFilter{})
	if err != nil {
		t.Fatalf("ListProbes: %v", err)
	}
	if len(logs) != 1 || logs[0].URL != "https://y" {
		t.Errorf("remaining logs = %+v, want only the fresh entry", logs)
	}
}

func TestStoreClosed(t *testing.T) {
	store := newTestStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := store.SetSecret(ServiceName, AccountAPIKey, "v"); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("error = %v, want ErrStoreClosed", err)
	}
	// Closing twice is fine
	if err := store.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestMaskSecret(t *testing.T) {
	if got := MaskSecret("short"); got != "***" {
		t.Errorf("short mask = %q, want ***", got)
	}
	got := MaskSecret("sk-abcdefghijklmnop")
	if got != "sk-abcde...mnop" {
		t.Errorf("mask = %q", got)
	}
}
