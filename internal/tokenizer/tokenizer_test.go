package tokenizer

import (
	"testing"

	"github.com/hybridrag/ragctl/internal/types"
)

func TestResolveEncoding(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"gpt-35-turbo", EncodingCL100kBase},
		{"gpt-3.5-turbo", EncodingCL100kBase},
		{"gpt-4", EncodingCL100kBase},
		{"gpt-4o-mini", EncodingO200kBase},
		{"GPT-4O", EncodingO200kBase},
		{"o1-preview", EncodingO200kBase},
		{"llama3", EncodingCL100kBase}, // unknown falls back
	}
	for _, tt := range tests {
		if got := resolveEncoding(tt.model); got != tt.want {
			t.Errorf("resolveEncoding(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}

func TestCountText(t *testing.T) {
	tok := New()

	n, err := tok.CountText("say hello", "gpt-35-turbo")
	if err != nil {
		t.Fatalf("CountText: %v", err)
	}
	if n <= 0 {
		t.Errorf("token count = %d, want > 0", n)
	}

	empty, err := tok.CountText("", "gpt-35-turbo")
	if err != nil {
		t.Fatalf("CountText empty: %v", err)
	}
	if empty != 0 {
		t.Errorf("empty text count = %d, want 0", empty)
	}
}

func TestCountMessages(t *testing.T) {
	tok := New()

	messages := []types.Message{
		{Role: types.RoleUser, Content: "say hello"},
	}
	n, err := tok.CountMessages(messages, "gpt-35-turbo")
	if err != nil {
		t.Fatalf("CountMessages: %v", err)
	}

	text, err := tok.CountText("say hello", "gpt-35-turbo")
	if err != nil {
		t.Fatalf("CountText: %v", err)
	}
	// Framing overhead must be counted on top of the content tokens.
	if n <= text {
		t.Errorf("message count %d not greater than bare text count %d", n, text)
	}
}

func TestEncodingCache(t *testing.T) {
	tok := New()

	if _, err := tok.CountText("a", "gpt-4"); err != nil {
		t.Fatalf("CountText: %v", err)
	}
	if _, err := tok.CountText("b", "gpt-35-turbo"); err != nil {
		t.Fatalf("CountText: %v", err)
	}
	// Both models share cl100k_base; only one encoding should be cached.
	if len(tok.encodings) != 1 {
		t.Errorf("cached encodings = %d, want 1", len(tok.encodings))
	}
}
