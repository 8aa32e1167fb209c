// Package tokenizer pre-counts prompt tokens for probe requests so the
// operator sees the expected input cost before and after a live call.
package tokenizer

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/hybridrag/ragctl/internal/types"
)

// Encoding names used by tiktoken.
const (
	EncodingCL100kBase = "cl100k_base" // GPT-4, GPT-3.5-turbo
	EncodingO200kBase  = "o200k_base"  // GPT-4o, o1 models
)

// Per-message framing overhead and reply priming, per OpenAI's counting
// rules. Close enough for diagnostics; the server's usage block is
// authoritative.
const (
	messageOverhead    = 3
	replyPrimingTokens = 3
)

// modelEncoding pairs a model-name prefix with its encoding.
type modelEncoding struct {
	prefix   string
	encoding string
}

// Ordered so longer prefixes match before their shorter stems.
var modelEncodings = []modelEncoding{
	{"gpt-4o", EncodingO200kBase},
	{"gpt-35", EncodingCL100kBase}, // Azure deployment spelling
	{"gpt-3.5", EncodingCL100kBase},
	{"gpt-4", EncodingCL100kBase},
	{"o1", EncodingO200kBase},
	{"o3", EncodingO200kBase},
}

// Tokenizer counts tokens with cached tiktoken encodings. Safe for
// concurrent use.
type Tokenizer struct {
	mu        sync.RWMutex
	encodings map[string]*tiktoken.Tiktoken
}

// New creates a Tokenizer.
func New() *Tokenizer {
	return &Tokenizer{encodings: make(map[string]*tiktoken.Tiktoken)}
}

// CountText counts tokens in a text string for a given model.
func (t *Tokenizer) CountText(text, model string) (int, error) {
	enc, err := t.getEncoding(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// CountMessages counts prompt tokens for a chat message slice, including
// per-message framing and reply priming.
func (t *Tokenizer) CountMessages(messages []types.Message, model string) (int, error) {
	total := 0
	for _, msg := range messages {
		n, err := t.CountText(msg.Content, model)
		if err != nil {
			return 0, err
		}
		r, err := t.CountText(msg.Role, model)
		if err != nil {
			return 0, err
		}
		total += n + r + messageOverhead
	}
	return total + replyPrimingTokens, nil
}

// getEncoding returns the tiktoken encoding for a model, with caching.
func (t *Tokenizer) getEncoding(model string) (*tiktoken.Tiktoken, error) {
	name := resolveEncoding(model)

	t.mu.RLock()
	enc, ok := t.encodings[name]
	t.mu.RUnlock()
	if ok {
		return enc, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if enc, ok = t.encodings[name]; ok {
		return enc, nil
	}

	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, err
	}
	t.encodings[name] = enc
	return enc, nil
}

// resolveEncoding maps a model or deployment name to an encoding,
// defaulting to cl100k_base for unknown names.
func resolveEncoding(model string) string {
	lower := strings.ToLower(model)
	for _, me := range modelEncodings {
		if strings.HasPrefix(lower, me.prefix) {
			return me.encoding
		}
	}
	return EncodingCL100kBase
}
