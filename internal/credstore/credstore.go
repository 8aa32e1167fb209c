// Package credstore stores operator secrets (API key, endpoint URL) and
// probe history in an encrypted local SQLite database.
package credstore

import (
	"errors"
	"time"
)

// Keyring-compatible schema: one service, fixed account names. These must
// match what the RAG application itself looks up; the older
// api_key/api_endpoint account names returned nothing and were retired.
const (
	ServiceName     = "hybridrag"
	AccountAPIKey   = "api_key"
	AccountEndpoint = "endpoint"
)

// Sentinel errors for store operations.
var (
	ErrNotFound     = errors.New("secret not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrStoreClosed  = errors.New("store is closed")
	ErrEncryption   = errors.New("encryption error")
)

// Store is the persistence interface for secrets and probe history.
type Store interface {
	// Secret operations, keyed by (service, account).
	SetSecret(service, account, value string) error
	GetSecret(service, account string) (string, error)
	DeleteSecret(service, account string) error
	HasSecret(service, account string) (bool, error)

	// Probe history operations.
	LogProbe(entry *ProbeLog) error
	ListProbes(filter ProbeFilter) ([]*ProbeLog, error)
	PruneProbes(olderThan time.Time) (int64, error)

	Close() error
}

// ProbeLog records one live endpoint probe for later review.
type ProbeLog struct {
	ID               string        `json:"id"`
	URL              string        `json:"url"`
	Provider         string        `json:"provider"`
	Strategy         string        `json:"strategy"`
	StatusCode       int           `json:"status_code"`
	PromptTokens     int           `json:"prompt_tokens"`
	CompletionTokens int           `json:"completion_tokens"`
	Duration         time.Duration `json:"duration"`
	ErrorMessage     string        `json:"error_message,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
}

// ProbeFilter narrows ListProbes results. Zero values mean no filtering.
type ProbeFilter struct {
	Provider   string
	StatusCode int
	Limit      int
}

// MaskSecret creates a safe preview of a secret for status output.
func MaskSecret(value string) string {
	if len(value) <= 12 {
		return "***"
	}
	return value[:8] + "..." + value[len(value)-4:]
}
