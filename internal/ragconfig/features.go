package ragconfig

import (
	"errors"
	"fmt"
)

// ErrUnknownFeature is returned for feature IDs not in the catalog.
var ErrUnknownFeature = errors.New("unknown feature")

// FeatureDefinition describes one toggleable feature. Both the CLI and the
// interactive shell render from this single catalog.
type FeatureDefinition struct {
	ID            string
	DisplayName   string
	Category      string
	Description   string
	ImpactNote    string
	ConfigSection string
	ConfigKey     string
	Default       bool
	Requires      []string
}

// Catalog is the fixed set of toggleable features, grouped by category
// for display. To add a feature, add it here; nothing else changes.
var Catalog = []FeatureDefinition{
	{
		ID:            "hallucination-filter",
		DisplayName:   "Hallucination Filter",
		Category:      "Quality",
		Description:   "Anti-hallucination pipeline: retrieval gate, prompt hardening, claim extraction, NLI verification, grounding score.",
		ImpactNote:    "Adds a few seconds per query",
		ConfigSection: "hallucination_guard",
		ConfigKey:     "enabled",
	},
	{
		ID:            "hybrid-search",
		DisplayName:   "Hybrid Search",
		Category:      "Retrieval",
		Description:   "Combines semantic and keyword search for better document retrieval.",
		ConfigSection: "retrieval",
		ConfigKey:     "hybrid_search",
	},
	{
		ID:            "reranker",
		DisplayName:   "Cross-Encoder Reranker",
		Category:      "Retrieval",
		Description:   "Reranks retrieved chunks with a cross-encoder before prompting.",
		ImpactNote:    "Adds latency per query; improves relevance",
		ConfigSection: "retrieval",
		ConfigKey:     "reranker",
		Requires:      []string{"hybrid-search"},
	},
	{
		ID:            "audit-log",
		DisplayName:   "Query Audit Log",
		Category:      "Security",
		Description:   "Records every query and answer with timestamps for compliance review.",
		ConfigSection: "audit",
		ConfigKey:     "enabled",
		Default:       true,
	},
	{
		ID:            "cost-tracker",
		DisplayName:   "API Cost Tracker",
		Category:      "Cost",
		Description:   "Tracks token usage per query in online mode and warns near budget.",
		ConfigSection: "cost_tracking",
		ConfigKey:     "enabled",
	},
	{
		ID:            "citations",
		DisplayName:   "Source Citations",
		Category:      "Output",
		Description:   "Appends source document references to every answer.",
		ConfigSection: "output",
		ConfigKey:     "citations",
		Default:       true,
	},
}

// FindFeature looks up a catalog entry by ID.
func FindFeature(id string) (FeatureDefinition, bool) {
	for _, def := range Catalog {
		if def.ID == id {
			return def, true
		}
	}
	return FeatureDefinition{}, false
}

// FeatureState pairs a definition with its current on/off state.
type FeatureState struct {
	FeatureDefinition
	Enabled bool
}

// FeatureEnabled reports the current state of a feature, falling back to
// its catalog default when the config has no explicit value.
func (f *File) FeatureEnabled(def FeatureDefinition) bool {
	if v, ok := f.lookupBool(def.ConfigSection, def.ConfigKey); ok {
		return v
	}
	return def.Default
}

// Features returns the full catalog with current states, in catalog order.
func (f *File) Features() []FeatureState {
	states := make([]FeatureState, 0, len(Catalog))
	for _, def := range Catalog {
		states = append(states, FeatureState{FeatureDefinition: def, Enabled: f.FeatureEnabled(def)})
	}
	return states
}

// EnableFeature turns a feature on after checking its requirements.
// The change is in-memory until Save.
func (f *File) EnableFeature(id string) error {
	def, ok := FindFeature(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFeature, id)
	}

	for _, reqID := range def.Requires {
		req, ok := FindFeature(reqID)
		if !ok {
			return fmt.Errorf("%w: requirement %q of %q", ErrUnknownFeature, reqID, id)
		}
		if !f.FeatureEnabled(req) {
			return fmt.Errorf("feature %q requires %q to be enabled first", id, reqID)
		}
	}

	f.setBool(def.ConfigSection, def.ConfigKey, true)
	return nil
}

// DisableFeature turns a feature off. The change is in-memory until Save.
func (f *File) DisableFeature(id string) error {
	def, ok := FindFeature(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFeature, id)
	}
	f.setBool(def.ConfigSection, def.ConfigKey, false)
	return nil
}
