// Package endpoint classifies stored chat-completions endpoints and builds
// the provider-specific request URL and auth header needed to reach them.
package endpoint

import (
	"errors"
	"os"
	"strings"
)

// ErrInvalidEndpoint is returned for an empty or scheme-less base URL.
var ErrInvalidEndpoint = errors.New("invalid endpoint URL")

// Provider identifies the API shape an endpoint implements.
type Provider string

const (
	// ProviderAzure is the deployment-based Azure OpenAI API shape.
	ProviderAzure Provider = "azure"
	// ProviderOpenAICompatible is the generic OpenAI-style API shape.
	ProviderOpenAICompatible Provider = "openai_compatible"
)

// URLStrategy describes how the final request URL was derived.
type URLStrategy string

const (
	// StrategyCompleteAsIs means the input already contained /chat/completions.
	StrategyCompleteAsIs URLStrategy = "complete_as_is"
	// StrategyAppendCompletions means the input had /deployments/ but no completions path.
	StrategyAppendCompletions URLStrategy = "append_completions"
	// StrategyBuildFullPath means the full Azure deployment path was constructed.
	StrategyBuildFullPath URLStrategy = "build_full_path"
	// StrategyStandardOpenAIPath is the non-Azure /v1/chat/completions form.
	StrategyStandardOpenAIPath URLStrategy = "standard_openai_path"
)

// SourceKind identifies where a resolved value came from.
type SourceKind string

const (
	SourceOverride  SourceKind = "override"
	SourceEnv       SourceKind = "env"
	SourceURL       SourceKind = "url"
	SourceGuessed   SourceKind = "guessed"
	SourceDefaulted SourceKind = "defaulted"
)

// Source records the origin of a resolved deployment name or API version.
// EnvVar is set only when Kind is SourceEnv.
type Source struct {
	Kind   SourceKind `json:"kind"`
	EnvVar string     `json:"env_var,omitempty"`
}

// Fallback values used when nothing else resolves. The deployment guess
// matches what IT provisions by default on company Azure resources.
const (
	DefaultDeployment = "gpt-35-turbo"
	DefaultAPIVersion = "2024-02-01"
)

// Auth header constants per provider.
const (
	azureAuthHeader  = "api-key"
	openAIAuthHeader = "Authorization"
	keyPlaceholder   = "{key}"
)

// azureMarkers is the fixed substring set that classifies an endpoint as
// Azure. Matching is case-insensitive and positional-independent. The list
// is the union of the marker sets found across the toolkit scripts; the
// narrower per-script lists were divergence bugs, not variants.
var azureMarkers = []string{
	"azure",
	".openai.azure.com",
	"aoai",
	"azure-api",
	"cognitiveservices",
}

// DeploymentEnvAliases is the default probe order for deployment names.
var DeploymentEnvAliases = []string{
	"AZURE_OPENAI_DEPLOYMENT",
	"AZURE_DEPLOYMENT",
	"OPENAI_DEPLOYMENT",
	"AZURE_OPENAI_DEPLOYMENT_NAME",
	"DEPLOYMENT_NAME",
	"AZURE_CHAT_DEPLOYMENT",
	"CHAT_MODEL_DEPLOYMENT",
}

// APIVersionEnvAliases is the default probe order for API versions.
var APIVersionEnvAliases = []string{
	"AZURE_OPENAI_API_VERSION",
	"AZURE_API_VERSION",
	"OPENAI_API_VERSION",
	"API_VERSION",
}

// Config is the input to Resolve. Env is an explicit snapshot so that
// Resolve never reads process state directly; use ProcessEnv to build one
// from the real environment.
type Config struct {
	BaseURL            string
	DeploymentOverride string
	APIVersionOverride string

	// Alias lists are probed in order, first non-empty match wins.
	// Nil means the package defaults.
	DeploymentEnvAliases []string
	APIVersionEnvAliases []string

	// Env is the environment snapshot consulted for the alias lists.
	Env map[string]string
}

// ResolvedRequest is the complete recipe for reaching chat-completions on
// the classified endpoint. The API key itself is never embedded; callers
// substitute it into AuthHeaderValueTemplate.
type ResolvedRequest struct {
	Provider                Provider      `json:"provider"`
	Strategy                URLStrategy   `json:"strategy"`
	FinalURL                string        `json:"final_url"`
	AuthHeaderName          string        `json:"auth_header_name"`
	AuthHeaderValueTemplate string        `json:"auth_header_value_template"`
	DeploymentName          string        `json:"deployment_name,omitempty"`
	DeploymentSource        Source        `json:"deployment_source,omitempty"`
	APIVersion              string        `json:"api_version,omitempty"`
	APIVersionSource        Source        `json:"api_version_source,omitempty"`
	Problems                []ProblemKind `json:"problems"`
}

// AuthHeaderValue substitutes the real key into the header template.
func (r *ResolvedRequest) AuthHeaderValue(key string) string {
	return strings.Replace(r.AuthHeaderValueTemplate, keyPlaceholder, key, 1)
}

// ProcessEnv snapshots the named variables from the process environment.
// Unset and empty variables are omitted.
func ProcessEnv(names ...string) map[string]string {
	env := make(map[string]string, len(names))
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			env[name] = v
		}
	}
	return env
}

// ClassifyProvider decides the API shape from the base URL alone.
// It is a total function: any string classifies, unknown shapes fall
// through to OpenAI-compatible.
func ClassifyProvider(baseURL string) Provider {
	lower := strings.ToLower(baseURL)
	for _, marker := range azureMarkers {
		if strings.Contains(lower, marker) {
			return ProviderAzure
		}
	}
	return ProviderOpenAICompatible
}

// Resolve turns a stored base endpoint into the exact request target and
// auth header for chat-completions. It performs no I/O: environment access
// goes through the snapshot in cfg.Env only, so identical inputs always
// produce identical results.
func Resolve(cfg Config) (*ResolvedRequest, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" || (!strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://")) {
		return nil, ErrInvalidEndpoint
	}

	base := trimTrailingSlashes(baseURL)
	provider := ClassifyProvider(baseURL)

	res := &ResolvedRequest{Provider: provider}

	switch provider {
	case ProviderAzure:
		res.AuthHeaderName = azureAuthHeader
		res.AuthHeaderValueTemplate = keyPlaceholder
		resolveAzure(cfg, base, res)
	default:
		res.AuthHeaderName = openAIAuthHeader
		res.AuthHeaderValueTemplate = "Bearer " + keyPlaceholder
		res.Strategy = StrategyStandardOpenAIPath
		if strings.Contains(base, "/chat/completions") {
			res.FinalURL = base
		} else {
			res.FinalURL = base + "/v1/chat/completions"
		}
	}

	res.Problems = detectProblems(res)
	return res, nil
}

// resolveAzure picks the URL strategy for an Azure endpoint and fills in
// deployment name and API version as the strategy requires.
func resolveAzure(cfg Config, base string, res *ResolvedRequest) {
	switch {
	case strings.Contains(base, "/chat/completions"):
		res.Strategy = StrategyCompleteAsIs
		res.FinalURL = base
		if !strings.Contains(base, "api-version=") {
			version, src := resolveAPIVersion(cfg)
			res.APIVersion = version
			res.APIVersionSource = src
			// appendQuery joins with "&" when a query is already present;
			// a second "?" would produce a URL Azure rejects.
			res.FinalURL = appendQuery(base, "api-version="+version)
		}

	// The marker check runs on the untrimmed input: a URL ending in
	// "/deployments/" still names the deployment-style shape even though
	// slash trimming eats the marker's closing slash. The missing segment
	// then surfaces as a missing-deployment problem rather than silently
	// rebuilding the full path on top of the existing one.
	case strings.Contains(cfg.BaseURL, "/deployments/"):
		res.Strategy = StrategyAppendCompletions
		version, vsrc := resolveAPIVersion(cfg)
		res.APIVersion = version
		res.APIVersionSource = vsrc
		res.FinalURL = base + "/chat/completions?api-version=" + version

		if name, src, ok := resolveDeploymentExplicit(cfg); ok {
			res.DeploymentName = name
			res.DeploymentSource = src
		} else {
			res.DeploymentName = deploymentFromURL(base)
			res.DeploymentSource = Source{Kind: SourceURL}
		}

	default:
		res.Strategy = StrategyBuildFullPath
		name, src, ok := resolveDeploymentExplicit(cfg)
		if !ok {
			name = DefaultDeployment
			src = Source{Kind: SourceGuessed}
		}
		res.DeploymentName = name
		res.DeploymentSource = src

		version, vsrc := resolveAPIVersion(cfg)
		res.APIVersion = version
		res.APIVersionSource = vsrc
		res.FinalURL = base + "/openai/deployments/" + name + "/chat/completions?api-version=" + version
	}
}

// resolveDeploymentExplicit applies the override and env-alias tiers.
// The URL-extraction and guess tiers are strategy-specific and handled by
// the caller.
func resolveDeploymentExplicit(cfg Config) (string, Source, bool) {
	if cfg.DeploymentOverride != "" {
		return cfg.DeploymentOverride, Source{Kind: SourceOverride}, true
	}
	aliases := cfg.DeploymentEnvAliases
	if aliases == nil {
		aliases = DeploymentEnvAliases
	}
	for _, name := range aliases {
		if v := cfg.Env[name]; v != "" {
			return v, Source{Kind: SourceEnv, EnvVar: name}, true
		}
	}
	return "", Source{}, false
}

// resolveAPIVersion applies override, env aliases, then the default.
func resolveAPIVersion(cfg Config) (string, Source) {
	if cfg.APIVersionOverride != "" {
		return cfg.APIVersionOverride, Source{Kind: SourceOverride}
	}
	aliases := cfg.APIVersionEnvAliases
	if aliases == nil {
		aliases = APIVersionEnvAliases
	}
	for _, name := range aliases {
		if v := cfg.Env[name]; v != "" {
			return v, Source{Kind: SourceEnv, EnvVar: name}
		}
	}
	return DefaultAPIVersion, Source{Kind: SourceDefaulted}
}

// deploymentFromURL extracts the path segment immediately following
// /deployments/. Returns "" when the segment is empty.
func deploymentFromURL(base string) string {
	const marker = "/deployments/"
	idx := strings.Index(base, marker)
	if idx < 0 {
		return ""
	}
	rest := base[idx+len(marker):]
	if end := strings.IndexAny(rest, "/?"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

// trimTrailingSlashes removes every trailing slash without eating into a
// bare scheme like "https://".
func trimTrailingSlashes(s string) string {
	for strings.HasSuffix(s, "/") && !strings.HasSuffix(s, "://") {
		s = s[:len(s)-1]
	}
	return s
}

// appendQuery attaches a query fragment with "?" or "&" as appropriate.
func appendQuery(u, q string) string {
	if strings.Contains(u, "?") {
		return u + "&" + q
	}
	return u + "?" + q
}
