package endpoint

import "strings"

// ProblemKind flags a configuration smell detected in a resolved URL.
// Problems are advisory: resolution still succeeds, the caller decides
// whether to proceed with a live call.
type ProblemKind string

const (
	// ProblemDoubleSlashInPath means the path portion contains "//",
	// usually from a stored endpoint that kept its trailing slash.
	ProblemDoubleSlashInPath ProblemKind = "double_slash_in_path"
	// ProblemMissingDeploymentName means an Azure strategy that needs a
	// deployment ended up without one.
	ProblemMissingDeploymentName ProblemKind = "missing_deployment_name"
	// ProblemWrongPathShapeForAzure means an Azure URL carries the
	// OpenAI-style v1/chat path.
	ProblemWrongPathShapeForAzure ProblemKind = "wrong_path_shape_for_azure"
	// ProblemWrongPathShapeForOpenAI means a non-Azure URL carries the
	// Azure deployments path.
	ProblemWrongPathShapeForOpenAI ProblemKind = "wrong_path_shape_for_openai"
)

// Description returns a short operator-facing explanation.
func (p ProblemKind) Description() string {
	switch p {
	case ProblemDoubleSlashInPath:
		return "URL path contains '//' (stored endpoint likely has a trailing slash); Azure returns 404 for this"
	case ProblemMissingDeploymentName:
		return "no deployment name could be resolved; Azure chat calls need one in the path"
	case ProblemWrongPathShapeForAzure:
		return "Azure endpoint with an OpenAI-style 'v1/chat' path; expected /openai/deployments/{name}/chat/completions"
	case ProblemWrongPathShapeForOpenAI:
		return "non-Azure endpoint with an Azure-style 'openai/deployments' path; expected /v1/chat/completions"
	default:
		return string(p)
	}
}

// detectProblems runs every check against the resolved request, in a fixed
// order, regardless of strategy. Checks are independent and may co-occur.
func detectProblems(res *ResolvedRequest) []ProblemKind {
	problems := []ProblemKind{}

	if strings.Contains(urlPath(res.FinalURL), "//") {
		problems = append(problems, ProblemDoubleSlashInPath)
	}

	needsDeployment := res.Strategy == StrategyAppendCompletions || res.Strategy == StrategyBuildFullPath
	if res.Provider == ProviderAzure && needsDeployment && res.DeploymentName == "" {
		problems = append(problems, ProblemMissingDeploymentName)
	}

	if res.Provider == ProviderAzure && strings.Contains(res.FinalURL, "v1/chat") {
		problems = append(problems, ProblemWrongPathShapeForAzure)
	}

	if res.Provider == ProviderOpenAICompatible && strings.Contains(res.FinalURL, "openai/deployments") {
		problems = append(problems, ProblemWrongPathShapeForOpenAI)
	}

	return problems
}

// urlPath strips the scheme and query, leaving host+path for the
// double-slash check.
func urlPath(u string) string {
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	if i := strings.Index(u, "?"); i >= 0 {
		u = u[:i]
	}
	return u
}
