package endpoint

import (
	"fmt"
	"io"
)

// Label renders a Source for display, naming the env var when one was
// consulted.
func (s Source) Label() string {
	if s.Kind == SourceEnv {
		return "from env " + s.EnvVar
	}
	return string(s.Kind)
}

// Render writes the resolution in the fixed-width text form shared by the
// CLI and the interactive shell. Secrets never appear: the auth header is
// shown as its template.
func (r *ResolvedRequest) Render(w io.Writer) {
	fmt.Fprintf(w, "provider:    %s\n", r.Provider)
	fmt.Fprintf(w, "strategy:    %s\n", r.Strategy)
	fmt.Fprintf(w, "url:         %s\n", r.FinalURL)
	fmt.Fprintf(w, "auth header: %s: %s\n", r.AuthHeaderName, r.AuthHeaderValueTemplate)
	if r.DeploymentName != "" {
		fmt.Fprintf(w, "deployment:  %s (%s)\n", r.DeploymentName, r.DeploymentSource.Label())
	}
	if r.APIVersion != "" {
		fmt.Fprintf(w, "api version: %s (%s)\n", r.APIVersion, r.APIVersionSource.Label())
	}
	if len(r.Problems) == 0 {
		fmt.Fprintln(w, "problems:    none")
		return
	}
	fmt.Fprintln(w, "problems:")
	for _, p := range r.Problems {
		fmt.Fprintf(w, "  - %s\n", p.Description())
	}
}
