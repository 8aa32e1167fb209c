// Package ragconfig reads and edits the HybridRAG application's YAML
// configuration: the online/offline mode switch and the feature toggles.
package ragconfig

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Modes accepted by the mode switch.
const (
	ModeOffline = "offline"
	ModeOnline  = "online"
)

// ErrUnknownMode is returned for mode values other than online/offline.
var ErrUnknownMode = errors.New("unknown mode")

// File is a loaded YAML config. Unknown keys are preserved across a
// load/edit/save cycle; comments and key order are not, same as the
// Python tooling this replaces.
type File struct {
	path string
	data map[string]any
}

// Load reads the YAML config at path.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	data := map[string]any{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &File{path: path, data: data}, nil
}

// Path returns the file location this config was loaded from.
func (f *File) Path() string {
	return f.path
}

// Save writes the config back to its file.
func (f *File) Save() error {
	out, err := yaml.Marshal(f.data)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(f.path, out, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Mode returns the current routing mode, defaulting to offline when the
// key is absent or malformed.
func (f *File) Mode() string {
	if mode, ok := f.data["mode"].(string); ok && mode != "" {
		return mode
	}
	return ModeOffline
}

// SetMode changes the routing mode. Only "online" and "offline" are valid.
func (f *File) SetMode(mode string) error {
	if mode != ModeOnline && mode != ModeOffline {
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	f.data["mode"] = mode
	return nil
}

// section returns the named top-level mapping, creating it when absent.
func (f *File) section(name string) map[string]any {
	if sec, ok := f.data[name].(map[string]any); ok {
		return sec
	}
	sec := map[string]any{}
	f.data[name] = sec
	return sec
}

// lookupBool reads section.key as a bool, returning ok=false when the
// section or key is missing or not a bool.
func (f *File) lookupBool(sectionName, key string) (bool, bool) {
	sec, ok := f.data[sectionName].(map[string]any)
	if !ok {
		return false, false
	}
	v, ok := sec[key].(bool)
	return v, ok
}

// setBool writes section.key = value.
func (f *File) setBool(sectionName, key string, value bool) {
	f.section(sectionName)[key] = value
}
