// Package textfix normalizes text-encoding artifacts that Windows editors
// and copy-paste leave in config files and prompts: smart quotes, stray
// BOMs, and UTF-8 bytes decoded as cp1252 (mojibake).
package textfix

import (
	"fmt"
	"os"
	"strings"
)

// Mojibake sequences first so their smart-quote expansions do not get
// half-replaced by the single-character rules below.
var replacements = []struct {
	from, to string
}{
	// UTF-8 read as cp1252
	{"â€™", "'"},
	{"â€˜", "'"},
	{"â€œ", `"`},
	{"â€", `"`},
	{"â€“", "-"},
	{"â€”", "--"},
	{"â€¦", "..."},
	{"Â ", " "},

	// Smart punctuation
	{"‘", "'"},  // left single quote
	{"’", "'"},  // right single quote
	{"“", `"`},  // left double quote
	{"”", `"`},  // right double quote
	{"–", "-"},  // en dash
	{"—", "--"}, // em dash
	{"…", "..."},
	{" ", " "}, // non-breaking space
}

const bom = "\uFEFF"

// Clean normalizes a string and reports how many replacements were made.
func Clean(s string) (string, int) {
	count := 0

	if strings.HasPrefix(s, bom) {
		s = strings.TrimPrefix(s, bom)
		count++
	}
	// Interior BOMs appear when files are concatenated.
	if n := strings.Count(s, bom); n > 0 {
		s = strings.ReplaceAll(s, bom, "")
		count += n
	}

	for _, r := range replacements {
		if n := strings.Count(s, r.from); n > 0 {
			s = strings.ReplaceAll(s, r.from, r.to)
			count += n
		}
	}

	return s, count
}

// FixFile cleans a file in place, writing a .bak sibling first. Returns
// the number of replacements; zero means the file was left untouched.
func FixFile(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cleaned, count := Clean(string(raw))
	if count == 0 {
		return 0, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := os.WriteFile(path+".bak", raw, info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("failed to write backup for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(cleaned), info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return count, nil
}
