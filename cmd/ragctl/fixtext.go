package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hybridrag/ragctl/internal/textfix"
)

func newFixTextCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fix-text <file>...",
		Short: "Normalize smart punctuation and mojibake in text files",
		Long: `Fix-text replaces curly quotes, em and en dashes, ellipses, no-break
spaces and common UTF-8 mojibake with their plain ASCII forms, and strips
byte order marks. Files are only rewritten when something changed, and a
.bak sibling is written first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			total := 0
			for _, path := range args {
				n, err := textfix.FixFile(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if n == 0 {
					fmt.Printf("%s: clean\n", path)
				} else {
					fmt.Printf("%s: %d replacement(s)\n", path, n)
				}
				total += n
			}
			a.logger.Debug("fix-text finished", "files", len(args), "replacements", total)
			return nil
		},
	}
}
