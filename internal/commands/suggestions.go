package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/chatotp/internal/suggestions"
)

func newSuggestionsCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "suggestions",
		Short: "Show suggested starter questions",
		Long: `Print two randomly chosen starter questions, or the whole catalog with --all.
The printed text is what would be sent to the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items := suggestions.Pick(a.deps.Rand, suggestions.DefaultCount)
			if all {
				items = suggestions.All()
			}

			for i, s := range items {
				fmt.Fprintf(a.deps.Stdout, "%d. %s %s\n   %s\n", i+1, s.Title, s.Label, s.Action)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "List every suggestion")
	return cmd
}
