package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imovelhub/ingest/internal/source"
)

// newSourcesCmd lists the builtin source adapters and their key settings.
func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Lists the builtin source adapters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, adapter := range source.Builtin() {
				mode := "static"
				if adapter.Render {
					mode = "rendered"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %-22s %-9s %s\n",
					adapter.Name, adapter.Agency, mode, adapter.BaseURL)
			}
			return nil
		},
	}
}
