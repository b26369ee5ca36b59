package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/54b3r/hrai-go/internal/candidate"
)

// NewSitesCmd constructs the `hrai sites` command, which lists the values
// accepted by --site and the site field of POST /api/search.
func NewSitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List the site filter values",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (no filter)\n", candidate.AllSites)
			for _, name := range candidate.SiteNames() {
				fmt.Fprintln(out, name)
			}
		},
	}
}
