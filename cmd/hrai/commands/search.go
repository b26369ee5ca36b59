package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/54b3r/hrai-go/internal/candidate"
	"github.com/54b3r/hrai-go/internal/logging"
	"github.com/54b3r/hrai-go/internal/search"
)

// NewSearchCmd constructs the `hrai search` command, which runs one search
// and prints the ranked page.
func NewSearchCmd() *cobra.Command {
	var site string
	var page, size int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Run one candidate search",
		Long: `Run one candidate search and print the ranked page.

With a query the candidate vector index is searched semantically (requires
QDRANT_HOST and embedding credentials). Without one the candidate directory
is browsed and ranked by academic and experience bonuses.

Examples:
  hrai search "ingeniero civil con experiencia en vías"
  hrai search --site Manizales --page 2
  hrai search "docente de matemáticas" --site "La Dorada" --json`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.FromContext(ctx)

			d, err := buildDeps(ctx, log, nil)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			defer d.Close()

			result, err := d.engine.Search(ctx, search.Request{
				Query:    strings.Join(args, " "),
				Site:     site,
				Page:     page,
				PageSize: size,
			})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printPage(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&site, "site", "s", candidate.AllSites, "Site filter (see 'hrai sites')")
	cmd.Flags().IntVar(&page, "page", 1, "1-based page number")
	cmd.Flags().IntVar(&size, "size", search.DefaultPageSize, "Results per page")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the page as JSON")

	return cmd
}

// printPage writes a human-readable rendering of p.
func printPage(w io.Writer, p *search.Page) {
	fmt.Fprintf(w, "mode=%s page=%d page_size=%d results=%d\n", p.Mode, p.Page, p.PageSize, len(p.Results))
	for i, r := range p.Results {
		rank := (p.Page-1)*p.PageSize + i + 1
		fmt.Fprintf(w, "\n%3d. %s (#%d)  score=%.4f raw=%.4f\n", rank, r.Name, r.ID, r.FinalScore, r.RawScore)
		if r.Email != "" || r.Phone != "" {
			fmt.Fprintf(w, "     contact: %s %s\n", r.Email, r.Phone)
		}
		if len(r.Sites) > 0 {
			fmt.Fprintf(w, "     sites:   %s\n", strings.Join(r.Sites, ", "))
		}
		if len(r.Bonuses) > 0 {
			fmt.Fprintf(w, "     bonuses: %s\n", strings.Join(r.Bonuses, ", "))
		}
		for _, line := range strings.Split(r.Summary, "\n") {
			fmt.Fprintf(w, "     %s\n", line)
		}
	}
}
