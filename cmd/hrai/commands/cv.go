package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/54b3r/hrai-go/internal/logging"
	"github.com/54b3r/hrai-go/internal/store"
)

// NewCVCmd constructs the `hrai cv` command, which prints the CV document
// URL of one candidate.
func NewCVCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cv <candidate-id>",
		Short: "Print a candidate's CV document URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("cv: invalid candidate id %q", args[0])
			}

			ctx := cmd.Context()
			db, err := openStore(logging.FromContext(ctx))
			if err != nil {
				return fmt.Errorf("cv: %w", err)
			}
			defer db.Close()

			url, err := db.DocumentURL(ctx, id)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("cv: candidate %d has no CV document", id)
			}
			if err != nil {
				return fmt.Errorf("cv: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
}
