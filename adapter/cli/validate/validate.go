// Package validate implements the "pacer validate" command: parse a
// task graph and check its structural invariants without scheduling it.
package validate

import (
	"fmt"

	"github.com/felixgeelhaar/pacer/internal/scheduling/domain"
	"github.com/felixgeelhaar/pacer/internal/scheduling/infrastructure/graphdoc"
	"github.com/spf13/cobra"
)

// NewCommand builds the "validate" cobra command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [graph.json]",
		Short: "Check a task graph for structural errors without scheduling it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := graphdoc.Load(args[0])
			if err != nil {
				return err
			}
			if err := domain.ValidateAcyclic(tasks); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d tasks, no cycles\n", len(tasks))
			return nil
		},
	}
}
