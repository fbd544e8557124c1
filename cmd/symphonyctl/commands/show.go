package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/symphonyctl/cmd/symphonyctl/handlers"
)

// Show returns the command that prints the persisted topology.
//
// Optional flags:
//
//	--output, -o: Output format (yaml, json); styled text on a terminal by default
func Show(opts *handlers.GlobalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the topology persisted by the last bootstrap",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Show(cmd.Context(), opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format (yaml, json)")

	return cmd
}
