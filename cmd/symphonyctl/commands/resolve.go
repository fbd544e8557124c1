package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/symphonyctl/cmd/symphonyctl/handlers"
)

// Resolve returns the command that runs topology discovery on its own.
//
// Optional flags:
//
//	--persist: Write the master and management host files
//	--output, -o: Output format (yaml, json)
func Resolve(opts *handlers.GlobalOptions) *cobra.Command {
	var persist bool
	var output string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Discover the cluster master and management hosts",
		Long: `Discover the cluster master and management hosts.

The configured directory is queried until a master appears or the retry
budget is exhausted. Nothing is written unless --persist is given.

Examples:
  # Print the topology
  symphonyctl resolve

  # Refresh /etc/<app>_master_node and /etc/<app>_mgmt_hosts
  symphonyctl resolve --persist`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Resolve(cmd.Context(), opts, persist, output)
		},
	}

	cmd.Flags().BoolVar(&persist, "persist", false, "Write the topology files")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format (yaml, json)")

	return cmd
}
