package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/symphonyctl/cmd/symphonyctl/handlers"
)

// Bootstrap returns the command that converges this node.
//
// The phases run in order: validation, register, discovery, account,
// egoconfig, hostfactory, schedule. Any failure aborts the run before later
// phases touch the node.
func Bootstrap(opts *handlers.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Configure this node as a Symphony cluster member",
		Long: `Configure this node as a Symphony cluster member.

The node registers its roles with the cluster directory, waits for the
master to appear, persists the resolved topology and renders the EGO
configuration, admin account, HostFactory configuration and cron jobs.

Examples:
  # Bootstrap using /etc/symphonyctl/symphonyctl.yaml
  symphonyctl bootstrap

  # Show what would change
  symphonyctl bootstrap --dry-run

  # Skip discovery with a manual override
  SYMPHONY_OVERRIDE_MASTER_HOST=m1.grid.local \
  SYMPHONY_OVERRIDE_MANAGEMENT_HOSTS=m1.grid.local,m2.grid.local \
  symphonyctl bootstrap`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Bootstrap(cmd.Context(), opts)
		},
	}
}
