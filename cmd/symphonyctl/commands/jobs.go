package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/symphonyctl/cmd/symphonyctl/handlers"
)

// Autostart returns the scheduled job that requests execute capacity for
// queued work.
func Autostart(opts *handlers.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "autostart",
		Short: "Request execute capacity for running and pending tasks",
		Long: `Request execute capacity for running and pending tasks.

Demand per application is the number of slots needed to finish its open
tasks within an hour, estimated from the runtime of tasks completed in the
last two hours. The total is sent to the http directory backend.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Autostart(cmd.Context(), opts)
		},
	}
}

// Cleanup returns the scheduled job that removes unavailable hosts.
func Cleanup(opts *handlers.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Close and remove hosts EGO reports as unavail",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Cleanup(cmd.Context(), opts)
		},
	}
}

// Autostop returns the scheduled job that retires idle execute nodes.
func Autostop(opts *handlers.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "autostop",
		Short: "Retire this execute node once the grid has been idle",
		Long: `Retire this execute node once the grid has been idle.

The idle clock is kept in the bootstrap directory between runs. Before the
first job the node waits autoscale.idle_time_before_jobs, afterwards
autoscale.idle_time_after_jobs. A node ready to stop is closed in EGO and
removed from the directory. The job does nothing when autostop is disabled
or HostFactory manages the cluster.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Autostop(cmd.Context(), opts)
		},
	}
}
