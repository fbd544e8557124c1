package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/symphonyctl/cmd/symphonyctl/handlers"
)

// Register returns the command that publishes this node to the directory.
func Register(opts *handlers.GlobalOptions) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Publish this node's roles to the cluster directory",
		Long: `Publish this node's roles to the cluster directory.

Backends store the record differently: a member list entry for static,
server labels for hcloud, instance tags for ec2, an object for s3 and a
POST for http. With --remove the record is deleted again where the
backend supports it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Register(cmd.Context(), opts, remove)
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "Remove this node's record instead")

	return cmd
}
