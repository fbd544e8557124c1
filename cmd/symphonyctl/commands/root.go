// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/imamik/symphonyctl/cmd/symphonyctl/handlers"
	"github.com/imamik/symphonyctl/internal/config"
)

// flagKeys maps persistent flags to configuration keys.
var flagKeys = map[string]string{
	"dry-run":    "dry_run",
	"root":       "root",
	"log-level":  "logging.level",
	"log-format": "logging.format",
}

// Root returns the root command for the symphonyctl CLI.
//
// Global flags are bound to the configuration so that they override the
// config file and SYMPHONY_* environment variables.
func Root() *cobra.Command {
	opts := &handlers.GlobalOptions{Viper: config.NewViper()}

	cmd := &cobra.Command{
		Use:           "symphonyctl",
		Short:         "Bootstrap and operate IBM Spectrum Symphony cluster nodes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: /etc/symphonyctl/symphonyctl.yaml)")
	pf.Bool("dry-run", false, "Report changes without applying them")
	pf.String("root", "/", "Prefix for every path written on the node")
	pf.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	pf.String("log-format", "text", "Log format (text, json)")
	bindFlags(opts.Viper, pf)

	// Node lifecycle
	cmd.AddCommand(Bootstrap(opts))
	cmd.AddCommand(Resolve(opts))
	cmd.AddCommand(Register(opts))
	cmd.AddCommand(Show(opts))

	// Scheduled jobs
	cmd.AddCommand(Autostart(opts))
	cmd.AddCommand(Cleanup(opts))
	cmd.AddCommand(Autostop(opts))

	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	for name, key := range flagKeys {
		_ = v.BindPFlag(key, fs.Lookup(name))
	}
}
