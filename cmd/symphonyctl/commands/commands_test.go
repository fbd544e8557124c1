package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/symphonyctl/cmd/symphonyctl/handlers"
)

func TestSubcommands(t *testing.T) {
	opts := &handlers.GlobalOptions{}

	tests := []struct {
		name  string
		cmd   *cobra.Command
		use   string
		short string
	}{
		{"bootstrap", Bootstrap(opts), "bootstrap", "Configure this node as a Symphony cluster member"},
		{"resolve", Resolve(opts), "resolve", "Discover the cluster master and management hosts"},
		{"register", Register(opts), "register", "Publish this node's roles to the cluster directory"},
		{"show", Show(opts), "show", "Print the topology persisted by the last bootstrap"},
		{"autostart", Autostart(opts), "autostart", "Request execute capacity for running and pending tasks"},
		{"cleanup", Cleanup(opts), "cleanup", "Close and remove hosts EGO reports as unavail"},
		{"autostop", Autostop(opts), "autostop", "Retire this execute node once the grid has been idle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.cmd)
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.Equal(t, tt.short, tt.cmd.Short)
			assert.NotNil(t, tt.cmd.RunE, "%s command should have RunE function", tt.name)
		})
	}
}

func TestSubcommandFlags(t *testing.T) {
	opts := &handlers.GlobalOptions{}

	tests := []struct {
		name      string
		cmd       *cobra.Command
		flag      string
		shorthand string
		def       string
	}{
		{"resolve persist", Resolve(opts), "persist", "", "false"},
		{"resolve output", Resolve(opts), "output", "o", "yaml"},
		{"register remove", Register(opts), "remove", "", "false"},
		{"show output", Show(opts), "output", "o", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := tt.cmd.Flags().Lookup(tt.flag)
			require.NotNil(t, flag, "%s flag should exist", tt.flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.def, flag.DefValue)
		})
	}
}
