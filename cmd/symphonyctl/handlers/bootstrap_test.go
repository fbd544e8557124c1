package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/symphonyctl/internal/config"
	"github.com/imamik/symphonyctl/internal/directory"
	"github.com/imamik/symphonyctl/internal/provisioning"
	testfx "github.com/imamik/symphonyctl/internal/testing"
	"github.com/imamik/symphonyctl/internal/topology"
)

type funcPhase struct {
	name string
	fn   func(ctx *provisioning.Context) error
}

func (p funcPhase) Name() string {
	return p.name
}

func (p funcPhase) Provision(ctx *provisioning.Context) error {
	return p.fn(ctx)
}

func metricsConfig(root string) *config.Config {
	return testfx.NewConfigBuilder(root).
		WithHostname("m1.example.com").
		WithMaster(true).
		WithMetrics("/var/lib/node_exporter").
		Build()
}

func TestBootstrap_RunsPhases(t *testing.T) {
	env := newTestEnv(t, metricsConfig)
	var seen *provisioning.Context
	newPhases = func(*GlobalOptions) []provisioning.Phase {
		return []provisioning.Phase{funcPhase{"check", func(ctx *provisioning.Context) error {
			seen = ctx
			ctx.State.Topology = topology.ParseTopologyFiles("m1.example.com", "m1.example.com")
			return nil
		}}}
	}

	require.NoError(t, Bootstrap(context.Background(), &GlobalOptions{}))

	require.NotNil(t, seen)
	assert.Equal(t, env.backend, seen.Directory)
	assert.Equal(t, env.backend, seen.Registrar)
	assert.NotNil(t, seen.Metrics)
	_, hasDeadline := seen.Deadline()
	assert.True(t, hasDeadline)

	logs := env.logs.String()
	assert.Contains(t, logs, "run_id=run-1")
	assert.Contains(t, logs, "command=bootstrap")
	assert.Contains(t, logs, "node=m1.example.com")
	assert.Contains(t, logs, "Node m1.example.com joined cluster grid1")

	prom := env.node.ReadFile(t, "/var/lib/node_exporter/symphony_bootstrap.prom")
	assert.Contains(t, prom, "symphonyctl_bootstrap_success 1")
	assert.Contains(t, prom, `symphonyctl_bootstrap_phase_duration_seconds{phase="check"}`)
}

func TestBootstrap_PhaseFailure(t *testing.T) {
	env := newTestEnv(t, metricsConfig)
	newPhases = func(*GlobalOptions) []provisioning.Phase {
		return []provisioning.Phase{funcPhase{"egoconfig", func(*provisioning.Context) error {
			return errors.New("disk full")
		}}}
	}

	err := Bootstrap(context.Background(), &GlobalOptions{})
	require.Error(t, err)
	assert.Equal(t, "bootstrap failed: egoconfig phase failed: disk full", err.Error())

	prom := env.node.ReadFile(t, "/var/lib/node_exporter/symphony_bootstrap.prom")
	assert.Contains(t, prom, "symphonyctl_bootstrap_success 0")
}

func TestBootstrap_DirectoryUnavailable(t *testing.T) {
	boom := errors.New("no credentials")

	t.Run("without override", func(t *testing.T) {
		newTestEnv(t, testfx.MasterConfig)
		openDirectory = func(context.Context, config.DiscoveryConfig, directory.Logger) (directory.Backend, error) {
			return nil, boom
		}
		newPhases = func(*GlobalOptions) []provisioning.Phase {
			t.Fatal("no phase may run without a directory")
			return nil
		}

		err := Bootstrap(context.Background(), &GlobalOptions{})
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "failed to open static directory")
	})

	t.Run("with override", func(t *testing.T) {
		env := newTestEnv(t, func(root string) *config.Config {
			return testfx.NewConfigBuilder(root).WithOverride("m1.example.com", "m1.example.com").Build()
		})
		openDirectory = func(context.Context, config.DiscoveryConfig, directory.Logger) (directory.Backend, error) {
			return nil, boom
		}
		ran := false
		newPhases = func(*GlobalOptions) []provisioning.Phase {
			return []provisioning.Phase{funcPhase{"check", func(ctx *provisioning.Context) error {
				ran = true
				assert.Nil(t, ctx.Directory)
				assert.Nil(t, ctx.Registrar)
				return nil
			}}}
		}

		require.NoError(t, Bootstrap(context.Background(), &GlobalOptions{}))
		assert.True(t, ran)
		assert.Contains(t, env.logs.String(), "continuing with the manual override")
	})
}

// TestBootstrap_DryRunPipeline runs every real phase against a dry-run
// store: the topology resolves but nothing lands on disk.
func TestBootstrap_DryRunPipeline(t *testing.T) {
	env := newTestEnv(t, func(root string) *config.Config {
		return testfx.NewConfigBuilder(root).WithDryRun(true).Build()
	})
	env.backend.members = []topology.ClusterMember{
		{ClusterID: "c1", Hostname: "m1.example.com", IsMaster: true, IsManagement: true},
		{ClusterID: "c1", Hostname: "m2.example.com", IsManagement: true},
	}
	runner := testfx.NewMockRunner().
		WithError("getent group egoadmin", testfx.ExitError("getent group egoadmin", 2)).
		WithError("getent passwd egoadmin", testfx.ExitError("getent passwd egoadmin", 2))
	contextOptions = func() []provisioning.Option {
		return []provisioning.Option{
			provisioning.WithRunner(runner),
			provisioning.WithSleeper(testfx.NoSleep),
		}
	}

	require.NoError(t, Bootstrap(context.Background(), &GlobalOptions{ConfigPath: "symphonyctl.yaml"}))

	assert.Empty(t, env.backend.registered)
	entries, err := os.ReadDir(env.node.Root)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Contains(t, env.logs.String(), "master m1.example.com, 2 management hosts")
}

func TestBootstrap_ConfigError(t *testing.T) {
	saveAndRestoreFactories(t)
	loadConfig = func(*GlobalOptions) (*config.Config, error) {
		return nil, &topology.ConfigError{Field: "cluster.id", Message: "is required"}
	}

	err := Bootstrap(context.Background(), &GlobalOptions{})
	require.Error(t, err)
	assert.True(t, topology.IsConfigError(err))
}

func TestDefaultPhases(t *testing.T) {
	phases := newPhases(&GlobalOptions{ConfigPath: "/etc/symphonyctl/site.yaml"})
	names := make([]string, 0, len(phases))
	for _, p := range phases {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"validation", "register", "discovery", "account", "egoconfig", "hostfactory", "schedule"}, names)
}

func TestGlobalOptions_ConfigFile(t *testing.T) {
	tests := []struct {
		name string
		opts GlobalOptions
		want string
	}{
		{"explicit", GlobalOptions{ConfigPath: "/srv/site.yaml"}, "/srv/site.yaml"},
		{"default", GlobalOptions{}, "/etc/symphonyctl/symphonyctl.yaml"},
		{"viper", GlobalOptions{Viper: viperWithFile("/opt/site.yaml")}, "/opt/site.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.configFile())
		})
	}

	rel := GlobalOptions{ConfigPath: "site.yaml"}
	assert.True(t, filepath.IsAbs(rel.configFile()))
}

func viperWithFile(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	return v
}
