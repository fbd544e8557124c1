package provisioning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/symphonyctl/internal/config"
	testfx "github.com/imamik/symphonyctl/internal/testing"
	"github.com/imamik/symphonyctl/internal/topology"
	"github.com/imamik/symphonyctl/internal/util/prerequisites"
)

var emptyDirectory = topology.DirectoryFunc(func(context.Context, string) ([]topology.ClusterMember, error) {
	return nil, nil
})

func allTools(tools []prerequisites.Tool) *prerequisites.CheckResults {
	results := &prerequisites.CheckResults{}
	for _, tool := range tools {
		results.Results = append(results.Results, prerequisites.CheckResult{Tool: tool, Found: true, Path: "/usr/bin/" + tool.Name})
	}
	return results
}

func missingTools(names ...string) func([]prerequisites.Tool) *prerequisites.CheckResults {
	return func(tools []prerequisites.Tool) *prerequisites.CheckResults {
		results := allTools(tools)
		for _, tool := range tools {
			for _, n := range names {
				if tool.Name == n {
					results.Missing = append(results.Missing, tool)
				}
			}
		}
		return results
	}
}

func validationContext(t *testing.T, cfg *config.Config, opts ...Option) (*Context, *MockObserver) {
	t.Helper()
	observer := NewMockObserver()
	base := []Option{WithObserver(observer), WithDirectory(emptyDirectory)}
	return NewContext(context.Background(), cfg, append(base, opts...)...), observer
}

func warnings(observer *MockObserver) []string {
	var out []string
	for _, e := range observer.events {
		if e.Type == EventValidationWarning {
			out = append(out, e.Resource)
		}
	}
	return out
}

func TestValidationPhase_Passes(t *testing.T) {
	t.Parallel()
	ctx, observer := validationContext(t, testfx.MasterConfig(t.TempDir()))
	phase := &ValidationPhase{check: allTools}

	require.NoError(t, phase.Provision(ctx))
	assert.Empty(t, warnings(observer))
	assert.Equal(t, "validation", phase.Name())
}

func TestValidationPhase_Warnings(t *testing.T) {
	t.Parallel()
	cfg := testfx.NewConfigBuilder(t.TempDir()).
		WithHostname("m1.example.com").
		WithMaster(true).
		WithManagement(false).
		WithSharedInstall(true).
		WithHostFactory(true).
		WithAutostop(true).
		WithOverride("m1.example.com", "m1.example.com").
		Build()
	cfg.Symphony.SharedFSMountpoint = ""
	cfg.Symphony.LicenseFile = ""
	cfg.Symphony.DisableSSL = true

	ctx, observer := validationContext(t, cfg, WithDirectory(nil))
	require.NoError(t, (&ValidationPhase{check: allTools}).Provision(ctx))

	assert.ElementsMatch(t, []string{
		"override",
		"node.is_management",
		"symphony.shared_fs_mountpoint",
		"symphony.license_file",
		"autoscale.stop_enabled",
		"symphony.disable_ssl",
	}, warnings(observer))
}

func TestValidationPhase_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		opts    []Option
		check   func([]prerequisites.Tool) *prerequisites.CheckResults
		wantErr string
	}{
		{
			name:    "invalid config",
			mutate:  func(c *config.Config) { c.Symphony.Admin.User = "root" },
			check:   allTools,
			wantErr: "symphony.admin.user",
		},
		{
			name:    "no directory",
			opts:    []Option{WithDirectory(nil)},
			check:   allTools,
			wantErr: "no cluster directory available",
		},
		{
			name:    "missing useradd",
			check:   missingTools("useradd"),
			wantErr: "useradd not found",
		},
		{
			name:    "missing egosh with HostFactory",
			mutate:  func(c *config.Config) { c.Symphony.HostFactory.Enabled = true },
			check:   missingTools("egosh"),
			wantErr: "egosh not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := testfx.MasterConfig(t.TempDir())
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			ctx, _ := validationContext(t, cfg, tt.opts...)
			err := (&ValidationPhase{check: tt.check}).Provision(ctx)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "configuration validation failed")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidationPhase_DryRunToleratesMissingTools(t *testing.T) {
	t.Parallel()
	cfg := testfx.NewConfigBuilder(t.TempDir()).WithDryRun(true).Build()
	ctx, observer := validationContext(t, cfg)

	require.NoError(t, (&ValidationPhase{check: missingTools("groupadd")}).Provision(ctx))
	assert.Equal(t, []string{"PATH"}, warnings(observer))
}

func TestValidationPhase_EgoshOnlyForHostFactoryMaster(t *testing.T) {
	t.Parallel()
	var seen []string
	record := func(tools []prerequisites.Tool) *prerequisites.CheckResults {
		for _, tool := range tools {
			seen = append(seen, tool.Name)
		}
		return allTools(tools)
	}

	cfg := testfx.NewConfigBuilder(t.TempDir()).WithHostFactory(true).Build()
	ctx, _ := validationContext(t, cfg)
	require.NoError(t, (&ValidationPhase{check: record}).Provision(ctx))
	assert.Equal(t, []string{"getent", "groupadd", "useradd"}, seen)
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	ve := ValidationError{Field: "node.hostname", Message: "is required", Severity: "error"}
	assert.Equal(t, "[error] node.hostname: is required", ve.Error())
	assert.True(t, ve.IsError())
	assert.False(t, ValidationError{Severity: "warning"}.IsError())
}

func TestNewValidationPhase(t *testing.T) {
	t.Parallel()
	assert.NotNil(t, NewValidationPhase().check)
}
