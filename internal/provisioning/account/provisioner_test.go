package account

import (
	"context"
	"errors"
	"testing"

	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/symphonyctl/internal/config"
	"github.com/imamik/symphonyctl/internal/platform/files"
	"github.com/imamik/symphonyctl/internal/provisioning"
	testfx "github.com/imamik/symphonyctl/internal/testing"
)

const (
	getentGroup  = "getent group egoadmin"
	getentPasswd = "getent passwd egoadmin"
	groupadd     = "groupadd -g 61111 egoadmin"
	useradd      = "useradd -u 61111 -g egoadmin -d /home/egoadmin -s /bin/bash -m egoadmin"
)

func newContext(t *testing.T, node *testfx.NodeFixture, cfg *config.Config, runner *testfx.MockRunner) *provisioning.Context {
	t.Helper()
	logger, _ := logrustest.NewNullLogger()
	return provisioning.NewContext(context.Background(), cfg,
		provisioning.WithObserver(provisioning.NewConsoleObserver(logger)),
		provisioning.WithFiles(node.Store),
		provisioning.WithRunner(runner),
	)
}

func testProvisioner() *Provisioner {
	return &Provisioner{keyBits: 1024}
}

func TestProvision_CreatesAccount(t *testing.T) {
	t.Parallel()
	node := testfx.NewNodeFixture(t)
	runner := testfx.NewMockRunner().
		WithError(getentGroup, testfx.ExitError(getentGroup, 2)).
		WithError(getentPasswd, testfx.ExitError(getentPasswd, 2)).
		WithOutput(groupadd, "").
		WithOutput(useradd, "")
	ctx := newContext(t, node, testfx.NewConfigBuilder(node.Root).Build(), runner)

	require.NoError(t, testProvisioner().Provision(ctx))

	assert.Equal(t, []string{getentGroup, groupadd, getentPasswd, useradd}, runner.Ran())
	runner.AssertExpectations(t)

	assert.Equal(t, 0o755, int(node.Mode(t, "/home/egoadmin")))
	assert.Equal(t, 0o700, int(node.Mode(t, "/home/egoadmin/.ssh")))
	assert.Equal(t, 0o600, int(node.Mode(t, "/home/egoadmin/.ssh/id_rsa")))
	assert.Equal(t, 0o644, int(node.Mode(t, "/home/egoadmin/.ssh/authorized_keys")))

	pub := node.ReadFile(t, "/home/egoadmin/.ssh/id_rsa.pub")
	assert.Contains(t, pub, "egoadmin@e1.example.com")
	assert.Equal(t, pub, node.ReadFile(t, "/home/egoadmin/.ssh/authorized_keys"))
	assert.Contains(t, node.ReadFile(t, "/home/egoadmin/.ssh/id_rsa"), "RSA PRIVATE KEY")
	assert.NotEmpty(t, ctx.State.AdminKeyFingerprint)

	owner, ok := node.OwnerOf("/home/egoadmin/.ssh/id_rsa")
	require.True(t, ok)
	assert.Equal(t, testfx.Owner{UID: 61111, GID: 61111}, owner)

	limits := node.ReadFile(t, "/etc/security/limits.d/egoadmin.conf")
	assert.Contains(t, limits, "egoadmin hard nofile 65536")
	owner, ok = node.OwnerOf("/etc/security/limits.d/egoadmin.conf")
	require.True(t, ok)
	assert.Equal(t, testfx.Owner{UID: 0, GID: 0}, owner)
}

func TestProvision_ExistingAccountAndKey(t *testing.T) {
	t.Parallel()
	node := testfx.NewNodeFixture(t)
	node.WriteFile(t, "/home/egoadmin/.ssh/id_rsa", "existing", 0o600)
	node.WriteFile(t, "/home/egoadmin/.ssh/authorized_keys", "ssh-ed25519 AAAA other\n", 0o644)
	runner := testfx.NewMockRunner().
		WithOutput(getentGroup, "egoadmin:x:61111:").
		WithOutput(getentPasswd, "egoadmin:x:61111:61111::/home/egoadmin:/bin/bash")
	ctx := newContext(t, node, testfx.NewConfigBuilder(node.Root).Build(), runner)

	require.NoError(t, testProvisioner().Provision(ctx))

	assert.Equal(t, []string{getentGroup, getentPasswd}, runner.Ran())
	assert.Equal(t, "existing", node.ReadFile(t, "/home/egoadmin/.ssh/id_rsa"))
	assert.Equal(t, "ssh-ed25519 AAAA other\n", node.ReadFile(t, "/home/egoadmin/.ssh/authorized_keys"))
	assert.Empty(t, ctx.State.AdminKeyFingerprint)
}

func TestProvision_DryRunSkipsCommands(t *testing.T) {
	t.Parallel()
	node := testfx.NewNodeFixture(t, files.WithDryRun(true))
	runner := testfx.NewMockRunner().
		WithError(getentGroup, testfx.ExitError(getentGroup, 2)).
		WithError(getentPasswd, testfx.ExitError(getentPasswd, 2))
	cfg := testfx.NewConfigBuilder(node.Root).WithDryRun(true).Build()
	ctx := newContext(t, node, cfg, runner)

	require.NoError(t, testProvisioner().Provision(ctx))
	assert.Equal(t, []string{getentGroup, getentPasswd}, runner.Ran())
	assert.Contains(t, ctx.State.Changed, node.Path("/home/egoadmin/.ssh/id_rsa"))
	assert.False(t, node.Exists("/home/egoadmin"))
}

func TestProvision_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		runner  func() *testfx.MockRunner
		wantErr string
	}{
		{
			name: "getent fails",
			runner: func() *testfx.MockRunner {
				return testfx.NewMockRunner().WithError(getentGroup, testfx.ExitError(getentGroup, 1))
			},
			wantErr: "failed to look up group egoadmin",
		},
		{
			name: "groupadd fails",
			runner: func() *testfx.MockRunner {
				return testfx.NewMockRunner().
					WithError(getentGroup, testfx.ExitError(getentGroup, 2)).
					WithError(groupadd, errors.New("groupadd: GID '61111' already exists"))
			},
			wantErr: "failed to create group egoadmin",
		},
		{
			name: "useradd fails",
			runner: func() *testfx.MockRunner {
				return testfx.NewMockRunner().
					WithOutput(getentGroup, "").
					WithError(getentPasswd, testfx.ExitError(getentPasswd, 2)).
					WithError(useradd, testfx.ExitError(useradd, 9))
			},
			wantErr: "failed to create user egoadmin",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			node := testfx.NewNodeFixture(t)
			ctx := newContext(t, node, testfx.NewConfigBuilder(node.Root).Build(), tt.runner())
			err := testProvisioner().Provision(ctx)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.False(t, node.Exists("/home/egoadmin"))
		})
	}
}

func TestName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "account", NewProvisioner().Name())
}
