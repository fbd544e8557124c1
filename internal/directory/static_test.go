package directory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/symphonyctl/internal/topology"
)

const membersYAML = `
members:
  - clusterId: c1
    hostname: m1.example
    isMaster: true
    isManagement: true
  - clusterId: c1
    hostname: e1.example
  - clusterId: c2
    hostname: other.example
    isMaster: true
  - hostname: legacy.example
    isManagement: true
`

func TestStatic_Query(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "members.yaml")
	require.NoError(t, os.WriteFile(path, []byte(membersYAML), 0o644))

	members, err := NewStatic(path).Query(context.Background(), "c1")
	require.NoError(t, err)

	require.Len(t, members, 3)
	assert.Equal(t, topology.ClusterMember{ClusterID: "c1", Hostname: "m1.example", IsMaster: true, IsManagement: true}, members[0])
	assert.Equal(t, "e1.example", members[1].Hostname)
	assert.Equal(t, "legacy.example", members[2].Hostname, "entries without cluster id belong to every cluster")
}

func TestStatic_QueryErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := NewStatic(filepath.Join(dir, "absent.yaml")).Query(context.Background(), "c1")
	assert.ErrorContains(t, err, "failed to read member file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("members: {not: [a list"), 0o644))
	_, err = NewStatic(bad).Query(context.Background(), "c1")
	assert.ErrorContains(t, err, "failed to parse member file")
}

func TestStatic_RegisterAndDeregister(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "shared", "members.yaml")
	dir := NewStatic(path)
	ctx := context.Background()

	require.NoError(t, dir.Register(ctx, topology.ClusterMember{ClusterID: "c1", Hostname: "m2.example", IsManagement: true}))
	require.NoError(t, dir.Register(ctx, topology.ClusterMember{ClusterID: "c1", Hostname: "m1.example", IsMaster: true}))
	require.NoError(t, dir.Register(ctx, topology.ClusterMember{ClusterID: "c1", Hostname: "m2.example", IsManagement: true, IPv4: "10.0.0.2"}))

	members, err := dir.Query(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "m1.example", members[0].Hostname)
	assert.Equal(t, "10.0.0.2", members[1].IPv4)

	require.NoError(t, dir.Deregister(ctx, "c1", "m1.example"))
	members, err = dir.Query(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "m2.example", members[0].Hostname)
}
