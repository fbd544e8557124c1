package handlers

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/imamik/symphonyctl/internal/autoscale"
	"github.com/imamik/symphonyctl/internal/config"
	"github.com/imamik/symphonyctl/internal/directory"
	"github.com/imamik/symphonyctl/internal/platform/ego"
	"github.com/imamik/symphonyctl/internal/provisioning"
	testfx "github.com/imamik/symphonyctl/internal/testing"
	"github.com/imamik/symphonyctl/internal/topology"
)

// saveAndRestoreFactories resets every factory variable after the test.
// Tests that replace factories must not run in parallel.
func saveAndRestoreFactories(t *testing.T) {
	t.Helper()
	origLoadConfig := loadConfig
	origOpenDirectory := openDirectory
	origContextOptions := contextOptions
	origLogOutput := logOutput
	origStdout := stdout
	origIsTTY := isTTY
	origNewRunID := newRunID
	origNewPhases := newPhases
	origNewGrid := newGrid
	origLoadTopology := loadTopology

	t.Cleanup(func() {
		loadConfig = origLoadConfig
		openDirectory = origOpenDirectory
		contextOptions = origContextOptions
		logOutput = origLogOutput
		stdout = origStdout
		isTTY = origIsTTY
		newRunID = origNewRunID
		newPhases = origNewPhases
		newGrid = origNewGrid
		loadTopology = origLoadTopology
	})
}

// testEnv replaces the factories with in-memory fakes and returns the
// captured output.
type testEnv struct {
	node    *testfx.NodeFixture
	backend *fakeBackend
	grid    *fakeGrid
	logs    *bytes.Buffer
	out     *bytes.Buffer
}

func newTestEnv(t *testing.T, cfg func(root string) *config.Config) *testEnv {
	t.Helper()
	saveAndRestoreFactories(t)

	env := &testEnv{
		node:    testfx.NewNodeFixture(t),
		backend: &fakeBackend{},
		grid:    &fakeGrid{},
		logs:    &bytes.Buffer{},
		out:     &bytes.Buffer{},
	}
	loadConfig = func(*GlobalOptions) (*config.Config, error) { return cfg(env.node.Root), nil }
	openDirectory = func(context.Context, config.DiscoveryConfig, directory.Logger) (directory.Backend, error) {
		return env.backend, nil
	}
	contextOptions = func() []provisioning.Option {
		return []provisioning.Option{
			provisioning.WithFiles(env.node.Store),
			provisioning.WithSleeper(testfx.NoSleep),
		}
	}
	newGrid = func(*provisioning.Context) autoscale.Grid { return env.grid }
	logOutput = env.logs
	stdout = env.out
	isTTY = func() bool { return false }
	newRunID = func() string { return "run-1" }
	return env
}

// fakeBackend is a directory backend that supports every optional operation.
type fakeBackend struct {
	mu           sync.Mutex
	members      []topology.ClusterMember
	registered   []topology.ClusterMember
	deregistered []string
	requests     []directory.CapacityRequest
	queryErr     error
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Query(_ context.Context, clusterID string) ([]topology.ClusterMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var out []topology.ClusterMember
	for _, m := range append(append([]topology.ClusterMember(nil), f.members...), f.registered...) {
		if m.ClusterID == clusterID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeBackend) Register(_ context.Context, m topology.ClusterMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, m)
	return nil
}

func (f *fakeBackend) Deregister(_ context.Context, _, hostname string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deregistered = append(f.deregistered, hostname)
	return nil
}

func (f *fakeBackend) RequestCapacity(_ context.Context, _ string, requests []directory.CapacityRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, requests...)
	return nil
}

// queryOnlyBackend supports neither removal nor capacity requests.
type queryOnlyBackend struct{ inner *fakeBackend }

func (q queryOnlyBackend) Query(ctx context.Context, clusterID string) ([]topology.ClusterMember, error) {
	return q.inner.Query(ctx, clusterID)
}

func (q queryOnlyBackend) Register(ctx context.Context, m topology.ClusterMember) error {
	return q.inner.Register(ctx, m)
}

func (q queryOnlyBackend) Name() string { return "readonly" }

// fakeGrid is an in-memory EGO cluster.
type fakeGrid struct {
	mu       sync.Mutex
	statuses []ego.HostStatus
	apps     map[string][]ego.Session
	runtimes map[string][]time.Duration
	slots    ego.Slots
	ops      []string
}

func (g *fakeGrid) record(op string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ops = append(g.ops, op)
}

func (g *fakeGrid) ResourceStatus(context.Context) ([]ego.HostStatus, error) {
	return g.statuses, nil
}

func (g *fakeGrid) CloseHost(_ context.Context, host string, reclaim bool) error {
	if reclaim {
		g.record("close -reclaim " + host)
		return nil
	}
	g.record("close " + host)
	return nil
}

func (g *fakeGrid) RemoveHost(_ context.Context, host string) error {
	g.record("remove " + host)
	return nil
}

func (g *fakeGrid) EnabledApps(context.Context) ([]string, error) {
	apps := make([]string, 0, len(g.apps))
	for app := range g.apps {
		apps = append(apps, app)
	}
	return apps, nil
}

func (g *fakeGrid) OpenSessions(_ context.Context, app string) ([]ego.Session, error) {
	return g.apps[app], nil
}

func (g *fakeGrid) RecentTaskRuntimes(_ context.Context, app string) ([]time.Duration, error) {
	return g.runtimes[app], nil
}

func (g *fakeGrid) ComputeSlots(context.Context) (ego.Slots, error) {
	return g.slots, nil
}
