package autoscale

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/imamik/symphonyctl/internal/directory"
	"github.com/imamik/symphonyctl/internal/platform/ego"
)

type fakeGrid struct {
	mu       sync.Mutex
	statuses []ego.HostStatus
	apps     []string
	sessions map[string][]ego.Session
	runtimes map[string][]time.Duration
	slots    ego.Slots
	failOn   map[string]error
	ops      []string
}

func (g *fakeGrid) record(op string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ops = append(g.ops, op)
	return g.failOn[op]
}

func (g *fakeGrid) ResourceStatus(context.Context) ([]ego.HostStatus, error) {
	return g.statuses, g.record("view")
}

func (g *fakeGrid) CloseHost(_ context.Context, host string, reclaim bool) error {
	return g.record(fmt.Sprintf("close %s reclaim=%t", host, reclaim))
}

func (g *fakeGrid) RemoveHost(_ context.Context, host string) error {
	return g.record("remove " + host)
}

func (g *fakeGrid) EnabledApps(context.Context) ([]string, error) {
	return g.apps, g.record("apps")
}

func (g *fakeGrid) OpenSessions(_ context.Context, app string) ([]ego.Session, error) {
	return g.sessions[app], g.record("sessions " + app)
}

func (g *fakeGrid) RecentTaskRuntimes(_ context.Context, app string) ([]time.Duration, error) {
	return g.runtimes[app], g.record("runtimes " + app)
}

func (g *fakeGrid) ComputeSlots(context.Context) (ego.Slots, error) {
	return g.slots, g.record("rg")
}

type fakeRequester struct {
	clusterID string
	requests  []directory.CapacityRequest
	err       error
}

func (r *fakeRequester) RequestCapacity(_ context.Context, clusterID string, requests []directory.CapacityRequest) error {
	r.clusterID = clusterID
	r.requests = requests
	return r.err
}

type discardLogger struct{}

func (discardLogger) Printf(string, ...any) {}
