package autoscale

import (
	"context"
	"sort"
	"time"

	"github.com/imamik/symphonyctl/internal/directory"
)

// AppDemand is the workload of one application.
type AppDemand struct {
	App     string
	Running int
	Pending int
	// Runtime is the average runtime of recently completed tasks, or the
	// default when there is no history.
	Runtime time.Duration
	Demand  int
}

// Tasks is the number of running and pending tasks.
func (d AppDemand) Tasks() int { return d.Running + d.Pending }

// Plan is the outcome of an autostart evaluation.
type Plan struct {
	Apps        []AppDemand
	TotalDemand int
	TotalSlots  int
	FreeSlots   int
	Requests    []directory.CapacityRequest
}

// Unmet is demand not covered by existing slots.
func (p *Plan) Unmet() int {
	return max(0, p.TotalDemand-p.TotalSlots)
}

// PlannerOptions configures a Planner.
type PlannerOptions struct {
	SlotType       string
	CoresPerSlot   int
	DefaultRuntime time.Duration
}

// Planner turns grid workload into capacity requests.
type Planner struct {
	grid Grid
	log  Logger
	opts PlannerOptions
}

// NewPlanner creates a Planner.
func NewPlanner(grid Grid, log Logger, opts PlannerOptions) *Planner {
	if opts.CoresPerSlot < 1 {
		opts.CoresPerSlot = 1
	}
	if opts.DefaultRuntime <= 0 {
		opts.DefaultRuntime = 300 * time.Second
	}
	if opts.SlotType == "" {
		opts.SlotType = "execute"
	}
	return &Planner{grid: grid, log: log, opts: opts}
}

// EstimateDemand returns how many slots tasks need to finish within an
// hour, at most one per task.
func EstimateDemand(tasks int, runtime time.Duration) int {
	if tasks <= 0 {
		return 0
	}
	work := time.Duration(tasks) * runtime
	return min(tasks, int((work+time.Hour-1)/time.Hour))
}

// AverageRuntime is the mean of runtimes, or def when there are none.
func AverageRuntime(runtimes []time.Duration, def time.Duration) time.Duration {
	if len(runtimes) == 0 {
		return def
	}
	var sum time.Duration
	for _, r := range runtimes {
		sum += r
	}
	return sum / time.Duration(len(runtimes))
}

// Evaluate computes demand for every enabled application.
func (p *Planner) Evaluate(ctx context.Context) (*Plan, error) {
	apps, err := p.grid.EnabledApps(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(apps)

	plan := &Plan{}
	for _, app := range apps {
		sessions, err := p.grid.OpenSessions(ctx, app)
		if err != nil {
			return nil, err
		}
		d := AppDemand{App: app}
		for _, s := range sessions {
			d.Running += s.Running
			d.Pending += s.Pending
		}

		runtimes, err := p.grid.RecentTaskRuntimes(ctx, app)
		if err != nil {
			return nil, err
		}
		d.Runtime = AverageRuntime(runtimes, p.opts.DefaultRuntime)
		d.Demand = EstimateDemand(d.Tasks(), d.Runtime)

		p.log.Printf("Demand for %s = %d with %d tasks (%d running, %d pending, avg runtime %v)",
			app, d.Demand, d.Tasks(), d.Running, d.Pending, d.Runtime)
		plan.Apps = append(plan.Apps, d)
		plan.TotalDemand += d.Demand
	}

	slots, err := p.grid.ComputeSlots(ctx)
	if err != nil {
		return nil, err
	}
	plan.TotalSlots, plan.FreeSlots = slots.Total, slots.Free
	p.log.Printf("Slots: %d free of %d, unmet demand = %d", slots.Free, slots.Total, plan.Unmet())

	plan.Requests = []directory.CapacityRequest{{
		NodeArray:   p.opts.SlotType,
		RequestCPUs: plan.TotalDemand * p.opts.CoresPerSlot,
	}}
	p.log.Printf("Requesting %d ideal %d-core slots of type %s",
		plan.TotalDemand, p.opts.CoresPerSlot, p.opts.SlotType)
	return plan, nil
}

// Autostart evaluates demand and forwards it to requester unless dryRun.
func (p *Planner) Autostart(ctx context.Context, clusterID string, requester directory.CapacityRequester, dryRun bool) (*Plan, error) {
	plan, err := p.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	if dryRun || requester == nil {
		return plan, nil
	}
	if err := requester.RequestCapacity(ctx, clusterID, plan.Requests); err != nil {
		return plan, err
	}
	return plan, nil
}
