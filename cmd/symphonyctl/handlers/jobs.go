package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/symphonyctl/internal/autoscale"
	"github.com/imamik/symphonyctl/internal/directory"
	"github.com/imamik/symphonyctl/internal/provisioning"
	"github.com/imamik/symphonyctl/internal/topology"
	"github.com/imamik/symphonyctl/internal/ui/style"
	"github.com/imamik/symphonyctl/internal/util/naming"
)

// newGrid returns the EGO view the scheduled jobs work on.
var newGrid = func(pCtx *provisioning.Context) autoscale.Grid {
	return pCtx.Ego()
}

// Autostart handles the autostart job.
func Autostart(ctx context.Context, opts *GlobalOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	pCtx, err := newContext(ctx, cfg, "autostart")
	if err != nil {
		return err
	}

	var requester directory.CapacityRequester
	if backend, err := openBackend(pCtx); err != nil {
		pCtx.Observer.Printf("Warning: %v; demand is only logged", err)
	} else if r, ok := backend.(directory.CapacityRequester); ok {
		requester = r
	} else {
		pCtx.Observer.Printf("The %s directory does not accept capacity requests; demand is only logged", backend.Name())
	}

	planner := autoscale.NewPlanner(newGrid(pCtx), pCtx.Observer, autoscale.PlannerOptions{
		SlotType:       cfg.Autoscale.SlotType,
		CoresPerSlot:   cfg.Autoscale.CoresPerSlot,
		DefaultRuntime: cfg.Autoscale.DefaultTaskRuntime,
	})
	plan, err := planner.Autostart(pCtx, cfg.Cluster.ID, requester, cfg.DryRun)
	if plan != nil {
		if recorder := newRecorder(cfg); recorder != nil {
			demand := make(map[string]int, len(plan.Apps))
			for _, app := range plan.Apps {
				demand[app.App] = app.Demand
			}
			recorder.ObserveAutostart(demand, plan.Unmet(), plan.TotalSlots, plan.FreeSlots)
			writeMetrics(pCtx, recorder, "autostart")
		}
	}
	if err != nil {
		return fmt.Errorf("autostart failed: %w", err)
	}
	return nil
}

// Cleanup handles the cleanup job. Removed hosts are also dropped from the
// directory when the backend supports it.
func Cleanup(ctx context.Context, opts *GlobalOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	pCtx, err := newContext(ctx, cfg, "cleanup")
	if err != nil {
		return err
	}

	var onRemoved autoscale.HostRemovedFunc
	if backend, err := openBackend(pCtx); err != nil {
		pCtx.Observer.Printf("Warning: %v; removed hosts stay registered", err)
	} else if dereg, ok := backend.(directory.Deregisterer); ok {
		onRemoved = func(ctx context.Context, host string) error {
			name, err := directory.MemberName(ctx, backend, cfg.Cluster.ID, host)
			if err != nil {
				return err
			}
			return dereg.Deregister(ctx, cfg.Cluster.ID, name)
		}
	}

	res, err := autoscale.Cleanup(pCtx, newGrid(pCtx), pCtx.Observer, cfg.DryRun, onRemoved)
	if res != nil {
		if isTTY() {
			fmt.Fprint(stdout, style.Hosts(res.Statuses))
		}
		if recorder := newRecorder(cfg); recorder != nil {
			recorder.ObserveCleanup(len(res.Removed))
			writeMetrics(pCtx, recorder, "cleanup")
		}
	}
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	return nil
}

// Autostop handles the autostop job. It exits quietly when autostop is
// disabled or HostFactory manages the cluster. Management nodes track the
// idle clock but are never retired.
func Autostop(ctx context.Context, opts *GlobalOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if !cfg.Autoscale.StopEnabled {
		return nil
	}
	pCtx, err := newContext(ctx, cfg, "autostop")
	if err != nil {
		return err
	}
	if cfg.Symphony.HostFactory.Enabled {
		pCtx.Observer.Printf("HostFactory manages the cluster, nothing to do")
		return nil
	}

	grid := newGrid(pCtx)
	statePath := naming.AutostopState(pCtx.Path(cfg.Node.BootstrapDir), cfg.Symphony.AppName)
	tracker := autoscale.NewIdleTracker(grid, pCtx.Files, statePath, autoscale.IdleOptions{
		AfterJobs:  cfg.Autoscale.IdleTimeAfterJobs,
		BeforeJobs: cfg.Autoscale.IdleTimeBeforeJobs,
	})
	decision, err := tracker.Evaluate(pCtx)
	if err != nil {
		return fmt.Errorf("autostop failed: %w", err)
	}
	if recorder := newRecorder(cfg); recorder != nil {
		recorder.ObserveAutostop(decision.IdleFor, decision.Stop)
		writeMetrics(pCtx, recorder, "autostop")
	}

	if !decision.Stop {
		pCtx.Observer.Printf("%d tasks, idle for %v of %v", decision.Tasks, decision.IdleFor, decision.Threshold)
		return nil
	}
	if cfg.Node.IsMaster || cfg.Node.IsManagement {
		pCtx.Observer.Printf("Grid idle for %v, management nodes are not retired", decision.IdleFor)
		return nil
	}
	return retire(pCtx, grid)
}

// retire closes this host in EGO so no new work lands on it and removes it
// from the directory.
func retire(pCtx *provisioning.Context, grid autoscale.Grid) error {
	cfg := pCtx.Config
	host := topology.ShortName(cfg.Node.Hostname)
	if cfg.DryRun {
		pCtx.Observer.Printf("Dry run, would retire %s", host)
		return nil
	}

	pCtx.Observer.Printf("Grid idle, retiring %s", host)
	if err := grid.CloseHost(pCtx, host, true); err != nil {
		return fmt.Errorf("autostop failed: %w", err)
	}

	backend, err := openBackend(pCtx)
	if err != nil {
		return err
	}
	if dereg, ok := backend.(directory.Deregisterer); ok {
		name, err := directory.MemberName(pCtx, backend, cfg.Cluster.ID, cfg.Node.Hostname)
		if err != nil {
			return err
		}
		if err := dereg.Deregister(pCtx, cfg.Cluster.ID, name); err != nil {
			return fmt.Errorf("failed to deregister %s: %w", name, err)
		}
	}
	return nil
}
