package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/symphonyctl/internal/provisioning"
	"github.com/imamik/symphonyctl/internal/provisioning/account"
	"github.com/imamik/symphonyctl/internal/provisioning/discovery"
	"github.com/imamik/symphonyctl/internal/provisioning/egoconfig"
	"github.com/imamik/symphonyctl/internal/provisioning/hostfactory"
	"github.com/imamik/symphonyctl/internal/provisioning/register"
	"github.com/imamik/symphonyctl/internal/provisioning/schedule"
)

// newPhases returns the bootstrap phases in execution order.
// The node registers before discovery so a master can find itself.
var newPhases = func(opts *GlobalOptions) []provisioning.Phase {
	return []provisioning.Phase{
		provisioning.NewValidationPhase(),
		register.NewProvisioner(),
		discovery.NewProvisioner(),
		account.NewProvisioner(),
		egoconfig.NewProvisioner(),
		hostfactory.NewProvisioner(),
		schedule.NewProvisioner(schedule.WithConfigPath(opts.configFile())),
	}
}

// Bootstrap handles the bootstrap command.
//
// It loads the node configuration, opens the directory backend and runs
// every bootstrap phase within the bootstrap timeout. With a manual override
// an unavailable directory is not fatal; the node is simply not registered.
func Bootstrap(ctx context.Context, opts *GlobalOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	pCtx, err := newContext(ctx, cfg, "bootstrap")
	if err != nil {
		return err
	}
	limit := pCtx.Timeouts.BootstrapFor(cfg)
	if limit > pCtx.Timeouts.Bootstrap {
		pCtx.Observer.Printf("Warning: bootstrap timeout %s is shorter than the discovery budget; using %s",
			pCtx.Timeouts.Bootstrap, limit)
	}
	runCtx, cancel := context.WithTimeout(pCtx.Context, limit)
	defer cancel()
	pCtx.Context = runCtx

	backend, err := openBackend(pCtx)
	switch {
	case err == nil:
		pCtx.Directory = backend
		pCtx.Registrar = backend
	case cfg.ManualOverride() != nil:
		pCtx.Observer.Printf("Warning: %v; continuing with the manual override", err)
	default:
		return err
	}

	recorder := newRecorder(cfg)
	pCtx.Metrics = recorder

	pCtx.Observer.Printf("Bootstrapping %s (master=%t management=%t) in cluster %s",
		cfg.Node.Hostname, cfg.Node.IsMaster, cfg.Node.IsManagement, cfg.Cluster.ID)

	start := pCtx.Now()
	runErr := provisioning.RunPhases(pCtx, newPhases(opts))
	if recorder != nil {
		now := pCtx.Now()
		recorder.ObserveBootstrap(now.Sub(start), runErr, now)
		writeMetrics(pCtx, recorder, "bootstrap")
	}
	if runErr != nil {
		return fmt.Errorf("bootstrap failed: %w", runErr)
	}

	topo := pCtx.State.Topology
	pCtx.Observer.Printf("Node %s joined cluster %s (master %s, %d management hosts)",
		cfg.Node.Hostname, cfg.Cluster.Name, topo.MasterHost, len(topo.ManagementHosts))
	return nil
}
