package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/symphonyctl/internal/directory"
	"github.com/imamik/symphonyctl/internal/provisioning/register"
)

// Register handles the register command. With remove the node's record is
// deleted from backends that support it.
func Register(ctx context.Context, opts *GlobalOptions, remove bool) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	pCtx, err := newContext(ctx, cfg, "register")
	if err != nil {
		return err
	}
	backend, err := openBackend(pCtx)
	if err != nil {
		return err
	}

	if !remove {
		pCtx.Registrar = backend
		return register.NewProvisioner().Provision(pCtx)
	}

	dereg, ok := backend.(directory.Deregisterer)
	if !ok {
		return fmt.Errorf("%s directory cannot remove members: %w", backend.Name(), directory.ErrUnsupported)
	}
	if cfg.DryRun {
		pCtx.Observer.Printf("Dry run, would remove %s from the %s directory", cfg.Node.Hostname, backend.Name())
		return nil
	}
	if err := dereg.Deregister(pCtx, cfg.Cluster.ID, cfg.Node.Hostname); err != nil {
		return fmt.Errorf("failed to deregister %s: %w", cfg.Node.Hostname, err)
	}
	pCtx.Observer.Printf("Removed %s from the %s directory", cfg.Node.Hostname, backend.Name())
	return nil
}
