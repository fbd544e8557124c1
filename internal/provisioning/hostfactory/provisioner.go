package hostfactory

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"

	"github.com/imamik/symphonyctl/internal/platform/ego"
	"github.com/imamik/symphonyctl/internal/platform/files"
	"github.com/imamik/symphonyctl/internal/provisioning"
	"github.com/imamik/symphonyctl/internal/render"
	"github.com/imamik/symphonyctl/internal/util/naming"
	"github.com/imamik/symphonyctl/internal/util/retry"
)

const phase = "hostfactory"

// Provisioner writes the HostFactory configuration on the master.
type Provisioner struct{}

// NewProvisioner creates a new HostFactory provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	cfg := ctx.Config
	if !cfg.Node.IsMaster || !cfg.Symphony.HostFactory.Enabled {
		provisioning.LogResourceSkipped(ctx.Observer, phase, "service", ego.HostFactoryService, "only the master runs HostFactory")
		return nil
	}

	changed, err := p.writeConf(ctx)
	if err != nil {
		return err
	}
	if !changed {
		provisioning.LogResource(ctx.Observer, phase, "service", ego.HostFactoryService, false)
		return nil
	}
	if cfg.DryRun {
		ctx.Observer.Printf("[%s] dry run, would restart %s", phase, ego.HostFactoryService)
		return nil
	}
	return p.restart(ctx)
}

// writeConf renders the conf tree. Files that already mention the provider
// are treated as configured and left alone.
func (p *Provisioner) writeConf(ctx *provisioning.Context) (bool, error) {
	cfg := ctx.Config
	admin := cfg.Symphony.Admin.User
	confDir := naming.HostFactoryConfDir(ctx.Path(cfg.Symphony.EgoTop))

	for _, dir := range render.HostFactoryDirs(cfg.Symphony.HostFactory.Provider) {
		path := filepath.Join(confDir, dir)
		created, err := ctx.Files.EnsureDir(path, 0o755, admin, admin)
		if err != nil {
			return false, fmt.Errorf("failed to prepare %s: %w", path, err)
		}
		ctx.State.MarkChanged(path, created)
	}

	hfFiles, err := render.HostFactory(render.NewData(cfg, ctx.State.Topology))
	if err != nil {
		return false, err
	}

	anyChanged := false
	for _, f := range hfFiles {
		spec := files.Spec{
			Path:    filepath.Join(confDir, f.Path),
			Content: f.Content,
			Mode:    0o644,
			Owner:   admin,
			Group:   admin,
		}

		var changed bool
		if f.CreateOnly {
			changed, err = ctx.Files.CreateIfMissing(spec)
		} else {
			configured, markerErr := hasMarker(spec.Path, f.Marker)
			if markerErr != nil {
				return false, markerErr
			}
			if configured {
				provisioning.LogResourceSkipped(ctx.Observer, phase, "file", spec.Path, "already configured for "+f.Marker)
				continue
			}
			changed, err = ctx.Files.Replace(spec)
		}
		if err != nil {
			return false, fmt.Errorf("failed to write %s: %w", spec.Path, err)
		}

		ctx.State.MarkChanged(spec.Path, changed)
		provisioning.LogResource(ctx.Observer, phase, "file", spec.Path, changed)
		anyChanged = anyChanged || changed
	}
	return anyChanged, nil
}

func hasMarker(path, marker string) (bool, error) {
	if marker == "" {
		return false, nil
	}
	content, err := files.ReadIfExists(path)
	if err != nil {
		return false, err
	}
	return bytes.Contains(content, []byte(marker)), nil
}

// restart bounces HostFactory. EGO may still be starting, so the logon is
// retried; a failing stop is ignored because the service may not run yet.
func (p *Provisioner) restart(ctx *provisioning.Context) error {
	client := ctx.Ego()

	err := retry.WithExponentialBackoff(ctx, func() error {
		return client.Logon(ctx)
	},
		retry.WithMaxRetries(ctx.Timeouts.EgoRetries),
		retry.WithInitialDelay(5*time.Second),
		retry.WithMaxDelay(time.Minute),
		retry.WithSleeper(ctx.Sleep),
	)
	if err != nil {
		return fmt.Errorf("failed to restart %s: %w", ego.HostFactoryService, err)
	}

	if err := client.StopService(ctx, ego.HostFactoryService); err != nil {
		ctx.Observer.Printf("[%s] ignoring stop failure: %v", phase, err)
	}

	// Hosts need a moment to reach DEALLOCATING before the start.
	if err := ctx.Sleep(ctx, ctx.Timeouts.HostFactoryDrain); err != nil {
		return err
	}

	if err := client.StartService(ctx, ego.HostFactoryService); err != nil {
		return err
	}
	ctx.State.HostFactoryRestarted = true
	provisioning.LogResource(ctx.Observer, phase, "service", ego.HostFactoryService, true)
	return nil
}
