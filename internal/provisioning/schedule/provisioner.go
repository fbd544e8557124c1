package schedule

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/imamik/symphonyctl/internal/config"
	"github.com/imamik/symphonyctl/internal/platform/files"
	"github.com/imamik/symphonyctl/internal/provisioning"
	"github.com/imamik/symphonyctl/internal/render"
	"github.com/imamik/symphonyctl/internal/util/naming"
)

const phase = "schedule"

// Defaults used when the provisioner is not told otherwise.
const (
	DefaultBinary = "/usr/local/bin/symphonyctl"
	DefaultLogDir = "/var/log/symphonyctl"
)

var executable = os.Executable

// Provisioner writes /etc/cron.d/<app>.
type Provisioner struct {
	binary     string
	configPath string
	logDir     string
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithBinary sets the symphonyctl path the jobs invoke.
func WithBinary(path string) Option {
	return func(p *Provisioner) { p.binary = path }
}

// WithConfigPath sets the config file the jobs pass along.
func WithConfigPath(path string) Option {
	return func(p *Provisioner) { p.configPath = path }
}

// WithLogDir sets where job output goes.
func WithLogDir(dir string) Option {
	return func(p *Provisioner) { p.logDir = dir }
}

// NewProvisioner creates a schedule provisioner. The binary defaults to the
// running executable.
func NewProvisioner(opts ...Option) *Provisioner {
	p := &Provisioner{
		configPath: filepath.Join(config.DefaultConfigDir, "symphonyctl.yaml"),
		logDir:     DefaultLogDir,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.binary == "" {
		p.binary = DefaultBinary
		if exe, err := executable(); err == nil {
			p.binary = exe
		}
	}
	return p
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	cfg := ctx.Config

	logDir := ctx.Path(p.logDir)
	created, err := ctx.Files.EnsureDir(logDir, 0o755, "root", "root")
	if err != nil {
		return fmt.Errorf("failed to prepare %s: %w", logDir, err)
	}
	ctx.State.MarkChanged(logDir, created)

	clusterJobs := cfg.Node.IsMaster
	if ctx.State.Resolved {
		clusterJobs = ctx.State.Topology.IsMaster(cfg.Node.Hostname)
	}
	if !clusterJobs {
		provisioning.LogResourceSkipped(ctx.Observer, phase, "job", "autostart", "not the master")
	}

	autostop := cfg.Autoscale.StopEnabled && !cfg.Symphony.HostFactory.Enabled
	if cfg.Autoscale.StopEnabled && !autostop {
		provisioning.LogResourceSkipped(ctx.Observer, phase, "job", "autostop", "HostFactory manages the cluster")
	}

	content, err := render.Cron(render.CronData{
		AppName:     cfg.Symphony.AppName,
		Minute:      cfg.Autoscale.Minute,
		Binary:      p.binary,
		ConfigPath:  p.configPath,
		LogDir:      p.logDir,
		ClusterJobs: clusterJobs,
		Autostop:    autostop,
	})
	if err != nil {
		return err
	}

	path := naming.CronFile(cfg.Root, cfg.Symphony.AppName)
	changed, err := ctx.Files.Replace(files.Spec{
		Path:    path,
		Content: content,
		Mode:    0o644,
		Owner:   "root",
		Group:   "root",
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	ctx.State.MarkChanged(path, changed)
	provisioning.LogResource(ctx.Observer, phase, "file", path, changed)
	return nil
}
