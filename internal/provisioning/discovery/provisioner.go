package discovery

import (
	"fmt"
	"strconv"

	"github.com/imamik/symphonyctl/internal/platform/files"
	"github.com/imamik/symphonyctl/internal/provisioning"
	"github.com/imamik/symphonyctl/internal/topology"
	"github.com/imamik/symphonyctl/internal/util/naming"
)

const phase = "discovery"

// Provisioner resolves the master and management hosts.
type Provisioner struct {
	persist bool
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithPersist controls whether the topology files are written. On by default.
func WithPersist(persist bool) Option {
	return func(p *Provisioner) { p.persist = persist }
}

// NewProvisioner creates a new discovery provisioner.
func NewProvisioner(opts ...Option) *Provisioner {
	p := &Provisioner{persist: true}
	for _, opt := range opts {
		opt(p)
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
	resolver := topology.NewResolver(topology.Options{
		Interval:   cfg.Discovery.Interval,
		MaxRetries: cfg.Discovery.MaxRetries,
		TieBreak:   topology.TieBreak(cfg.Discovery.TieBreak),
		Sleep:      ctx.Sleep,
		Logger:     ctx.Observer,
	})

	res, err := resolver.ResolveDetailed(ctx, cfg.Cluster.ID, ctx.Directory, cfg.ManualOverride())
	if err != nil {
		return fmt.Errorf("failed to resolve cluster topology: %w", err)
	}

	ctx.State.Topology = res.Topology.Clone()
	ctx.State.Resolution = res
	ctx.State.Resolved = true
	ctx.Observer.Event(provisioning.Event{
		Type:     provisioning.EventResourceChanged,
		Phase:    phase,
		Resource: res.Topology.MasterHost,
		Message:  "topology resolved",
		Fields: map[string]string{
			"source":   string(res.Source),
			"attempts": strconv.Itoa(res.Attempts),
			"mgmt":     strconv.Itoa(len(res.Topology.ManagementHosts)),
		},
	})

	if ctx.Metrics != nil {
		ctx.Metrics.ObserveDiscovery(res.Attempts, res.Waited, len(res.Topology.ManagementHosts),
			res.Topology.MasterHost == cfg.Node.Hostname)
	}

	if !p.persist {
		return nil
	}
	return Persist(ctx, res.Topology)
}

// Persist writes the master and management host files, root-owned 0644.
func Persist(ctx *provisioning.Context, topo topology.Topology) error {
	app := ctx.Config.Symphony.AppName
	specs := []files.Spec{
		{Path: naming.MasterNodeFile(ctx.Config.Root, app), Content: []byte(topo.MasterFileContent())},
		{Path: naming.ManagementHostsFile(ctx.Config.Root, app), Content: []byte(topo.ManagementFileContent())},
	}
	for _, spec := range specs {
		spec.Mode = 0o644
		spec.Owner = "root"
		spec.Group = "root"
		changed, err := ctx.Files.Replace(spec)
		if err != nil {
			return fmt.Errorf("failed to persist topology: %w", err)
		}
		ctx.State.MarkChanged(spec.Path, changed)
		provisioning.LogResource(ctx.Observer, phase, "file", spec.Path, changed)
	}
	return nil
}

// Load reads the persisted topology. ok is false when no master file exists.
func Load(root, app string) (topo topology.Topology, ok bool, err error) {
	master, err := files.ReadIfExists(naming.MasterNodeFile(root, app))
	if err != nil {
		return topology.Topology{}, false, err
	}
	if master == nil {
		return topology.Topology{}, false, nil
	}
	mgmt, err := files.ReadIfExists(naming.ManagementHostsFile(root, app))
	if err != nil {
		return topology.Topology{}, false, err
	}
	return topology.ParseTopologyFiles(string(master), string(mgmt)), true, nil
}
