package testing

import (
	"time"

	"github.com/imamik/symphonyctl/internal/config"
)

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a builder whose defaults pass validation. All node
// paths are written below root.
func NewConfigBuilder(root string) *ConfigBuilder {
	return &ConfigBuilder{
		cfg: config.Config{
			Root:    root,
			Cluster: config.ClusterConfig{ID: "c1", Name: "grid1"},
			Node: config.NodeConfig{
				Hostname:     "e1.example.com",
				IPv4:         "10.0.0.10",
				BootstrapDir: "/opt/symphonyctl/bootstrap",
			},
			Symphony: config.SymphonyConfig{
				AppName:            "symphony",
				Version:            "7.2.0.0",
				Package:            "symeval-7.2.0.0_x86_64.bin",
				LicenseFile:        "sym_adv_ev_entitlement.dat",
				SimplifiedWEM:      "N",
				BasePort:           14899,
				DisableSSL:         false,
				SharedFSMountpoint: "/shared",
				EgoTop:             "/opt/ibm/spectrumcomputing",
				EgoConfDir:         "/opt/ibm/spectrumcomputing/kernel/conf",
				JDKProfile:         "/etc/profile.d/jdk.sh",
				Admin: config.AdminConfig{
					User: "egoadmin",
					UID:  61111,
					GID:  61111,
					Home: "/home/egoadmin",
				},
				SOAM:        config.SOAMConfig{User: "Admin", Password: "changeme"},
				HostFactory: config.HostFactoryConfig{Provider: "azurecc"},
			},
			Discovery: config.DiscoveryConfig{
				Backend:    config.BackendStatic,
				Interval:   30 * time.Second,
				MaxRetries: 6,
				TieBreak:   "lowest-hostname",
				Static:     config.StaticConfig{Path: "/etc/symphonyctl/members.yaml"},
			},
			Autoscale: config.AutoscaleConfig{
				IdleTimeAfterJobs:  15 * time.Minute,
				IdleTimeBeforeJobs: time.Hour,
				SlotType:           "execute",
				CoresPerSlot:       1,
				DefaultTaskRuntime: 300 * time.Second,
				Minute:             "*",
			},
			Metrics: config.MetricsConfig{TextfileDir: "/var/lib/node_exporter/textfile_collector"},
			Logging: config.LoggingConfig{Level: "info", Format: "text"},
		},
	}
}

// WithHostname sets the local node name.
func (b *ConfigBuilder) WithHostname(hostname string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Node.Hostname = hostname
	return newBuilder
}

// WithMaster marks the node as master and management host.
func (b *ConfigBuilder) WithMaster(master bool) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Node.IsMaster = master
	newBuilder.cfg.Node.IsManagement = newBuilder.cfg.Node.IsManagement || master
	return newBuilder
}

// WithManagement marks the node as management host.
func (b *ConfigBuilder) WithManagement(management bool) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Node.IsManagement = management
	return newBuilder
}

// WithSharedInstall toggles the shared file system install.
func (b *ConfigBuilder) WithSharedInstall(shared bool) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Symphony.SharedFSInstall = shared
	return newBuilder
}

// WithHostFactory toggles HostFactory.
func (b *ConfigBuilder) WithHostFactory(enabled bool) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Symphony.HostFactory.Enabled = enabled
	return newBuilder
}

// WithAutostop toggles the scheduled autostop job.
func (b *ConfigBuilder) WithAutostop(enabled bool) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Autoscale.StopEnabled = enabled
	return newBuilder
}

// WithOverride sets the manual master/management override. Hosts may be a
// comma-separated string or a []string.
func (b *ConfigBuilder) WithOverride(master string, hosts any) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Override = config.OverrideConfig{MasterHost: master, ManagementHosts: cloneHosts(hosts)}
	return newBuilder
}

// WithDryRun toggles dry-run mode.
func (b *ConfigBuilder) WithDryRun(dryRun bool) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.DryRun = dryRun
	return newBuilder
}

// WithMetrics enables the textfile below root.
func (b *ConfigBuilder) WithMetrics(dir string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Metrics = config.MetricsConfig{Enabled: true, TextfileDir: dir}
	return newBuilder
}

// Build returns the constructed config.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.clone().cfg
	return &cfg
}

// clone creates a deep copy of the builder for immutability.
func (b *ConfigBuilder) clone() *ConfigBuilder {
	newCfg := b.cfg
	newCfg.Override.ManagementHosts = cloneHosts(b.cfg.Override.ManagementHosts)
	return &ConfigBuilder{cfg: newCfg}
}

// cloneHosts copies a []string override; strings and nil are immutable.
func cloneHosts(hosts any) any {
	s, ok := hosts.([]string)
	if !ok {
		return hosts
	}
	cloned := make([]string, len(s))
	copy(cloned, s)
	return cloned
}

// MasterConfig returns a valid master node config below root.
func MasterConfig(root string) *config.Config {
	return NewConfigBuilder(root).
		WithHostname("m1.example.com").
		WithMaster(true).
		Build()
}
