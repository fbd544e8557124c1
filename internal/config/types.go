package config

import (
	"time"

	"github.com/imamik/symphonyctl/internal/topology"
)

// Config is the complete node configuration.
type Config struct {
	// Root is prepended to every absolute path written on the node.
	Root   string `mapstructure:"root" validate:"required"`
	DryRun bool   `mapstructure:"dry_run"`

	Cluster   ClusterConfig   `mapstructure:"cluster"`
	Node      NodeConfig      `mapstructure:"node"`
	Symphony  SymphonyConfig  `mapstructure:"symphony"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Override  OverrideConfig  `mapstructure:"override"`
	Autoscale AutoscaleConfig `mapstructure:"autoscale"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ClusterConfig identifies the cluster this node belongs to.
type ClusterConfig struct {
	ID   string `mapstructure:"id" validate:"required"`
	Name string `mapstructure:"name" validate:"required,excludesall=/ "`
}

// NodeConfig describes the local node and its roles.
type NodeConfig struct {
	Hostname     string `mapstructure:"hostname" validate:"required"`
	IPv4         string `mapstructure:"ipv4" validate:"omitempty,ipv4"`
	IsMaster     bool   `mapstructure:"is_master"`
	IsManagement bool   `mapstructure:"is_management"`
	BootstrapDir string `mapstructure:"bootstrap_dir" validate:"required"`
}

// Member returns the directory record describing this node.
func (n NodeConfig) Member(clusterID string) topology.ClusterMember {
	return topology.ClusterMember{
		ClusterID:    clusterID,
		Hostname:     n.Hostname,
		IPv4:         n.IPv4,
		IsMaster:     n.IsMaster,
		IsManagement: n.IsManagement,
	}
}

// SymphonyConfig holds the Symphony installation attributes.
type SymphonyConfig struct {
	AppName            string `mapstructure:"app_name" validate:"required,alphanum"`
	Version            string `mapstructure:"version" validate:"required"`
	Package            string `mapstructure:"package"`
	LicenseFile        string `mapstructure:"license_file"`
	SimplifiedWEM      string `mapstructure:"simplified_wem" validate:"oneof=Y N"`
	BasePort           int    `mapstructure:"baseport" validate:"min=1,max=65535"`
	DisableSSL         bool   `mapstructure:"disable_ssl"`
	SharedFSInstall    bool   `mapstructure:"shared_fs_install"`
	SharedFSMountpoint string `mapstructure:"shared_fs_mountpoint"`
	EgoTop             string `mapstructure:"ego_top" validate:"required,startswith=/"`
	EgoConfDir         string `mapstructure:"ego_confdir" validate:"required,startswith=/"`
	// JDKProfile is sourced by the profile script when set.
	JDKProfile string `mapstructure:"jdk_profile"`

	Admin       AdminConfig       `mapstructure:"admin"`
	SOAM        SOAMConfig        `mapstructure:"soam"`
	HostFactory HostFactoryConfig `mapstructure:"host_factory"`
}

// AdminConfig describes the cluster admin account.
type AdminConfig struct {
	User string `mapstructure:"user" validate:"required"`
	UID  int    `mapstructure:"uid" validate:"min=1"`
	GID  int    `mapstructure:"gid" validate:"min=1"`
	Home string `mapstructure:"home" validate:"required,startswith=/"`
}

// SOAMConfig holds the credentials used with egosh and soamview.
type SOAMConfig struct {
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
}

// HostFactoryConfig controls the HostFactory integration on the master.
type HostFactoryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Provider string `mapstructure:"provider" validate:"required_if=Enabled true"`
}

// Discovery backends.
const (
	BackendStatic = "static"
	BackendHCloud = "hcloud"
	BackendEC2    = "ec2"
	BackendS3     = "s3"
	BackendHTTP   = "http"
)

// DiscoveryConfig selects and configures the cluster directory.
type DiscoveryConfig struct {
	Backend    string        `mapstructure:"backend" validate:"required,oneof=static hcloud ec2 s3 http"`
	Interval   time.Duration `mapstructure:"interval" validate:"gt=0"`
	MaxRetries int           `mapstructure:"max_retries" validate:"min=1"`
	TieBreak   string        `mapstructure:"tie_break" validate:"oneof=lowest-hostname first-seen"`

	Static StaticConfig `mapstructure:"static"`
	HCloud HCloudConfig `mapstructure:"hcloud"`
	EC2    EC2Config    `mapstructure:"ec2"`
	S3     S3Config     `mapstructure:"s3"`
	HTTP   HTTPConfig   `mapstructure:"http"`
}

// StaticConfig points at a YAML member list.
type StaticConfig struct {
	Path string `mapstructure:"path"`
}

// HCloudConfig configures the Hetzner Cloud backend.
type HCloudConfig struct {
	Token    string `mapstructure:"token"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}

// EC2Config configures the AWS EC2 backend.
type EC2Config struct {
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`
}

// S3Config configures the S3 member registry.
type S3Config struct {
	Bucket       string `mapstructure:"bucket"`
	Prefix       string `mapstructure:"prefix"`
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

// HTTPConfig configures the cluster metadata service.
type HTTPConfig struct {
	BaseURL  string        `mapstructure:"base_url" validate:"omitempty,url"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gte=0"`
	RetryMax int           `mapstructure:"retry_max" validate:"gte=0"`
}

// OverrideConfig is the manual master/management override.
// ManagementHosts is either a list of hostnames or a comma-separated string.
type OverrideConfig struct {
	MasterHost      string `mapstructure:"master_host"`
	ManagementHosts any    `mapstructure:"management_hosts"`
}

// AutoscaleConfig controls the scheduled autostart, cleanup and autostop jobs.
type AutoscaleConfig struct {
	StopEnabled        bool          `mapstructure:"stop_enabled"`
	IdleTimeAfterJobs  time.Duration `mapstructure:"idle_time_after_jobs" validate:"gte=0"`
	IdleTimeBeforeJobs time.Duration `mapstructure:"idle_time_before_jobs" validate:"gte=0"`
	SlotType           string        `mapstructure:"slot_type" validate:"required"`
	CoresPerSlot       int           `mapstructure:"cores_per_slot" validate:"min=1"`
	DefaultTaskRuntime time.Duration `mapstructure:"default_task_runtime" validate:"gt=0"`
	// Minute is the cron minute field of the scheduled jobs.
	Minute string `mapstructure:"minute" validate:"required"`
}

// MetricsConfig controls the node_exporter textfile.
type MetricsConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	TextfileDir string `mapstructure:"textfile_dir" validate:"required_if=Enabled true"`
}

// LoggingConfig controls the console observer.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn warning error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// ManualOverride returns the configured override, or nil when neither the
// master nor the management hosts are set.
func (c *Config) ManualOverride() *topology.ManualOverride {
	if c.Override.MasterHost == "" && c.Override.ManagementHosts == nil {
		return nil
	}
	return &topology.ManualOverride{
		MasterHost:      c.Override.MasterHost,
		ManagementHosts: c.Override.ManagementHosts,
	}
}

// InstallsEgoCluster reports whether this node writes the EGO cluster files.
// With a shared install only the master does.
func (c *Config) InstallsEgoCluster() bool {
	return !c.Symphony.SharedFSInstall || c.Node.IsMaster
}
