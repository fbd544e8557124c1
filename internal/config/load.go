package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/imamik/symphonyctl/internal/util/naming"
)

// EnvPrefix prefixes every environment override, e.g. SYMPHONY_CLUSTER_ID.
const EnvPrefix = "SYMPHONY"

// DefaultConfigDir is searched when no config file is given.
const DefaultConfigDir = "/etc/symphonyctl"

var hostname = os.Hostname

// NewViper returns a viper instance with defaults and environment binding set
// up. Commands bind their flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without a default are only seen by Unmarshal when bound.
	_ = v.BindEnv("override.management_hosts")

	return v
}

// SetDefaults registers the attribute defaults of a Symphony node.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("root", "/")
	v.SetDefault("dry_run", false)

	v.SetDefault("cluster.id", "")
	v.SetDefault("cluster.name", "")

	host, _ := hostname()
	v.SetDefault("node.hostname", host)
	v.SetDefault("node.ipv4", "")
	v.SetDefault("node.is_master", false)
	v.SetDefault("node.is_management", false)
	v.SetDefault("node.bootstrap_dir", "/opt/symphonyctl/bootstrap")

	v.SetDefault("symphony.app_name", "symphony")
	v.SetDefault("symphony.version", "7.2.0.0")
	v.SetDefault("symphony.package", "")
	v.SetDefault("symphony.license_file", "sym_adv_ev_entitlement.dat")
	v.SetDefault("symphony.simplified_wem", "N")
	v.SetDefault("symphony.baseport", 14899)
	v.SetDefault("symphony.disable_ssl", true)
	v.SetDefault("symphony.shared_fs_install", false)
	v.SetDefault("symphony.shared_fs_mountpoint", "/shared")
	v.SetDefault("symphony.ego_top", "/opt/ibm/spectrumcomputing")
	v.SetDefault("symphony.ego_confdir", "")
	v.SetDefault("symphony.jdk_profile", "/etc/profile.d/jdk.sh")
	v.SetDefault("symphony.admin.user", "egoadmin")
	v.SetDefault("symphony.admin.uid", 61111)
	v.SetDefault("symphony.admin.gid", 61111)
	v.SetDefault("symphony.admin.home", "")
	v.SetDefault("symphony.soam.user", "Admin")
	v.SetDefault("symphony.soam.password", "Admin")
	v.SetDefault("symphony.host_factory.enabled", false)
	v.SetDefault("symphony.host_factory.provider", "azurecc")

	v.SetDefault("discovery.backend", BackendStatic)
	v.SetDefault("discovery.interval", "30s")
	v.SetDefault("discovery.max_retries", 6)
	v.SetDefault("discovery.tie_break", "lowest-hostname")
	v.SetDefault("discovery.static.path", filepath.Join(DefaultConfigDir, "members.yaml"))
	v.SetDefault("discovery.hcloud.token", "")
	v.SetDefault("discovery.hcloud.endpoint", "")
	v.SetDefault("discovery.ec2.region", "")
	v.SetDefault("discovery.ec2.endpoint", "")
	v.SetDefault("discovery.s3.bucket", "")
	v.SetDefault("discovery.s3.prefix", "symphony")
	v.SetDefault("discovery.s3.region", "us-east-1")
	v.SetDefault("discovery.s3.endpoint", "")
	v.SetDefault("discovery.s3.access_key", "")
	v.SetDefault("discovery.s3.secret_key", "")
	v.SetDefault("discovery.s3.use_path_style", false)
	v.SetDefault("discovery.http.base_url", "")
	v.SetDefault("discovery.http.token", "")
	v.SetDefault("discovery.http.timeout", "30s")
	v.SetDefault("discovery.http.retry_max", 4)

	v.SetDefault("override.master_host", "")

	v.SetDefault("autoscale.stop_enabled", false)
	v.SetDefault("autoscale.idle_time_after_jobs", "15m")
	v.SetDefault("autoscale.idle_time_before_jobs", "1h")
	v.SetDefault("autoscale.slot_type", "execute")
	v.SetDefault("autoscale.cores_per_slot", 1)
	v.SetDefault("autoscale.default_task_runtime", "300s")
	v.SetDefault("autoscale.minute", "*")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.textfile_dir", "/var/lib/node_exporter/textfile_collector")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Load reads the configuration from path (or the default search locations
// when path is empty), applies environment overrides and validates it.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("symphonyctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.applyDerived()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// applyDerived fills attributes whose defaults depend on other attributes.
func (c *Config) applyDerived() {
	if c.Symphony.EgoConfDir == "" && c.Symphony.EgoTop != "" {
		c.Symphony.EgoConfDir = naming.EgoConfDir(c.Symphony.EgoTop)
	}
	if c.Symphony.Package == "" && c.Symphony.Version != "" {
		c.Symphony.Package = fmt.Sprintf("symeval-%s_x86_64.bin", c.Symphony.Version)
	}
	if c.Symphony.Admin.Home == "" && c.Symphony.Admin.User != "" {
		c.Symphony.Admin.Home = filepath.Join("/home", c.Symphony.Admin.User)
	}
	c.Symphony.SimplifiedWEM = strings.ToUpper(c.Symphony.SimplifiedWEM)
	c.Logging.Level = strings.ToLower(c.Logging.Level)
}
