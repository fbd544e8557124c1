package naming

import (
	"fmt"
	"path/filepath"
)

// Paths derived from the application name.
// Root is joined in front of every absolute path; it is "/" on a real node
// and a temporary directory in tests.

func MasterNodeFile(root, app string) string {
	return filepath.Join(root, "etc", fmt.Sprintf("%s_master_node", app))
}

func ManagementHostsFile(root, app string) string {
	return filepath.Join(root, "etc", fmt.Sprintf("%s_mgmt_hosts", app))
}

func ProfileScript(root, app string) string {
	return filepath.Join(root, "etc", "profile.d", app+".sh")
}

func CronFile(root, app string) string {
	return filepath.Join(root, "etc", "cron.d", app)
}

func SystemEgoConf(root string) string {
	return filepath.Join(root, "etc", "ego.conf")
}

func LimitsFile(root, adminUser string) string {
	return filepath.Join(root, "etc", "security", "limits.d", adminUser+".conf")
}

// MetricsTextfile is the node_exporter textfile of one job (bootstrap,
// autostart, ...).
func MetricsTextfile(dir, app, job string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.prom", app, job))
}

// AutostopState keeps the idle clock between autostop runs.
func AutostopState(bootstrapDir, app string) string {
	return filepath.Join(bootstrapDir, app+"_autostop.state")
}

// Paths under the EGO configuration directory.

func EgoConf(confDir string) string {
	return filepath.Join(confDir, "ego.conf")
}

func EgoCluster(confDir, clusterName string) string {
	return filepath.Join(confDir, "ego.cluster."+clusterName)
}

func ResourceGroups(confDir string) string {
	return filepath.Join(confDir, "ResourceGroups.xml")
}

// ProfileEgo is the EGO environment script patched with the binary type.
// The installer writes it to the conf directory.
func ProfileEgo(confDir string) string {
	return filepath.Join(confDir, "profile.ego")
}

// ProfilePlatform is sourced before any egosh or soamview call.
func ProfilePlatform(egoTop string) string {
	return filepath.Join(egoTop, "profile.platform")
}

// EgoConfDir is the default kernel conf directory below EGO_TOP.
func EgoConfDir(egoTop string) string {
	return filepath.Join(egoTop, "kernel", "conf")
}

// HostFactoryConfDir is the HostFactory conf tree below EGO_TOP.
func HostFactoryConfDir(egoTop string) string {
	return filepath.Join(egoTop, "eservice", "hostfactory", "conf")
}

// S3MemberKey is the object key of a member record in the S3 registry.
func S3MemberKey(prefix, clusterID, hostname string) string {
	return S3MembersPrefix(prefix, clusterID) + hostname + ".json"
}

// S3MembersPrefix lists all member records of a cluster.
func S3MembersPrefix(prefix, clusterID string) string {
	if prefix == "" {
		return fmt.Sprintf("%s/members/", clusterID)
	}
	return fmt.Sprintf("%s/%s/members/", prefix, clusterID)
}

// SSHDir is the admin user's ssh directory.
func SSHDir(home string) string {
	return filepath.Join(home, ".ssh")
}
