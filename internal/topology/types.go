package topology

import (
	"context"
	"strings"
)

// ClusterMember is one entry returned by a directory lookup.
type ClusterMember struct {
	ClusterID    string `json:"clusterId" yaml:"clusterId"`
	Hostname     string `json:"hostname" yaml:"hostname"`
	IPv4         string `json:"ipv4,omitempty" yaml:"ipv4,omitempty"`
	IsMaster     bool   `json:"isMaster,omitempty" yaml:"isMaster,omitempty"`
	IsManagement bool   `json:"isManagement,omitempty" yaml:"isManagement,omitempty"`
}

// Directory is a queryable registry of cluster members.
// Each call returns a fresh snapshot.
type Directory interface {
	Query(ctx context.Context, clusterID string) ([]ClusterMember, error)
}

// DirectoryFunc adapts a function to the Directory interface.
type DirectoryFunc func(ctx context.Context, clusterID string) ([]ClusterMember, error)

// Query implements Directory.
func (f DirectoryFunc) Query(ctx context.Context, clusterID string) ([]ClusterMember, error) {
	return f(ctx, clusterID)
}

// Source records how a topology was obtained.
type Source string

const (
	SourceDiscovery Source = "discovery"
	SourceOverride  Source = "override"
)

// Topology is the resolved set of role assignments for one cluster.
type Topology struct {
	MasterHost           string   `json:"masterHost" yaml:"masterHost"`
	ManagementHosts      []string `json:"managementHosts" yaml:"managementHosts"`
	ManagementShortNames []string `json:"managementShortNames" yaml:"managementShortNames"`
}

// Clone returns a deep copy so consumers never share slices.
func (t Topology) Clone() Topology {
	return Topology{
		MasterHost:           t.MasterHost,
		ManagementHosts:      append([]string(nil), t.ManagementHosts...),
		ManagementShortNames: append([]string(nil), t.ManagementShortNames...),
	}
}

// IsMaster reports whether hostname is the resolved master. Short and
// fully qualified names match each other.
func (t Topology) IsMaster(hostname string) bool {
	if t.MasterHost == "" || hostname == "" {
		return false
	}
	return t.MasterHost == hostname || ShortName(t.MasterHost) == ShortName(hostname)
}

// MasterFileContent is the body of the persisted master node file.
func (t Topology) MasterFileContent() string {
	return t.MasterHost
}

// ManagementFileContent is the body of the persisted management hosts file,
// one hostname per line in resolved order.
func (t Topology) ManagementFileContent() string {
	return strings.Join(t.ManagementHosts, "\n")
}

// ParseTopologyFiles rebuilds a Topology from persisted file bodies.
func ParseTopologyFiles(master, management string) Topology {
	var hosts []string
	for _, line := range strings.Split(management, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			hosts = append(hosts, line)
		}
	}
	return newTopology(strings.TrimSpace(master), hosts)
}

func newTopology(master string, hosts []string) Topology {
	sorted := append([]string(nil), hosts...)
	SortManagementHosts(sorted)
	return Topology{
		MasterHost:           master,
		ManagementHosts:      sorted,
		ManagementShortNames: ShortNames(sorted),
	}
}
