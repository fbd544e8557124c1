package labels

import (
	"sort"
	"strconv"
	"strings"
)

// Label keys carried by Symphony nodes.
const (
	// KeyCluster identifies which cluster a node belongs to
	KeyCluster = "symphony.io/cluster"

	// KeyMaster is "true" on the node hosting the primary EGO master
	KeyMaster = "symphony.io/master"

	// KeyManagement is "true" on nodes running management services
	KeyManagement = "symphony.io/management"

	// KeyHostname carries the FQDN when the cloud name differs from it
	KeyHostname = "symphony.io/hostname"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "symphony.io/managed-by"
)

// ManagedBySymphonyctl is the KeyManagedBy value set by this tool.
const ManagedBySymphonyctl = "symphonyctl"

// LabelBuilder builds the label set a node registers with.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a builder with the cluster ID pre-set.
func NewLabelBuilder(clusterID string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyCluster:   clusterID,
			KeyManagedBy: ManagedBySymphonyctl,
		},
	}
}

// WithMaster sets the master flag.
func (lb *LabelBuilder) WithMaster(isMaster bool) *LabelBuilder {
	lb.labels[KeyMaster] = strconv.FormatBool(isMaster)
	return lb
}

// WithManagement sets the management flag.
func (lb *LabelBuilder) WithManagement(isManagement bool) *LabelBuilder {
	lb.labels[KeyManagement] = strconv.FormatBool(isManagement)
	return lb
}

// WithHostname records the node FQDN.
// Hetzner label values cannot hold every FQDN, so empty values are skipped.
func (lb *LabelBuilder) WithHostname(hostname string) *LabelBuilder {
	if hostname != "" {
		lb.labels[KeyHostname] = hostname
	}
	return lb
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// SelectorForCluster returns a label selector string for all nodes of a cluster.
func SelectorForCluster(clusterID string) string {
	return KeyCluster + "=" + clusterID
}

// Selector renders labels as a comma-separated selector with sorted keys.
func Selector(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+labels[k])
	}
	return strings.Join(parts, ",")
}

// IsTrue reports whether labels[key] holds a true boolean.
// Missing or unparsable values count as false.
func IsTrue(labels map[string]string, key string) bool {
	v, ok := labels[key]
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}
