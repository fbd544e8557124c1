package topology

import (
	"fmt"
	"strings"
)

// ManualOverride pins the topology instead of discovering it.
// ManagementHosts may be a []string, a []any of strings, or a
// comma-delimited string.
type ManualOverride struct {
	MasterHost      string
	ManagementHosts any
}

// Topology validates the override and builds the resulting topology.
func (o ManualOverride) Topology() (Topology, error) {
	master := strings.TrimSpace(o.MasterHost)
	if master == "" {
		return Topology{}, &ConfigError{Field: "override.master_host", Message: "must not be empty"}
	}

	hosts, err := o.managementHosts()
	if err != nil {
		return Topology{}, err
	}
	return newTopology(master, hosts), nil
}

func (o ManualOverride) managementHosts() ([]string, error) {
	switch v := o.ManagementHosts.(type) {
	case string:
		return splitHostList(v), nil
	case []string:
		return cleanHosts(v), nil
	case []any:
		hosts := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, &ConfigError{
					Field:   "override.management_hosts",
					Message: fmt.Sprintf("entry %d is %T, want string", i, item),
				}
			}
			hosts = append(hosts, s)
		}
		return cleanHosts(hosts), nil
	case nil:
		return nil, &ConfigError{Field: "override.management_hosts", Message: "required when master_host is set"}
	default:
		return nil, &ConfigError{
			Field:   "override.management_hosts",
			Message: fmt.Sprintf("got %T, want list or comma-separated string", v),
		}
	}
}

func splitHostList(s string) []string {
	return cleanHosts(strings.Split(s, ","))
}

func cleanHosts(in []string) []string {
	out := make([]string, 0, len(in))
	for _, h := range in {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
