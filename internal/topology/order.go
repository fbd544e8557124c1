package topology

import (
	"sort"
	"strings"
)

// secondChar returns the sort key for a hostname: its second character,
// or -1 when the name is shorter than two characters.
func secondChar(host string) rune {
	n := 0
	for _, r := range host {
		if n == 1 {
			return r
		}
		n++
	}
	return -1
}

// SortManagementHosts orders hosts in place by their second character.
// Hosts with equal keys keep their input order.
func SortManagementHosts(hosts []string) {
	sort.SliceStable(hosts, func(i, j int) bool {
		return secondChar(hosts[i]) < secondChar(hosts[j])
	})
}

// ShortName truncates a hostname at its first dot.
func ShortName(host string) string {
	short, _, _ := strings.Cut(host, ".")
	return short
}

// ShortNames maps ShortName over hosts.
func ShortNames(hosts []string) []string {
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		out = append(out, ShortName(h))
	}
	return out
}
