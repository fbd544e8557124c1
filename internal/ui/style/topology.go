package style

import (
	"fmt"
	"strings"

	"github.com/imamik/symphonyctl/internal/platform/ego"
	"github.com/imamik/symphonyctl/internal/topology"
)

// TopologyView is what `show` prints.
type TopologyView struct {
	ClusterName string
	LocalHost   string
	Topology    topology.Topology
}

// Topology renders the persisted topology as a styled block.
func Topology(v TopologyView) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Symphony cluster " + v.ClusterName))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Master"))
	b.WriteString("\n")
	master := v.Topology.MasterHost
	if master == "" {
		b.WriteString("  " + failedStyle.Render(crossMark) + " " + dimStyle.Render("not resolved yet") + "\n")
	} else {
		b.WriteString("  " + okStyle.Render(checkMark) + " " + master + localSuffix(master, v.LocalHost) + "\n")
	}

	b.WriteString(sectionStyle.Render(fmt.Sprintf("Management hosts (%d)", len(v.Topology.ManagementHosts))))
	b.WriteString("\n")
	if len(v.Topology.ManagementHosts) == 0 {
		b.WriteString("  " + warningStyle.Render(warnMark) + " " + dimStyle.Render("none") + "\n")
	}
	for i, h := range v.Topology.ManagementHosts {
		short := ""
		if i < len(v.Topology.ManagementShortNames) {
			short = v.Topology.ManagementShortNames[i]
		}
		b.WriteString("  " + labelStyle.Render(short) + h + localSuffix(h, v.LocalHost) + "\n")
	}
	return b.String()
}

// Hosts renders EGO host states, flagging unavail hosts.
func Hosts(statuses []ego.HostStatus) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Hosts"))
	b.WriteString("\n")
	for _, s := range statuses {
		mark := okStyle.Render(checkMark)
		if ego.IsUnavail(s.Status) {
			mark = failedStyle.Render(crossMark)
		}
		b.WriteString("  " + mark + " " + labelStyle.Render(s.Status) + s.Host + "\n")
	}
	return b.String()
}

func localSuffix(host, local string) string {
	if local == "" || (host != local && topology.ShortName(host) != topology.ShortName(local)) {
		return ""
	}
	return dimStyle.Render(" (this node)")
}
