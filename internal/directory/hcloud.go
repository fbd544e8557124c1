package directory

import (
	"context"
	"errors"

	hcloudgo "github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/symphonyctl/internal/config"
	"github.com/imamik/symphonyctl/internal/platform/hcloud"
	"github.com/imamik/symphonyctl/internal/topology"
	"github.com/imamik/symphonyctl/internal/util/labels"
	"github.com/imamik/symphonyctl/internal/util/retry"
)

// serverAPI is the part of the Hetzner client the directory uses.
type serverAPI interface {
	GetServersByLabel(ctx context.Context, selector string) ([]*hcloudgo.Server, error)
	MergeServerLabels(ctx context.Context, name string, labels map[string]string) error
}

var newHCloudClient = func(cfg config.HCloudConfig) serverAPI {
	return hcloud.NewRealClient(cfg.Token, hcloud.WithEndpoint(cfg.Endpoint))
}

// HCloud discovers members from Hetzner Cloud server labels.
type HCloud struct {
	api serverAPI
}

// NewHCloud creates a Hetzner Cloud directory.
func NewHCloud(api serverAPI) *HCloud {
	return &HCloud{api: api}
}

func (h *HCloud) Name() string { return "hcloud" }

// Query implements topology.Directory.
func (h *HCloud) Query(ctx context.Context, clusterID string) ([]topology.ClusterMember, error) {
	servers, err := h.api.GetServersByLabel(ctx, labels.SelectorForCluster(clusterID))
	if err != nil {
		if hcloud.IsUnauthorized(err) {
			return nil, retry.Fatal(err)
		}
		return nil, err
	}

	members := make([]topology.ClusterMember, 0, len(servers))
	for _, s := range servers {
		members = append(members, memberFromLabels(s.Labels, s.Name, hcloud.ServerIPv4(s)))
	}
	return members, nil
}

// Register sets the role labels on the member's server. Servers are looked
// up by FQDN first and then by short name.
func (h *HCloud) Register(ctx context.Context, member topology.ClusterMember) error {
	l := labels.NewLabelBuilder(member.ClusterID).
		WithMaster(member.IsMaster).
		WithManagement(member.IsManagement).
		WithHostname(member.Hostname).
		Build()

	err := h.api.MergeServerLabels(ctx, member.Hostname, l)
	if errors.Is(err, hcloud.ErrServerNotFound) {
		if short := topology.ShortName(member.Hostname); short != member.Hostname {
			err = h.api.MergeServerLabels(ctx, short, l)
		}
	}
	return err
}

// memberFromLabels maps symphony.io/* labels or tags to a member.
// The hostname label wins over the cloud resource name.
func memberFromLabels(l map[string]string, name, ipv4 string) topology.ClusterMember {
	hostname := name
	if h := l[labels.KeyHostname]; h != "" {
		hostname = h
	}
	return topology.ClusterMember{
		ClusterID:    l[labels.KeyCluster],
		Hostname:     hostname,
		IPv4:         ipv4,
		IsMaster:     labels.IsTrue(l, labels.KeyMaster),
		IsManagement: labels.IsTrue(l, labels.KeyManagement),
	}
}
