package hcloud

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// ErrServerNotFound is returned when no server has the requested name.
var ErrServerNotFound = errors.New("server not found")

// GetServersByLabel returns all servers matching the label selector.
func (c *RealClient) GetServersByLabel(ctx context.Context, selector string) ([]*hcloud.Server, error) {
	servers, err := c.client.Server.AllWithOpts(ctx, hcloud.ServerListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: selector},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	return servers, nil
}

// MergeServerLabels adds labels to the named server, keeping existing ones.
func (c *RealClient) MergeServerLabels(ctx context.Context, name string, labels map[string]string) error {
	server, _, err := c.client.Server.GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to get server %s: %w", name, err)
	}
	if server == nil {
		return fmt.Errorf("%w: %s", ErrServerNotFound, name)
	}

	merged := make(map[string]string, len(server.Labels)+len(labels))
	maps.Copy(merged, server.Labels)
	maps.Copy(merged, labels)

	if maps.Equal(merged, server.Labels) {
		return nil
	}

	if _, _, err := c.client.Server.Update(ctx, server, hcloud.ServerUpdateOpts{Labels: merged}); err != nil {
		return fmt.Errorf("failed to update labels of server %s: %w", name, err)
	}
	return nil
}

// ServerIPv4 prefers the first private network address, then the public one.
// Symphony hosts talk over the private network when there is one.
func ServerIPv4(s *hcloud.Server) string {
	if s == nil {
		return ""
	}
	if len(s.PrivateNet) > 0 && s.PrivateNet[0].IP != nil {
		return s.PrivateNet[0].IP.String()
	}
	if s.PublicNet.IPv4.IP != nil {
		return s.PublicNet.IPv4.IP.String()
	}
	return ""
}
