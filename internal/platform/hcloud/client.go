package hcloud

import (
	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// RealClient talks to the Hetzner Cloud API.
type RealClient struct {
	client   *hcloud.Client
	endpoint string
}

// ClientOption configures a RealClient.
type ClientOption func(*RealClient)

// WithEndpoint points the client at a different API endpoint. An empty
// endpoint keeps the library default.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *RealClient) {
		c.endpoint = endpoint
	}
}

// NewRealClient creates a new RealClient with optional configuration.
func NewRealClient(token string, opts ...ClientOption) *RealClient {
	c := &RealClient{}
	for _, opt := range opts {
		opt(c)
	}

	clientOpts := []hcloud.ClientOption{
		hcloud.WithToken(token),
		hcloud.WithApplication("symphonyctl", ""),
	}
	if c.endpoint != "" {
		clientOpts = append(clientOpts, hcloud.WithEndpoint(c.endpoint))
	}
	c.client = hcloud.NewClient(clientOpts...)
	return c
}
