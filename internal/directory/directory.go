package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/symphonyctl/internal/config"
	"github.com/imamik/symphonyctl/internal/topology"
)

// ErrUnsupported is returned for operations a backend cannot perform.
var ErrUnsupported = errors.New("operation not supported by this directory backend")

// Registrar publishes the local node to the directory.
type Registrar interface {
	Register(ctx context.Context, member topology.ClusterMember) error
}

// Deregisterer removes a member from the directory.
type Deregisterer interface {
	Deregister(ctx context.Context, clusterID, hostname string) error
}

// CapacityRequest asks the cloud layer for more execute capacity.
type CapacityRequest struct {
	NodeArray   string `json:"nodearray"`
	RequestCPUs int    `json:"request_cpus"`
}

// CapacityRequester forwards autoscale demand.
type CapacityRequester interface {
	RequestCapacity(ctx context.Context, clusterID string, requests []CapacityRequest) error
}

// Backend is a directory that members can also register with.
type Backend interface {
	topology.Directory
	Registrar
	Name() string
}

// MemberName maps host, as EGO reports it, to the hostname a member of
// clusterID registered with. Names are compared by short name, so "e2" finds
// "e2.example.com". host is returned unchanged when no member matches.
func MemberName(ctx context.Context, dir topology.Directory, clusterID, host string) (string, error) {
	members, err := dir.Query(ctx, clusterID)
	if err != nil {
		return "", fmt.Errorf("failed to look up %s: %w", host, err)
	}
	for _, m := range members {
		if m.Hostname == host {
			return host, nil
		}
	}
	short := topology.ShortName(host)
	for _, m := range members {
		if topology.ShortName(m.Hostname) == short {
			return m.Hostname, nil
		}
	}
	return host, nil
}

// Logger is the logging surface passed to backend clients.
type Logger interface {
	Printf(format string, v ...any)
}

// Open builds the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.DiscoveryConfig, log Logger) (Backend, error) {
	switch cfg.Backend {
	case config.BackendStatic:
		return NewStatic(cfg.Static.Path), nil
	case config.BackendHCloud:
		return NewHCloud(newHCloudClient(cfg.HCloud)), nil
	case config.BackendEC2:
		return openEC2(ctx, cfg.EC2)
	case config.BackendS3:
		client, err := newS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return NewS3(client, cfg.S3.Bucket, cfg.S3.Prefix), nil
	case config.BackendHTTP:
		return NewHTTP(cfg.HTTP, log)
	default:
		return nil, &topology.ConfigError{Field: "discovery.backend", Message: fmt.Sprintf("unknown backend %q", cfg.Backend)}
	}
}
