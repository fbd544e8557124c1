package topology

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/imamik/symphonyctl/internal/util/retry"
)

// TieBreak selects the master when more than one member claims the role.
type TieBreak string

const (
	// TieBreakLowestHostname picks the lexicographically smallest hostname.
	TieBreakLowestHostname TieBreak = "lowest-hostname"
	// TieBreakFirstSeen picks the first candidate in directory order.
	TieBreakFirstSeen TieBreak = "first-seen"
)

// Default retry parameters for master discovery.
const (
	DefaultInterval   = 30 * time.Second
	DefaultMaxRetries = 6
)

// Logger is the minimal logging surface the resolver needs.
type Logger interface {
	Printf(format string, v ...any)
}

// Options configures a Resolver.
type Options struct {
	// Interval is the wait between directory queries while no master is visible.
	Interval time.Duration
	// MaxRetries bounds the total number of directory queries.
	MaxRetries int
	TieBreak   TieBreak
	// Sleep replaces the real wait; tests inject a recorder here.
	Sleep  retry.Sleeper
	Logger Logger
}

// Resolution is a resolved topology plus how it was obtained.
type Resolution struct {
	Topology Topology
	Source   Source
	Attempts int
	Waited   time.Duration
	// Masters lists every master candidate of the winning snapshot.
	Masters []string
}

// Resolver discovers the cluster topology.
type Resolver struct {
	opts Options
}

// NewResolver creates a resolver, filling unset options with defaults.
func NewResolver(opts Options) *Resolver {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.MaxRetries < 1 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.TieBreak == "" {
		opts.TieBreak = TieBreakLowestHostname
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Resolver{opts: opts}
}

// Resolve returns the topology for clusterID.
// A non-nil override is authoritative and the directory is never queried.
func (r *Resolver) Resolve(ctx context.Context, clusterID string, dir Directory, override *ManualOverride) (Topology, error) {
	res, err := r.ResolveDetailed(ctx, clusterID, dir, override)
	if err != nil {
		return Topology{}, err
	}
	return res.Topology, nil
}

// ResolveDetailed is Resolve with attempt accounting.
func (r *Resolver) ResolveDetailed(ctx context.Context, clusterID string, dir Directory, override *ManualOverride) (Resolution, error) {
	if override != nil {
		topo, err := override.Topology()
		if err != nil {
			return Resolution{}, err
		}
		r.opts.Logger.Printf("Using configured master: %s and management nodes: %v", topo.MasterHost, topo.ManagementHosts)
		return Resolution{Topology: topo, Source: SourceOverride}, nil
	}

	if clusterID == "" {
		return Resolution{}, &ConfigError{Field: "cluster.id", Message: "must not be empty"}
	}
	if dir == nil {
		return Resolution{}, &ConfigError{Field: "discovery", Message: "no cluster directory configured"}
	}

	var (
		snap     snapshot
		attempts int
	)
	query := func() error {
		attempts++
		members, err := dir.Query(ctx, clusterID)
		if err != nil {
			r.opts.Logger.Printf("Cluster directory query %d/%d failed: %v", attempts, r.opts.MaxRetries, err)
			return err
		}
		s := r.partition(clusterID, members)
		if len(s.masters) == 0 {
			r.opts.Logger.Printf("No master registered for cluster %s yet (attempt %d/%d)", clusterID, attempts, r.opts.MaxRetries)
			return errNoMaster
		}
		snap = s
		return nil
	}

	err := retry.WithExponentialBackoff(ctx, query,
		retry.WithMaxRetries(r.opts.MaxRetries-1),
		retry.WithFixedInterval(r.opts.Interval),
		retry.WithSleeper(r.opts.Sleep),
	)
	if err != nil {
		var exhausted *retry.ExhaustedError
		if errors.As(err, &exhausted) {
			if errors.Is(exhausted.Err, errNoMaster) {
				return Resolution{}, &ResolutionTimeout{
					ClusterID: clusterID,
					Attempts:  exhausted.Attempts,
					Waited:    exhausted.Waited,
				}
			}
			return Resolution{}, fmt.Errorf("cluster directory query for %s: %w", clusterID, exhausted)
		}
		return Resolution{}, err
	}

	master := r.pickMaster(snap.masters)
	if len(snap.masters) > 1 {
		r.opts.Logger.Printf("WARNING: %d members claim the master role (%v); selected %s by %s",
			len(snap.masters), hostnames(snap.masters), master.Hostname, r.opts.TieBreak)
	}

	topo := newTopology(master.Hostname, snap.management)
	r.opts.Logger.Printf("Found master: %s and management nodes: %v", topo.MasterHost, topo.ManagementHosts)

	return Resolution{
		Topology: topo,
		Source:   SourceDiscovery,
		Attempts: attempts,
		Waited:   time.Duration(attempts-1) * r.opts.Interval,
		Masters:  hostnames(snap.masters),
	}, nil
}

type snapshot struct {
	masters    []ClusterMember
	management []string
}

// partition splits members into master candidates and management hostnames,
// both in directory order.
func (r *Resolver) partition(clusterID string, members []ClusterMember) snapshot {
	var s snapshot
	for _, m := range members {
		if m.ClusterID != "" && m.ClusterID != clusterID {
			continue
		}
		if m.Hostname == "" {
			r.opts.Logger.Printf("Ignoring cluster member without hostname (ipv4=%s)", m.IPv4)
			continue
		}
		if m.IsManagement {
			s.management = append(s.management, m.Hostname)
		}
		if m.IsMaster {
			s.masters = append(s.masters, m)
		}
	}
	return s
}

func (r *Resolver) pickMaster(candidates []ClusterMember) ClusterMember {
	if r.opts.TieBreak == TieBreakFirstSeen || len(candidates) == 1 {
		return candidates[0]
	}
	sorted := append([]ClusterMember(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Hostname < sorted[j].Hostname
	})
	return sorted[0]
}

func hostnames(members []ClusterMember) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.Hostname)
	}
	return out
}

// Resolve resolves with default options.
func Resolve(ctx context.Context, clusterID string, dir Directory, override *ManualOverride) (Topology, error) {
	return NewResolver(Options{}).Resolve(ctx, clusterID, dir, override)
}
