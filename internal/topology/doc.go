// Package topology resolves which cluster member is the Symphony master and
// which members run management services.
//
// A node bootstrapping into the grid calls [Resolver.Resolve] with its cluster
// ID and a [Directory]. The resolver polls the directory until a master has
// registered (bounded by Options.MaxRetries), then returns a [Topology] whose
// management host order is identical on every node that saw the same snapshot.
// A [ManualOverride] skips discovery entirely.
//
// Management hosts are ordered by comparing the second character of each hostname
// only. Every node in an existing grid renders its EGO files with this order,
// so changing it would make new nodes disagree with running ones.
package topology
