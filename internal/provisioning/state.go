package provisioning

import (
	"time"

	"github.com/imamik/symphonyctl/internal/topology"
)

// State holds the shared results of bootstrap phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	// Discovery results (populated by the discovery phase)
	Topology   topology.Topology
	Resolution topology.Resolution
	Resolved   bool

	// Account results
	AdminKeyFingerprint string // Set only when a new key pair was generated

	// Files whose content, mode or owner changed during this run
	Changed []string

	// HostFactoryRestarted is true when the service was bounced
	HostFactoryRestarted bool

	// Registered is true when this node was published to the directory
	Registered bool

	// PhaseDurations records how long every completed phase took
	PhaseDurations map[string]time.Duration
}

// NewState creates an empty bootstrap state.
func NewState() *State {
	return &State{
		PhaseDurations: make(map[string]time.Duration),
	}
}

// MarkChanged records path when changed is true.
func (s *State) MarkChanged(path string, changed bool) {
	if changed {
		s.Changed = append(s.Changed, path)
	}
}
