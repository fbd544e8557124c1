package autoscale

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/imamik/symphonyctl/internal/platform/files"
)

// IdleState is persisted between autostop runs.
type IdleState struct {
	IdleSince  time.Time `yaml:"idleSince,omitempty"`
	LastActive time.Time `yaml:"lastActive,omitempty"`
	JobsSeen   bool      `yaml:"jobsSeen"`
}

// StopDecision is the outcome of one autostop evaluation.
type StopDecision struct {
	Tasks     int
	IdleFor   time.Duration
	Threshold time.Duration
	Stop      bool
}

// IdleOptions are the idle thresholds before and after the first job.
type IdleOptions struct {
	AfterJobs  time.Duration
	BeforeJobs time.Duration
}

// IdleTracker decides when the grid has been idle long enough to stop.
type IdleTracker struct {
	grid  Grid
	store *files.Store
	path  string
	opts  IdleOptions
	now   func() time.Time
}

// NewIdleTracker creates a tracker persisting its state at path.
func NewIdleTracker(grid Grid, store *files.Store, path string, opts IdleOptions) *IdleTracker {
	return &IdleTracker{grid: grid, store: store, path: path, opts: opts, now: time.Now}
}

// Evaluate counts running and pending tasks across enabled applications and
// updates the idle clock. Any task resets it.
func (t *IdleTracker) Evaluate(ctx context.Context) (*StopDecision, error) {
	apps, err := t.grid.EnabledApps(ctx)
	if err != nil {
		return nil, err
	}
	tasks := 0
	for _, app := range apps {
		sessions, err := t.grid.OpenSessions(ctx, app)
		if err != nil {
			return nil, err
		}
		for _, s := range sessions {
			tasks += s.Running + s.Pending
		}
	}

	state, err := t.load()
	if err != nil {
		return nil, err
	}

	now := t.now()
	d := &StopDecision{Tasks: tasks, Threshold: t.opts.BeforeJobs}
	if tasks > 0 {
		state.JobsSeen = true
		state.IdleSince = time.Time{}
		state.LastActive = now
	} else if state.IdleSince.IsZero() {
		state.IdleSince = now
	}
	if state.JobsSeen {
		d.Threshold = t.opts.AfterJobs
	}
	if tasks == 0 {
		d.IdleFor = now.Sub(state.IdleSince)
		d.Stop = d.IdleFor >= d.Threshold
	}

	if err := t.save(state); err != nil {
		return nil, err
	}
	return d, nil
}

func (t *IdleTracker) load() (*IdleState, error) {
	data, err := files.ReadIfExists(t.path)
	if err != nil {
		return nil, err
	}
	var s IdleState
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse idle state %s: %w", t.path, err)
	}
	return &s, nil
}

func (t *IdleTracker) save(s *IdleState) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode idle state: %w", err)
	}
	_, err = t.store.Replace(files.Spec{Path: t.path, Content: data, Mode: 0o600})
	return err
}
