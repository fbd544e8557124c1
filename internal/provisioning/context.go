package provisioning

import (
	"context"
	"path/filepath"
	"time"

	"github.com/imamik/symphonyctl/internal/config"
	"github.com/imamik/symphonyctl/internal/directory"
	"github.com/imamik/symphonyctl/internal/metrics"
	"github.com/imamik/symphonyctl/internal/platform/ego"
	"github.com/imamik/symphonyctl/internal/platform/files"
	"github.com/imamik/symphonyctl/internal/topology"
	"github.com/imamik/symphonyctl/internal/util/naming"
	"github.com/imamik/symphonyctl/internal/util/retry"
)

// Context wraps all dependencies and state needed for a bootstrap phase.
type Context struct {
	context.Context
	Config   *config.Config
	State    *State
	Observer Observer
	Timeouts *config.Timeouts

	Files  *files.Store
	Runner ego.Runner

	// Directory is queried during discovery; Registrar publishes this
	// node. Either may be nil when a manual override is configured.
	Directory topology.Directory
	Registrar directory.Registrar

	// Metrics is nil when the textfile is disabled.
	Metrics *metrics.Recorder

	Sleep retry.Sleeper
	Now   func() time.Time
}

// Option configures a Context.
type Option func(*Context)

// WithObserver replaces the console observer.
func WithObserver(o Observer) Option {
	return func(c *Context) { c.Observer = o }
}

// WithFiles replaces the file store.
func WithFiles(s *files.Store) Option {
	return func(c *Context) { c.Files = s }
}

// WithRunner replaces the command runner.
func WithRunner(r ego.Runner) Option {
	return func(c *Context) { c.Runner = r }
}

// WithDirectory sets the directory queried during discovery.
func WithDirectory(d topology.Directory) Option {
	return func(c *Context) { c.Directory = d }
}

// WithRegistrar sets the backend this node registers with.
func WithRegistrar(r directory.Registrar) Option {
	return func(c *Context) { c.Registrar = r }
}

// WithMetrics enables phase metrics.
func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Context) { c.Metrics = m }
}

// WithTimeouts replaces the environment-derived timeouts.
func WithTimeouts(t *config.Timeouts) Option {
	return func(c *Context) { c.Timeouts = t }
}

// WithSleeper replaces every wait of the run.
func WithSleeper(s retry.Sleeper) Option {
	return func(c *Context) { c.Sleep = s }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Context) { c.Now = now }
}

// NewContext creates a new bootstrap context.
func NewContext(ctx context.Context, cfg *config.Config, opts ...Option) *Context {
	c := &Context{
		Context: ctx,
		Config:  cfg,
		State:   NewState(),
		Sleep:   retry.SleepContext,
		Now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.Timeouts == nil {
		c.Timeouts = config.LoadTimeouts()
	}
	if c.Observer == nil {
		c.Observer = NewConsoleObserver(nil)
	}
	if c.Files == nil {
		c.Files = files.NewStore(files.WithDryRun(cfg.DryRun))
	}
	if c.Runner == nil {
		c.Runner = &ego.ExecRunner{Timeout: c.Timeouts.UserCommand}
	}
	return c
}

// Path maps an absolute node path below the configured root.
func (c *Context) Path(p string) string {
	return filepath.Join(c.Config.Root, p)
}

// Ego returns an EGO client that sources the Symphony profile before every
// command.
func (c *Context) Ego() *ego.Client {
	runner := c.Runner
	if _, ok := runner.(*ego.ExecRunner); ok {
		runner = &ego.ExecRunner{
			Profile: naming.ProfilePlatform(c.Config.Symphony.EgoTop),
			Timeout: c.Timeouts.EgoCommand,
		}
	}
	soam := c.Config.Symphony.SOAM
	return ego.NewClient(runner, soam.User, soam.Password)
}
