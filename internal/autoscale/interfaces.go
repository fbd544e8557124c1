package autoscale

import (
	"context"
	"time"

	"github.com/imamik/symphonyctl/internal/platform/ego"
)

// Grid is the view of the Symphony cluster the jobs need.
// Implemented by *ego.Client.
type Grid interface {
	ResourceStatus(ctx context.Context) ([]ego.HostStatus, error)
	CloseHost(ctx context.Context, host string, reclaim bool) error
	RemoveHost(ctx context.Context, host string) error
	EnabledApps(ctx context.Context) ([]string, error)
	OpenSessions(ctx context.Context, app string) ([]ego.Session, error)
	RecentTaskRuntimes(ctx context.Context, app string) ([]time.Duration, error)
	ComputeSlots(ctx context.Context) (ego.Slots, error)
}

// Logger is the logging surface of the jobs.
type Logger interface {
	Printf(format string, v ...any)
}
