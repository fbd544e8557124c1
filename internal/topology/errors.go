package topology

import (
	"errors"
	"fmt"
	"time"
)

// errNoMaster marks a snapshot without any master candidate.
var errNoMaster = errors.New("no master registered yet")

// ResolutionTimeout is returned when no master appeared within the retry budget.
// It is terminal for the bootstrap run.
type ResolutionTimeout struct {
	ClusterID string
	Attempts  int
	Waited    time.Duration
}

func (e *ResolutionTimeout) Error() string {
	return fmt.Sprintf("timed out waiting for master of cluster %q after %d attempts (%v)",
		e.ClusterID, e.Attempts, e.Waited)
}

// ConfigError reports a malformed manual override or resolver input.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsResolutionTimeout reports whether err wraps a *ResolutionTimeout.
func IsResolutionTimeout(err error) bool {
	var rt *ResolutionTimeout
	return errors.As(err, &rt)
}

// IsConfigError reports whether err wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
