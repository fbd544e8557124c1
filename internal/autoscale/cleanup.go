package autoscale

import (
	"context"
	"errors"

	"github.com/imamik/symphonyctl/internal/platform/ego"
)

// CleanupResult lists what a cleanup run did.
type CleanupResult struct {
	Statuses []ego.HostStatus
	Removed  []string
}

// HostRemovedFunc is called after a host was removed from the grid.
type HostRemovedFunc func(ctx context.Context, host string) error

// Cleanup closes and removes every host EGO reports as unavail.
// All unavail hosts are closed before any is removed. Failures on one host
// do not stop the others; they are joined into the returned error.
func Cleanup(ctx context.Context, grid Grid, log Logger, dryRun bool, onRemoved HostRemovedFunc) (*CleanupResult, error) {
	statuses, err := grid.ResourceStatus(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("Current resource states: %v", statuses)

	res := &CleanupResult{Statuses: statuses}
	var unavail []string
	for _, s := range statuses {
		if ego.IsUnavail(s.Status) {
			unavail = append(unavail, s.Host)
		}
	}
	if len(unavail) == 0 {
		return res, nil
	}

	var errs []error
	closed := make(map[string]bool, len(unavail))
	for _, h := range unavail {
		if dryRun {
			log.Printf("Would close unavail host %s", h)
			continue
		}
		log.Printf("Closing unavail host %s", h)
		if err := grid.CloseHost(ctx, h, false); err != nil {
			errs = append(errs, err)
			continue
		}
		closed[h] = true
	}

	for _, h := range unavail {
		if dryRun {
			log.Printf("Would remove unavail host %s", h)
			continue
		}
		if !closed[h] {
			continue
		}
		log.Printf("Removing unavail host %s", h)
		if err := grid.RemoveHost(ctx, h); err != nil {
			errs = append(errs, err)
			continue
		}
		res.Removed = append(res.Removed, h)
		if onRemoved != nil {
			if err := onRemoved(ctx, h); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return res, errors.Join(errs...)
}
