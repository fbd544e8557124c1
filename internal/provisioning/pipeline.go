package provisioning

import (
	"fmt"
	"time"
)

// RunPhases executes all bootstrap phases sequentially.
func RunPhases(ctx *Context, phases []Phase) error {
	start := ctx.Now()
	ctx.Observer.Printf("Starting bootstrap with %d phases...", len(phases))

	for i, phase := range phases {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("bootstrap cancelled before %s phase: %w", phase.Name(), err)
		}

		phaseStart := ctx.Now()
		name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases))
		ctx.Observer.Progress(phase.Name(), i, len(phases))
		LogPhaseStart(ctx.Observer, name)

		if err := phase.Provision(ctx); err != nil {
			LogPhaseFailed(ctx.Observer, name, err)
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		elapsed := ctx.Now().Sub(phaseStart)
		ctx.State.PhaseDurations[phase.Name()] = elapsed
		if ctx.Metrics != nil {
			ctx.Metrics.ObservePhase(phase.Name(), elapsed)
		}
		LogPhaseComplete(ctx.Observer, name, elapsed)
	}

	ctx.Observer.Printf("Bootstrap completed in %v (%d files changed)",
		ctx.Now().Sub(start).Round(time.Millisecond), len(ctx.State.Changed))
	return nil
}
