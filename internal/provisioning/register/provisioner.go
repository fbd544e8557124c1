package register

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/symphonyctl/internal/provisioning"
	"github.com/imamik/symphonyctl/internal/util/retry"
)

const phase = "register"

// Provisioner writes this node's member record to the directory.
type Provisioner struct {
	maxRetries int
}

// NewProvisioner creates a register provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{maxRetries: 3}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	cfg := ctx.Config
	member := cfg.Node.Member(cfg.Cluster.ID)

	if ctx.Registrar == nil {
		provisioning.LogResourceSkipped(ctx.Observer, phase, "member", member.Hostname, "directory backend does not accept registrations")
		return nil
	}
	if cfg.DryRun {
		ctx.Observer.Printf("[%s] dry run, would register %s (master=%t management=%t)",
			phase, member.Hostname, member.IsMaster, member.IsManagement)
		return nil
	}

	regCtx, cancel := context.WithTimeout(ctx, ctx.Timeouts.Register)
	defer cancel()

	err := retry.WithExponentialBackoff(regCtx, func() error {
		return ctx.Registrar.Register(regCtx, member)
	},
		retry.WithMaxRetries(p.maxRetries),
		retry.WithInitialDelay(2*time.Second),
		retry.WithMaxDelay(15*time.Second),
		retry.WithSleeper(ctx.Sleep),
	)
	if err != nil {
		// With a manual override nothing downstream reads the directory.
		if cfg.ManualOverride() != nil {
			ctx.Observer.Event(provisioning.Event{
				Type:     provisioning.EventWarning,
				Phase:    phase,
				Resource: member.Hostname,
				Message:  "registration failed, continuing with manual override",
				Fields:   map[string]string{"error": err.Error()},
			})
			return nil
		}
		return fmt.Errorf("failed to register %s: %w", member.Hostname, err)
	}

	ctx.State.Registered = true
	ctx.Observer.Event(provisioning.Event{
		Type:     provisioning.EventResourceChanged,
		Phase:    phase,
		Resource: member.Hostname,
		Message:  "member registered",
		Fields: map[string]string{
			"cluster":    member.ClusterID,
			"master":     fmt.Sprint(member.IsMaster),
			"management": fmt.Sprint(member.IsManagement),
		},
	})
	return nil
}
