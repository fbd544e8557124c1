package provisioning

import (
	"fmt"
	"strings"

	"github.com/imamik/symphonyctl/internal/util/prerequisites"
)

// ValidationError represents a configuration validation error or warning.
type ValidationError struct {
	Field    string // Configuration field that failed validation
	Message  string // Human-readable error message
	Severity string // "error" or "warning"
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Field, ve.Message)
}

// IsError returns true if this is an error (not a warning).
func (ve ValidationError) IsError() bool {
	return ve.Severity == "error"
}

// ValidationPhase implements the Phase interface for pre-flight validation.
type ValidationPhase struct {
	check func([]prerequisites.Tool) *prerequisites.CheckResults
}

// NewValidationPhase creates a new validation phase.
func NewValidationPhase() *ValidationPhase {
	return &ValidationPhase{check: prerequisites.Check}
}

// Name implements the Phase interface.
func (vp *ValidationPhase) Name() string {
	return "validation"
}

// Provision implements the Phase interface.
func (vp *ValidationPhase) Provision(ctx *Context) error {
	ctx.Observer.Printf("[Validation] Running pre-flight validation...")

	allErrors := validate(ctx)
	allErrors = append(allErrors, vp.checkTools(ctx)...)

	var errs []ValidationError
	for _, ve := range allErrors {
		if ve.IsError() {
			errs = append(errs, ve)
			continue
		}
		LogValidationWarning(ctx.Observer, ve.Field, ve.Message)
	}

	if len(errs) > 0 {
		var errMsgs []string
		for _, e := range errs {
			errMsgs = append(errMsgs, e.Error())
		}
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(errMsgs, "\n  "))
	}

	ctx.Observer.Printf("[Validation] Validation passed")
	return nil
}

// checkTools verifies the system commands later phases shell out to.
// A dry run never executes them, so missing tools are only warnings there.
func (vp *ValidationPhase) checkTools(ctx *Context) []ValidationError {
	tools := prerequisites.AccountTools()
	if hostFactoryManaged(ctx) {
		tools = append(tools, prerequisites.EgoTools()[0])
	}

	results := vp.check(tools)
	var errs []ValidationError
	for _, tool := range results.Missing {
		severity := "warning"
		if tool.Required && !ctx.Config.DryRun {
			severity = "error"
		}
		errs = append(errs, ValidationError{
			Field:    "PATH",
			Message:  fmt.Sprintf("%s not found (%s)", tool.Name, tool.Description),
			Severity: severity,
		})
	}
	return errs
}

// validate runs all validation checks and returns any errors or warnings.
func validate(ctx *Context) []ValidationError {
	var errs []ValidationError
	cfg := ctx.Config

	if err := cfg.Validate(); err != nil {
		errs = append(errs, ValidationError{
			Field:    "config",
			Message:  err.Error(),
			Severity: "error",
		})
	}

	if cfg.ManualOverride() == nil && ctx.Directory == nil {
		errs = append(errs, ValidationError{
			Field:    "discovery.backend",
			Message:  "no cluster directory available and no manual override configured",
			Severity: "error",
		})
	}

	if cfg.ManualOverride() != nil {
		errs = append(errs, ValidationError{
			Field:    "override",
			Message:  "manual override is set, directory discovery is skipped",
			Severity: "warning",
		})
	}

	if cfg.Node.IsMaster && !cfg.Node.IsManagement {
		errs = append(errs, ValidationError{
			Field:    "node.is_management",
			Message:  "master node is not flagged as a management host",
			Severity: "warning",
		})
	}

	if cfg.Symphony.SharedFSInstall && cfg.Symphony.SharedFSMountpoint == "" {
		errs = append(errs, ValidationError{
			Field:    "symphony.shared_fs_mountpoint",
			Message:  "shared install without a mountpoint, EGO_TOP must already be shared",
			Severity: "warning",
		})
	}

	if cfg.Symphony.LicenseFile == "" {
		errs = append(errs, ValidationError{
			Field:    "symphony.license_file",
			Message:  "no license file configured, the community edition limits apply",
			Severity: "warning",
		})
	}

	if cfg.Autoscale.StopEnabled && cfg.Symphony.HostFactory.Enabled {
		errs = append(errs, ValidationError{
			Field:    "autoscale.stop_enabled",
			Message:  "autostop is not scheduled while HostFactory manages the cluster",
			Severity: "warning",
		})
	}

	if cfg.Symphony.DisableSSL {
		errs = append(errs, ValidationError{
			Field:    "symphony.disable_ssl",
			Message:  "SSL is disabled for EGO communication",
			Severity: "warning",
		})
	}

	return errs
}

// hostFactoryManaged reports whether this node runs HostFactory.
func hostFactoryManaged(ctx *Context) bool {
	return ctx.Config.Node.IsMaster && ctx.Config.Symphony.HostFactory.Enabled
}
