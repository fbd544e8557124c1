// Package handlers implements the business logic behind the CLI commands.
//
// Handlers load the configuration, wire the directory backend, the EGO
// client and the metrics recorder into a provisioning context and run the
// phases or jobs of one command. External collaborators are created through
// package-level factory variables so tests can replace them.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/imamik/symphonyctl/internal/config"
	"github.com/imamik/symphonyctl/internal/directory"
	"github.com/imamik/symphonyctl/internal/metrics"
	"github.com/imamik/symphonyctl/internal/provisioning"
	"github.com/imamik/symphonyctl/internal/ui/style"
	"github.com/imamik/symphonyctl/internal/util/naming"
)

// GlobalOptions carries the persistent flags of the root command.
type GlobalOptions struct {
	ConfigPath string
	Viper      *viper.Viper
}

// configFile is the config file the scheduled jobs are pointed at.
func (o *GlobalOptions) configFile() string {
	path := o.ConfigPath
	if path == "" && o.Viper != nil {
		path = o.Viper.ConfigFileUsed()
	}
	if path == "" {
		return filepath.Join(config.DefaultConfigDir, "symphonyctl.yaml")
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Factory function variables - can be replaced in tests.
var (
	// loadConfig reads and validates the node configuration.
	loadConfig = func(opts *GlobalOptions) (*config.Config, error) {
		v := opts.Viper
		if v == nil {
			v = config.NewViper()
		}
		return config.Load(v, opts.ConfigPath)
	}

	// openDirectory builds the configured directory backend.
	openDirectory = directory.Open

	// contextOptions are applied to every provisioning context before the
	// options of the handler itself.
	contextOptions = func() []provisioning.Option { return nil }

	// logOutput receives log lines; command results go to stdout.
	logOutput io.Writer = os.Stderr
	stdout    io.Writer = os.Stdout

	isTTY    = style.IsInteractiveTTY
	newRunID = uuid.NewString
)

// newContext builds the provisioning context of one command run. Every log
// line carries the run ID, the command and the node identity.
func newContext(ctx context.Context, cfg *config.Config, command string, extra ...provisioning.Option) (*provisioning.Context, error) {
	logger, err := provisioning.NewLogger(logOutput, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	observer := provisioning.NewConsoleObserver(logger).WithFields(map[string]string{
		"run_id":  newRunID(),
		"command": command,
		"cluster": cfg.Cluster.ID,
		"node":    cfg.Node.Hostname,
	})

	opts := []provisioning.Option{provisioning.WithObserver(observer)}
	opts = append(opts, contextOptions()...)
	opts = append(opts, extra...)
	return provisioning.NewContext(ctx, cfg, opts...), nil
}

// openBackend opens the configured directory backend.
func openBackend(pCtx *provisioning.Context) (directory.Backend, error) {
	cfg := pCtx.Config.Discovery
	backend, err := openDirectory(pCtx, cfg, pCtx.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s directory: %w", cfg.Backend, err)
	}
	return backend, nil
}

// newRecorder returns a metrics recorder when the textfile is enabled.
func newRecorder(cfg *config.Config) *metrics.Recorder {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.NewRecorder()
}

// writeMetrics writes the textfile of job. Failures are logged; metrics never
// fail a run.
func writeMetrics(pCtx *provisioning.Context, recorder *metrics.Recorder, job string) {
	if recorder == nil {
		return
	}
	cfg := pCtx.Config
	path := naming.MetricsTextfile(pCtx.Path(cfg.Metrics.TextfileDir), cfg.Symphony.AppName, job)
	if cfg.DryRun {
		pCtx.Observer.Printf("Dry run, skipping metrics textfile %s", path)
		return
	}
	if err := recorder.WriteTextfile(path); err != nil {
		pCtx.Observer.Printf("Warning: %v", err)
	}
}
