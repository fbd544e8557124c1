package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds the time limits of external commands and services.
// They are tuning knobs rather than node attributes, so they come from the
// environment only.
type Timeouts struct {
	Bootstrap        time.Duration // Overall limit for one bootstrap run
	EgoCommand       time.Duration // Limit for a single egosh/soamview invocation
	HostFactoryDrain time.Duration // Wait between stopping and starting HostFactory
	Register         time.Duration // Limit for publishing the member record
	UserCommand      time.Duration // Limit for getent/groupadd/useradd
	EgoRetries       int           // Attempts for egosh calls that race EGO startup
}

// BootstrapSlack is the time a bootstrap run needs besides waiting for the
// master to register.
const BootstrapSlack = 10 * time.Minute

// BootstrapFor returns the bootstrap limit for cfg. Unless a manual override
// skips discovery, the limit is raised to cover the whole master wait
// (interval x (max_retries-1)) plus registration and BootstrapSlack.
func (t *Timeouts) BootstrapFor(cfg *Config) time.Duration {
	if cfg.ManualOverride() != nil || cfg.Discovery.MaxRetries < 1 {
		return t.Bootstrap
	}
	floor := cfg.Discovery.Interval*time.Duration(cfg.Discovery.MaxRetries-1) + t.Register + BootstrapSlack
	if t.Bootstrap < floor {
		return floor
	}
	return t.Bootstrap
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - SYMPHONY_TIMEOUT_BOOTSTRAP (default: 30m)
//   - SYMPHONY_TIMEOUT_EGO_COMMAND (default: 2m)
//   - SYMPHONY_HOSTFACTORY_DRAIN (default: 5s)
//   - SYMPHONY_TIMEOUT_REGISTER (default: 1m)
//   - SYMPHONY_TIMEOUT_USER_COMMAND (default: 30s)
//   - SYMPHONY_EGO_RETRIES (default: 5)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Bootstrap:        parseDuration("SYMPHONY_TIMEOUT_BOOTSTRAP", 30*time.Minute),
		EgoCommand:       parseDuration("SYMPHONY_TIMEOUT_EGO_COMMAND", 2*time.Minute),
		HostFactoryDrain: parseDuration("SYMPHONY_HOSTFACTORY_DRAIN", 5*time.Second),
		Register:         parseDuration("SYMPHONY_TIMEOUT_REGISTER", time.Minute),
		UserCommand:      parseDuration("SYMPHONY_TIMEOUT_USER_COMMAND", 30*time.Second),
		EgoRetries:       parseInt("SYMPHONY_EGO_RETRIES", 5),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
