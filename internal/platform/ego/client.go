package ego

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// HostFactoryService is the EGO service name of HostFactory.
const HostFactoryService = "HostFactory"

// StatusUnavail is the host status of a node that left the cluster.
const StatusUnavail = "unavail"

// History window used for runtime estimates.
const (
	recentWindow  = ".-2:,"
	recentTaskCap = "100"
)

// Client runs egosh and soamview as the SOAM user.
type Client struct {
	runner   Runner
	user     string
	password string
}

// NewClient creates a client authenticating soamview calls with user/password.
func NewClient(runner Runner, user, password string) *Client {
	return &Client{runner: runner, user: user, password: password}
}

func (c *Client) egosh(ctx context.Context, args ...string) (string, error) {
	return c.runner.Run(ctx, Command{Name: "egosh", Args: args})
}

func (c *Client) soamview(ctx context.Context, args ...string) (string, error) {
	args = append(args, "-u", c.user, "-x", c.password)
	return c.runner.Run(ctx, Command{Name: "soamview", Args: args, Secret: []string{c.password}})
}

// ResourceStatus returns the state of every host known to EGO.
func (c *Client) ResourceStatus(ctx context.Context) ([]HostStatus, error) {
	out, err := c.egosh(ctx, "resource", "view")
	if err != nil {
		return nil, fmt.Errorf("failed to view resources: %w", err)
	}
	return ParseResourceView(out), nil
}

// CloseHost closes a host to new work. With reclaim, running work is
// reclaimed first.
func (c *Client) CloseHost(ctx context.Context, host string, reclaim bool) error {
	args := []string{"resource", "close"}
	if reclaim {
		args = append(args, "-reclaim")
	}
	if _, err := c.egosh(ctx, append(args, host)...); err != nil {
		return fmt.Errorf("failed to close host %s: %w", host, err)
	}
	return nil
}

// RemoveHost removes a host from the cluster.
func (c *Client) RemoveHost(ctx context.Context, host string) error {
	if _, err := c.egosh(ctx, "resource", "remove", host); err != nil {
		return fmt.Errorf("failed to remove host %s: %w", host, err)
	}
	return nil
}

// EnabledApps lists enabled Symphony applications.
func (c *Client) EnabledApps(ctx context.Context) ([]string, error) {
	out, err := c.soamview(ctx, "app", "-s", "enabled")
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return ParseApps(out), nil
}

// OpenSessions lists the open sessions of app.
func (c *Client) OpenSessions(ctx context.Context, app string) ([]Session, error) {
	out, err := c.soamview(ctx, "session", app, "-s", "open")
	if err != nil {
		return nil, fmt.Errorf("failed to list open sessions of %s: %w", app, err)
	}
	return ParseSessions(out)
}

// RecentTaskRuntimes returns runtimes of up to 100 tasks per session that
// completed in the last two hours.
func (c *Client) RecentTaskRuntimes(ctx context.Context, app string) ([]time.Duration, error) {
	out, err := c.soamview(ctx, "session", app, "-c", recentWindow, "-s", "all")
	if err != nil {
		return nil, fmt.Errorf("failed to list recent sessions of %s: %w", app, err)
	}
	sessions, err := ParseSessions(out)
	if err != nil {
		return nil, err
	}

	var runtimes []time.Duration
	for _, s := range sessions {
		out, err := c.soamview(ctx, "task", app+":"+s.ID, "-c", recentWindow, "-s", "done", "-n", recentTaskCap)
		if err != nil {
			return nil, fmt.Errorf("failed to list tasks of %s:%s: %w", app, s.ID, err)
		}
		r, err := ParseTaskRuntimes(out)
		if err != nil {
			return nil, fmt.Errorf("session %s:%s: %w", app, s.ID, err)
		}
		runtimes = append(runtimes, r...)
	}
	return runtimes, nil
}

// ComputeSlots returns the ComputeHosts slot counts.
func (c *Client) ComputeSlots(ctx context.Context) (Slots, error) {
	out, err := c.egosh(ctx, "rg")
	if err != nil {
		return Slots{}, fmt.Errorf("failed to list resource groups: %w", err)
	}
	return ParseResourceGroups(out)
}

// Logon authenticates the EGO session for later service commands.
func (c *Client) Logon(ctx context.Context) error {
	_, err := c.runner.Run(ctx, Command{
		Name:   "egosh",
		Args:   []string{"user", "logon", "-u", c.user, "-x", c.password},
		Secret: []string{c.password},
	})
	if err != nil {
		return fmt.Errorf("failed to log on as %s: %w", c.user, err)
	}
	return nil
}

// StopService stops an EGO service.
func (c *Client) StopService(ctx context.Context, name string) error {
	if _, err := c.egosh(ctx, "service", "stop", name); err != nil {
		return fmt.Errorf("failed to stop service %s: %w", name, err)
	}
	return nil
}

// StartService starts an EGO service.
func (c *Client) StartService(ctx context.Context, name string) error {
	if _, err := c.egosh(ctx, "service", "start", name); err != nil {
		return fmt.Errorf("failed to start service %s: %w", name, err)
	}
	return nil
}

// IsUnavail reports whether an EGO host status means the host is gone.
func IsUnavail(status string) bool {
	return strings.EqualFold(status, StatusUnavail)
}
