package ego

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Command is one invocation of an external tool.
type Command struct {
	Name string
	Args []string
	// Secret arguments are masked when the command is printed.
	Secret []string
}

// String renders the command with secrets masked.
func (c Command) String() string {
	parts := append([]string{c.Name}, c.Args...)
	for i, p := range parts {
		for _, s := range c.Secret {
			if s != "" && p == s {
				parts[i] = "****"
			}
		}
	}
	return strings.Join(parts, " ")
}

// Runner executes commands and returns their standard output.
type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// CommandError is a command that exited non-zero.
type CommandError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Command, e.ExitCode, e.Stderr)
}

// ExecRunner runs commands on the local host.
type ExecRunner struct {
	// Profile is sourced by bash before the command when set.
	Profile string
	// Timeout bounds each command; zero means no limit beyond ctx.
	Timeout time.Duration
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	name, args := cmd.Name, cmd.Args
	if r.Profile != "" {
		// $1 is the profile, the remaining arguments are the command.
		script := `. "$1" >/dev/null 2>&1; shift; exec "$@"`
		args = append([]string{"-c", script, "symphonyctl", r.Profile, cmd.Name}, cmd.Args...)
		name = "/bin/bash"
	}

	// #nosec G204 -- arguments come from configuration, not user input
	c := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	if err == nil {
		return stdout.String(), nil
	}
	if ctx.Err() != nil {
		return stdout.String(), fmt.Errorf("%s: %w", cmd, ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.String(), &CommandError{
			Command:  cmd.String(),
			ExitCode: exitErr.ExitCode(),
			Stderr:   strings.TrimSpace(stderr.String()),
		}
	}
	return stdout.String(), fmt.Errorf("failed to run %s: %w", cmd, err)
}
