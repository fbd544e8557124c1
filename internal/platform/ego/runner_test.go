package ego

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner(t *testing.T) {
	t.Parallel()
	r := &ExecRunner{Timeout: 10 * time.Second}

	out, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo hello"}})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)

	_, err = r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo boom >&2; exit 3"}})
	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, 3, cmdErr.ExitCode)
	assert.Equal(t, "boom", cmdErr.Stderr)
}

func TestExecRunner_SourcesProfile(t *testing.T) {
	t.Parallel()
	if _, err := os.Stat("/bin/bash"); err != nil {
		t.Skip("bash not available")
	}
	profile := filepath.Join(t.TempDir(), "profile.platform")
	require.NoError(t, os.WriteFile(profile, []byte("export EGO_TOP=/opt/ibm/spectrumcomputing\n"), 0o644))

	r := &ExecRunner{Profile: profile}
	out, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo $EGO_TOP"}})
	require.NoError(t, err)
	assert.Equal(t, "/opt/ibm/spectrumcomputing\n", out)
}

func TestExecRunner_Timeout(t *testing.T) {
	t.Parallel()
	r := &ExecRunner{Timeout: 50 * time.Millisecond}
	_, err := r.Run(context.Background(), Command{Name: "sleep", Args: []string{"5"}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
