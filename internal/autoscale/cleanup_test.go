package autoscale

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/symphonyctl/internal/platform/ego"
)

func TestCleanup(t *testing.T) {
	t.Parallel()
	grid := &fakeGrid{statuses: []ego.HostStatus{
		{Host: "mgmt1", Status: "ok"},
		{Host: "ip-5", Status: "unavail"},
		{Host: "ip-6", Status: "UNAVAIL"},
	}}
	var deregistered []string

	res, err := Cleanup(context.Background(), grid, discardLogger{}, false, func(_ context.Context, host string) error {
		deregistered = append(deregistered, host)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"view",
		"close ip-5 reclaim=false",
		"close ip-6 reclaim=false",
		"remove ip-5",
		"remove ip-6",
	}, grid.ops, "all hosts are closed before any is removed")
	assert.Equal(t, []string{"ip-5", "ip-6"}, res.Removed)
	assert.Equal(t, []string{"ip-5", "ip-6"}, deregistered)
}

func TestCleanup_DryRun(t *testing.T) {
	t.Parallel()
	grid := &fakeGrid{statuses: []ego.HostStatus{{Host: "ip-5", Status: "unavail"}}}

	res, err := Cleanup(context.Background(), grid, discardLogger{}, true, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"view"}, grid.ops)
	assert.Empty(t, res.Removed)
}

func TestCleanup_ContinuesPastFailures(t *testing.T) {
	t.Parallel()
	grid := &fakeGrid{
		statuses: []ego.HostStatus{{Host: "a", Status: "unavail"}, {Host: "b", Status: "unavail"}},
		failOn:   map[string]error{"close a reclaim=false": errors.New("host locked")},
	}

	res, err := Cleanup(context.Background(), grid, discardLogger{}, false, nil)
	assert.ErrorContains(t, err, "host locked")
	assert.Equal(t, []string{"b"}, res.Removed)
	assert.NotContains(t, grid.ops, "remove a")
}

func TestCleanup_ViewFailure(t *testing.T) {
	t.Parallel()
	grid := &fakeGrid{failOn: map[string]error{"view": errors.New("egosh not logged on")}}
	_, err := Cleanup(context.Background(), grid, discardLogger{}, false, nil)
	assert.ErrorContains(t, err, "not logged on")
}
