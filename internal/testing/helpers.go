package testing

import (
	"context"
	"testing"
	"time"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// NoSleep is a retry.Sleeper that returns immediately unless ctx is done.
func NoSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
