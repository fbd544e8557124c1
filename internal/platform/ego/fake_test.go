package ego

import (
	"context"
	"strings"
	"sync"
)

// fakeRunner answers commands from a script keyed by the masked command line.
type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	errs    map[string]error
	calls   []Command
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeRunner) Run(_ context.Context, cmd Command) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)
	key := cmd.String()
	return f.outputs[key], f.errs[key]
}

func (f *fakeRunner) lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.String())
	}
	return out
}

func (f *fakeRunner) ran(prefix string) bool {
	for _, l := range f.lines() {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}
