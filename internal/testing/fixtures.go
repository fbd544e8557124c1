package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/imamik/symphonyctl/internal/platform/files"
)

// Accounts known to the fixture's ID resolver.
var fixtureIDs = map[string]int{
	"root":     0,
	"egoadmin": 61111,
}

// Owner is a recorded chown.
type Owner struct {
	UID, GID int
}

// NodeFixture is a temporary node root. Its file store resolves the root and
// egoadmin accounts without touching the system account database and records
// ownership changes instead of applying them.
type NodeFixture struct {
	Root  string
	Store *files.Store

	mu     sync.Mutex
	owners map[string]Owner
}

// NewNodeFixture creates a fixture below t.TempDir().
func NewNodeFixture(t *testing.T, opts ...files.Option) *NodeFixture {
	t.Helper()
	f := &NodeFixture{
		Root:   t.TempDir(),
		owners: make(map[string]Owner),
	}
	base := []files.Option{
		files.WithIDResolver(fixtureResolver{}),
		files.WithChown(f.chown),
	}
	f.Store = files.NewStore(append(base, opts...)...)
	return f
}

func (f *NodeFixture) chown(path string, uid, gid int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Atomic writes chown the temp file before renaming it into place.
	f.owners[filepath.Join(filepath.Dir(path), trimTemp(filepath.Base(path)))] = Owner{uid, gid}
	return nil
}

// OwnerOf returns the last ownership recorded for the node path p.
func (f *NodeFixture) OwnerOf(p string) (Owner, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.owners[f.Path(p)]
	return o, ok
}

// Path maps a node path below the fixture root.
func (f *NodeFixture) Path(p string) string {
	return filepath.Join(f.Root, p)
}

// ReadFile reads the node path p.
func (f *NodeFixture) ReadFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(f.Path(p))
	require.NoError(t, err)
	return string(data)
}

// WriteFile seeds the node path p.
func (f *NodeFixture) WriteFile(t *testing.T, p, content string, mode os.FileMode) {
	t.Helper()
	full := f.Path(p)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), mode))
}

// Exists reports whether the node path p exists (without following links).
func (f *NodeFixture) Exists(p string) bool {
	_, err := os.Lstat(f.Path(p))
	return err == nil
}

// Mode returns the permission bits of the node path p.
func (f *NodeFixture) Mode(t *testing.T, p string) os.FileMode {
	t.Helper()
	info, err := os.Stat(f.Path(p))
	require.NoError(t, err)
	return info.Mode().Perm()
}

type fixtureResolver struct{}

func (fixtureResolver) UID(name string) (int, error) { return lookupID(name) }
func (fixtureResolver) GID(name string) (int, error) { return lookupID(name) }

func lookupID(name string) (int, error) {
	id, ok := fixtureIDs[name]
	if !ok {
		return 0, fmt.Errorf("unknown account %s", name)
	}
	return id, nil
}

// trimTemp maps ".name.tmp-123" back to "name".
func trimTemp(base string) string {
	if !strings.HasPrefix(base, ".") {
		return base
	}
	if i := strings.LastIndex(base, ".tmp-"); i > 0 {
		return base[1:i]
	}
	return base
}
