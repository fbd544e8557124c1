package files

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
)

// Spec describes the desired state of one file.
type Spec struct {
	Path    string
	Content []byte
	Mode    fs.FileMode
	// Owner and Group are account names; empty leaves ownership unchanged.
	Owner string
	Group string
}

// IDResolver maps account names to numeric IDs.
type IDResolver interface {
	UID(name string) (int, error)
	GID(name string) (int, error)
}

// SystemIDs resolves IDs from the local account database.
type SystemIDs struct{}

func (SystemIDs) UID(name string) (int, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return 0, fmt.Errorf("lookup user %s: %w", name, err)
	}
	return strconv.Atoi(u.Uid)
}

func (SystemIDs) GID(name string) (int, error) {
	g, err := user.LookupGroup(name)
	if err != nil {
		return 0, fmt.Errorf("lookup group %s: %w", name, err)
	}
	return strconv.Atoi(g.Gid)
}

// Store applies file specs to the local filesystem.
type Store struct {
	ids    IDResolver
	chown  func(path string, uid, gid int) error
	dryRun bool
}

// Option configures a Store.
type Option func(*Store)

// WithIDResolver replaces the account lookup.
func WithIDResolver(r IDResolver) Option {
	return func(s *Store) { s.ids = r }
}

// WithChown replaces os.Lchown.
func WithChown(fn func(path string, uid, gid int) error) Option {
	return func(s *Store) { s.chown = fn }
}

// WithDryRun reports changes without touching the filesystem.
func WithDryRun(dryRun bool) Option {
	return func(s *Store) { s.dryRun = dryRun }
}

// NewStore creates a Store.
func NewStore(opts ...Option) *Store {
	s := &Store{ids: SystemIDs{}, chown: os.Lchown}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Replace makes the file match spec. It reports whether anything changed.
func (s *Store) Replace(spec Spec) (bool, error) {
	existing, err := os.ReadFile(spec.Path)
	switch {
	case err == nil:
		if bytes.Equal(existing, spec.Content) {
			return s.fixAttributes(spec)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return false, fmt.Errorf("failed to read %s: %w", spec.Path, err)
	}

	if s.dryRun {
		return true, nil
	}
	if err := s.writeAtomic(spec); err != nil {
		return false, err
	}
	return true, nil
}

// CreateIfMissing writes spec only when the path does not exist yet.
func (s *Store) CreateIfMissing(spec Spec) (bool, error) {
	if _, err := os.Lstat(spec.Path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %s: %w", spec.Path, err)
	}
	return s.Replace(spec)
}

// EnsureDir creates path (and parents) and applies mode and ownership.
func (s *Store) EnsureDir(path string, mode fs.FileMode, owner, group string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		return false, fmt.Errorf("%s exists and is not a directory", path)
	}
	created := errors.Is(err, fs.ErrNotExist)
	if err != nil && !created {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if s.dryRun {
		return created, nil
	}

	if created {
		if err := os.MkdirAll(path, mode); err != nil {
			return false, fmt.Errorf("failed to create %s: %w", path, err)
		}
	}
	if err := os.Chmod(path, mode); err != nil {
		return false, fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := s.applyOwner(path, owner, group); err != nil {
		return false, err
	}
	return created, nil
}

// Symlink points link at target unless link is already a symlink.
// A regular file at link is replaced.
func (s *Store) Symlink(target, link string) (bool, error) {
	info, err := os.Lstat(link)
	if err == nil && info.Mode()&fs.ModeSymlink != 0 {
		return false, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %s: %w", link, err)
	}
	if s.dryRun {
		return true, nil
	}

	if err == nil {
		if err := os.Remove(link); err != nil {
			return false, fmt.Errorf("failed to remove %s: %w", link, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return false, fmt.Errorf("failed to create %s: %w", filepath.Dir(link), err)
	}
	if err := os.Symlink(target, link); err != nil {
		return false, fmt.Errorf("failed to link %s to %s: %w", link, target, err)
	}
	return true, nil
}

func (s *Store) writeAtomic(spec Spec) error {
	dir := filepath.Dir(spec.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(spec.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", spec.Path, err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(spec.Content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", spec.Path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", spec.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", spec.Path, err)
	}

	if err := os.Chmod(tmpPath, spec.Mode); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", spec.Path, err)
	}
	if err := s.applyOwner(tmpPath, spec.Owner, spec.Group); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, spec.Path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", spec.Path, err)
	}
	return nil
}

// fixAttributes corrects mode and ownership of a file whose content matches.
func (s *Store) fixAttributes(spec Spec) (bool, error) {
	info, err := os.Stat(spec.Path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", spec.Path, err)
	}
	if info.Mode().Perm() == spec.Mode.Perm() && spec.Owner == "" && spec.Group == "" {
		return false, nil
	}
	if s.dryRun {
		return info.Mode().Perm() != spec.Mode.Perm(), nil
	}

	changed := false
	if info.Mode().Perm() != spec.Mode.Perm() {
		if err := os.Chmod(spec.Path, spec.Mode); err != nil {
			return false, fmt.Errorf("failed to chmod %s: %w", spec.Path, err)
		}
		changed = true
	}
	if err := s.applyOwner(spec.Path, spec.Owner, spec.Group); err != nil {
		return false, err
	}
	return changed, nil
}

func (s *Store) applyOwner(path, owner, group string) error {
	if owner == "" && group == "" {
		return nil
	}
	uid, gid := -1, -1
	var err error
	if owner != "" {
		if uid, err = s.ids.UID(owner); err != nil {
			return err
		}
	}
	if group != "" {
		if gid, err = s.ids.GID(group); err != nil {
			return err
		}
	}
	if err := s.chown(path, uid, gid); err != nil {
		return fmt.Errorf("failed to chown %s: %w", path, err)
	}
	return nil
}

// ReadIfExists returns the file content, or nil when the file is absent.
func ReadIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
