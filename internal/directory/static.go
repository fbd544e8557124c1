package directory

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/imamik/symphonyctl/internal/platform/files"
	"github.com/imamik/symphonyctl/internal/topology"
)

// memberFile is the YAML layout of a static member list.
type memberFile struct {
	Members []topology.ClusterMember `yaml:"members"`
}

// Static reads members from a YAML file on every query, so a provisioner
// (or a shared filesystem) can update it while nodes wait.
type Static struct {
	path  string
	store *files.Store
}

// NewStatic creates a static directory backed by path.
func NewStatic(path string) *Static {
	return &Static{path: path, store: files.NewStore()}
}

func (s *Static) Name() string { return "static" }

// Query implements topology.Directory.
func (s *Static) Query(_ context.Context, clusterID string) ([]topology.ClusterMember, error) {
	mf, err := s.read()
	if err != nil {
		return nil, err
	}

	var out []topology.ClusterMember
	for _, m := range mf.Members {
		if m.ClusterID == "" || m.ClusterID == clusterID {
			out = append(out, m)
		}
	}
	return out, nil
}

// Register adds or replaces the member's entry, keyed by cluster and hostname.
func (s *Static) Register(_ context.Context, member topology.ClusterMember) error {
	mf, err := s.readOptional()
	if err != nil {
		return err
	}

	replaced := false
	for i, m := range mf.Members {
		if m.ClusterID == member.ClusterID && m.Hostname == member.Hostname {
			mf.Members[i] = member
			replaced = true
		}
	}
	if !replaced {
		mf.Members = append(mf.Members, member)
	}
	return s.write(mf)
}

// Deregister removes the member's entry if present.
func (s *Static) Deregister(_ context.Context, clusterID, hostname string) error {
	mf, err := s.readOptional()
	if err != nil {
		return err
	}

	kept := mf.Members[:0]
	for _, m := range mf.Members {
		if m.ClusterID == clusterID && m.Hostname == hostname {
			continue
		}
		kept = append(kept, m)
	}
	mf.Members = kept
	return s.write(mf)
}

func (s *Static) read() (*memberFile, error) {
	// #nosec G304
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read member file: %w", err)
	}
	return decodeMembers(data)
}

func (s *Static) readOptional() (*memberFile, error) {
	data, err := files.ReadIfExists(s.path)
	if err != nil {
		return nil, err
	}
	return decodeMembers(data)
}

func decodeMembers(data []byte) (*memberFile, error) {
	var mf memberFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse member file: %w", err)
	}
	return &mf, nil
}

func (s *Static) write(mf *memberFile) error {
	sort.SliceStable(mf.Members, func(i, j int) bool {
		if mf.Members[i].ClusterID != mf.Members[j].ClusterID {
			return mf.Members[i].ClusterID < mf.Members[j].ClusterID
		}
		return mf.Members[i].Hostname < mf.Members[j].Hostname
	})

	data, err := yaml.Marshal(mf)
	if err != nil {
		return fmt.Errorf("failed to encode member file: %w", err)
	}
	if _, err := s.store.Replace(files.Spec{Path: s.path, Content: data, Mode: 0o644}); err != nil {
		return err
	}
	return nil
}
