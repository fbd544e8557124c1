package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/imamik/symphonyctl/internal/config"
	"github.com/imamik/symphonyctl/internal/platform/s3"
	"github.com/imamik/symphonyctl/internal/topology"
	"github.com/imamik/symphonyctl/internal/util/naming"
)

// objectStore is the part of the S3 client the registry uses.
type objectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	ListKeys(ctx context.Context, bucket, prefix string) ([]string, error)
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	PutObject(ctx context.Context, bucket, key, contentType string, data []byte) error
	DeleteObject(ctx context.Context, bucket, key string) error
}

var newS3Client = func(ctx context.Context, cfg config.S3Config) (objectStore, error) {
	return s3.NewClient(ctx, s3.Options{
		Endpoint:     cfg.Endpoint,
		Region:       cfg.Region,
		AccessKey:    cfg.AccessKey,
		SecretKey:    cfg.SecretKey,
		UsePathStyle: cfg.UsePathStyle,
	})
}

// S3 is a member registry with one JSON object per node under
// <prefix>/<clusterID>/members/<hostname>.json.
type S3 struct {
	store  objectStore
	bucket string
	prefix string
}

// NewS3 creates an S3 registry.
func NewS3(store objectStore, bucket, prefix string) *S3 {
	return &S3{store: store, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (r *S3) Name() string { return "s3" }

// Query implements topology.Directory. Records are returned in key order.
// A record deleted between listing and fetching is skipped.
func (r *S3) Query(ctx context.Context, clusterID string) ([]topology.ClusterMember, error) {
	keys, err := r.store.ListKeys(ctx, r.bucket, naming.S3MembersPrefix(r.prefix, clusterID))
	if err != nil {
		if s3.IsNotFound(err) {
			return nil, nil
		}
		return nil, classifyAWS(err)
	}

	members := make([]topology.ClusterMember, 0, len(keys))
	for _, key := range keys {
		if !strings.HasSuffix(key, ".json") {
			continue
		}
		data, err := r.store.GetObject(ctx, r.bucket, key)
		if err != nil {
			if s3.IsNotFound(err) {
				continue
			}
			return nil, classifyAWS(err)
		}

		var m topology.ClusterMember
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to decode member record %s: %w", key, err)
		}
		members = append(members, m)
	}
	return members, nil
}

// Register writes the member record, creating the bucket on first use.
func (r *S3) Register(ctx context.Context, member topology.ClusterMember) error {
	if err := r.store.EnsureBucket(ctx, r.bucket); err != nil {
		return classifyAWS(err)
	}
	data, err := json.Marshal(member)
	if err != nil {
		return fmt.Errorf("failed to encode member record: %w", err)
	}
	key := naming.S3MemberKey(r.prefix, member.ClusterID, member.Hostname)
	return classifyAWS(r.store.PutObject(ctx, r.bucket, key, "application/json", data))
}

// Deregister deletes the member record.
func (r *S3) Deregister(ctx context.Context, clusterID, hostname string) error {
	return classifyAWS(r.store.DeleteObject(ctx, r.bucket, naming.S3MemberKey(r.prefix, clusterID, hostname)))
}
