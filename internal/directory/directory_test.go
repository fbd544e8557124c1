package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/symphonyctl/internal/config"
	"github.com/imamik/symphonyctl/internal/topology"
)

// Not parallel: swaps package-level factories.
func TestOpen(t *testing.T) {
	origHCloud, origS3, origEC2 := newHCloudClient, newS3Client, openEC2
	t.Cleanup(func() { newHCloudClient, newS3Client, openEC2 = origHCloud, origS3, origEC2 })

	newHCloudClient = func(config.HCloudConfig) serverAPI { return &fakeServerAPI{} }
	newS3Client = func(context.Context, config.S3Config) (objectStore, error) { return newFakeObjectStore(), nil }
	openEC2 = func(context.Context, config.EC2Config) (Backend, error) { return NewEC2(&fakeEC2{}, nil), nil }

	tests := []struct {
		cfg  config.DiscoveryConfig
		want string
	}{
		{config.DiscoveryConfig{Backend: config.BackendStatic, Static: config.StaticConfig{Path: "/tmp/members.yaml"}}, "static"},
		{config.DiscoveryConfig{Backend: config.BackendHCloud}, "hcloud"},
		{config.DiscoveryConfig{Backend: config.BackendEC2}, "ec2"},
		{config.DiscoveryConfig{Backend: config.BackendS3, S3: config.S3Config{Bucket: "b"}}, "s3"},
		{config.DiscoveryConfig{Backend: config.BackendHTTP, HTTP: config.HTTPConfig{BaseURL: "http://meta.local"}}, "http"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			backend, err := Open(context.Background(), tt.cfg, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, backend.Name())
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	origS3 := newS3Client
	t.Cleanup(func() { newS3Client = origS3 })
	newS3Client = func(context.Context, config.S3Config) (objectStore, error) { return nil, errors.New("no credentials") }

	_, err := Open(context.Background(), config.DiscoveryConfig{Backend: "consul"}, nil)
	assert.True(t, topology.IsConfigError(err))

	_, err = Open(context.Background(), config.DiscoveryConfig{Backend: config.BackendS3}, nil)
	assert.ErrorContains(t, err, "no credentials")
}

func TestMemberName(t *testing.T) {
	t.Parallel()
	dir := topology.DirectoryFunc(func(_ context.Context, clusterID string) ([]topology.ClusterMember, error) {
		assert.Equal(t, "c1", clusterID)
		return []topology.ClusterMember{
			{ClusterID: "c1", Hostname: "e2.example.com"},
			{ClusterID: "c1", Hostname: "e3"},
			{ClusterID: "c1", Hostname: "m1.example.com"},
		}, nil
	})

	tests := []struct {
		host string
		want string
	}{
		{"e2", "e2.example.com"},
		{"e2.example.com", "e2.example.com"},
		{"e3.example.com", "e3"},
		{"e3", "e3"},
		{"e9", "e9"},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()
			got, err := MemberName(context.Background(), dir, "c1", tt.host)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("query error", func(t *testing.T) {
		t.Parallel()
		failing := topology.DirectoryFunc(func(context.Context, string) ([]topology.ClusterMember, error) {
			return nil, errors.New("unreachable")
		})
		_, err := MemberName(context.Background(), failing, "c1", "e2")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to look up e2")
	})
}
