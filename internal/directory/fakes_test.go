package directory

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	hcloudgo "github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/imamik/symphonyctl/internal/platform/hcloud"
)

type fakeServerAPI struct {
	mu        sync.Mutex
	servers   []*hcloudgo.Server
	listErr   error
	selectors []string
	updates   map[string]map[string]string
}

func (f *fakeServerAPI) GetServersByLabel(_ context.Context, selector string) ([]*hcloudgo.Server, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectors = append(f.selectors, selector)
	return f.servers, f.listErr
}

func (f *fakeServerAPI) MergeServerLabels(_ context.Context, name string, labels map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.servers {
		if s.Name == name {
			if f.updates == nil {
				f.updates = map[string]map[string]string{}
			}
			f.updates[name] = labels
			return nil
		}
	}
	return hcloud.ErrServerNotFound
}

type fakeEC2 struct {
	pages  []*ec2.DescribeInstancesOutput
	err    error
	inputs []*ec2.DescribeInstancesInput
	tagged *ec2.CreateTagsInput
	tagErr error
}

func (f *fakeEC2) DescribeInstances(_ context.Context, in *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *fakeEC2) CreateTags(_ context.Context, in *ec2.CreateTagsInput, _ ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error) {
	f.tagged = in
	return &ec2.CreateTagsOutput{}, f.tagErr
}

type fakeMetadata struct {
	instanceID string
}

func (f *fakeMetadata) GetMetadata(_ context.Context, _ *imds.GetMetadataInput, _ ...func(*imds.Options)) (*imds.GetMetadataOutput, error) {
	return &imds.GetMetadataOutput{Content: io.NopCloser(strings.NewReader(f.instanceID + "\n"))}, nil
}

type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	listErr error
	getErr  map[string]error
	buckets []string
	deleted []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}, getErr: map[string]error{}}
}

func (f *fakeObjectStore) EnsureBucket(_ context.Context, bucket string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buckets = append(f.buckets, bucket)
	return nil
}

func (f *fakeObjectStore) ListKeys(_ context.Context, _, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	for k := range f.getErr {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeObjectStore) GetObject(_ context.Context, _, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.getErr[key]; err != nil {
		return nil, err
	}
	return f.objects[key], nil
}

func (f *fakeObjectStore) PutObject(_ context.Context, _, key, _ string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) DeleteObject(_ context.Context, _, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}
