package directory

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/imamik/symphonyctl/internal/config"
	"github.com/imamik/symphonyctl/internal/topology"
	"github.com/imamik/symphonyctl/internal/util/labels"
)

// ec2API is the part of the EC2 client the directory uses.
type ec2API interface {
	ec2.DescribeInstancesAPIClient
	CreateTags(ctx context.Context, params *ec2.CreateTagsInput, optFns ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error)
}

// metadataAPI reads instance metadata (IMDS).
type metadataAPI interface {
	GetMetadata(ctx context.Context, params *imds.GetMetadataInput, optFns ...func(*imds.Options)) (*imds.GetMetadataOutput, error)
}

var openEC2 = func(ctx context.Context, cfg config.EC2Config) (Backend, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := ec2.NewFromConfig(awsCfg, func(o *ec2.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewEC2(client, imds.NewFromConfig(awsCfg)), nil
}

// EC2 discovers members from EC2 instance tags.
type EC2 struct {
	api      ec2API
	metadata metadataAPI
}

// NewEC2 creates an EC2 directory.
func NewEC2(api ec2API, metadata metadataAPI) *EC2 {
	return &EC2{api: api, metadata: metadata}
}

func (e *EC2) Name() string { return "ec2" }

// Query implements topology.Directory. Only pending and running instances
// are members.
func (e *EC2) Query(ctx context.Context, clusterID string) ([]topology.ClusterMember, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{Name: aws.String("tag:" + labels.KeyCluster), Values: []string{clusterID}},
			{Name: aws.String("instance-state-name"), Values: []string{"pending", "running"}},
		},
	}

	var members []topology.ClusterMember
	paginator := ec2.NewDescribeInstancesPaginator(e.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classifyAWS(fmt.Errorf("failed to describe instances: %w", err))
		}
		for _, rsv := range page.Reservations {
			for _, inst := range rsv.Instances {
				members = append(members, memberFromLabels(
					tagMap(inst.Tags),
					aws.ToString(inst.PrivateDnsName),
					aws.ToString(inst.PrivateIpAddress),
				))
			}
		}
	}
	return members, nil
}

// Register tags the local instance, identified through instance metadata.
func (e *EC2) Register(ctx context.Context, member topology.ClusterMember) error {
	if e.metadata == nil {
		return fmt.Errorf("ec2 register: %w", ErrUnsupported)
	}
	out, err := e.metadata.GetMetadata(ctx, &imds.GetMetadataInput{Path: "instance-id"})
	if err != nil {
		return fmt.Errorf("failed to read instance id: %w", err)
	}
	defer out.Content.Close()
	raw, err := io.ReadAll(out.Content)
	if err != nil {
		return fmt.Errorf("failed to read instance id: %w", err)
	}
	instanceID := strings.TrimSpace(string(raw))

	l := labels.NewLabelBuilder(member.ClusterID).
		WithMaster(member.IsMaster).
		WithManagement(member.IsManagement).
		WithHostname(member.Hostname).
		Build()

	tags := make([]types.Tag, 0, len(l))
	for k, v := range l {
		tags = append(tags, types.Tag{Key: aws.String(k), Value: aws.String(v)})
	}

	_, err = e.api.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{instanceID},
		Tags:      tags,
	})
	if err != nil {
		return classifyAWS(fmt.Errorf("failed to tag instance %s: %w", instanceID, err))
	}
	return nil
}

func tagMap(tags []types.Tag) map[string]string {
	m := make(map[string]string, len(tags))
	for _, t := range tags {
		m[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}
	return m
}
