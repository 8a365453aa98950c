package storage

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/s3"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const StorageBucketType = "serverless:component:StorageBucket"

// StorageBucket groups the upload bucket and its public access block.
type StorageBucket struct {
	pulumi.ResourceState

	Bucket *s3.Bucket
}

type StorageBucketArgs struct {
	// ForceDestroy lets the bucket be deleted while it still holds objects.
	ForceDestroy bool
	Tags         pulumi.StringMap
}

func NewStorageBucket(ctx *pulumi.Context, name string, args *StorageBucketArgs, opts ...pulumi.ResourceOption) (*StorageBucket, error) {
	if args == nil {
		args = &StorageBucketArgs{}
	}
	component := &StorageBucket{}
	err := ctx.RegisterComponentResource(StorageBucketType, name, component, opts...)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", name, err)
	}

	// 创建 S3 bucket
	bucket, err := s3.NewBucket(ctx, name+"-bucket", &s3.BucketArgs{
		ForceDestroy: pulumi.Bool(args.ForceDestroy),
		Tags:         args.Tags,
	}, pulumi.Parent(component))
	if err != nil {
		return nil, err
	}

	// 禁止公共访问
	_, err = s3.NewBucketPublicAccessBlock(ctx, name+"-pab", &s3.BucketPublicAccessBlockArgs{
		Bucket:                bucket.ID(),
		BlockPublicAcls:       pulumi.Bool(true),
		BlockPublicPolicy:     pulumi.Bool(true),
		IgnorePublicAcls:      pulumi.Bool(true),
		RestrictPublicBuckets: pulumi.Bool(true),
	}, pulumi.Parent(component))
	if err != nil {
		return nil, err
	}

	component.Bucket = bucket
	err = ctx.RegisterResourceOutputs(component, pulumi.Map{
		"bucket":    bucket.ID(),
		"bucketArn": bucket.Arn,
	})
	if err != nil {
		return nil, fmt.Errorf("register outputs of %s: %w", name, err)
	}
	return component, nil
}
