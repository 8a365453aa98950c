package main

import (
	"fmt"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"serverless-pulumi/database"
	"serverless-pulumi/serverless"
	"serverless-pulumi/settings"
	"serverless-pulumi/storage"
)

// stackOutputs are the values exported by the stack.
type stackOutputs struct {
	BucketName         pulumi.StringOutput
	BucketArn          pulumi.StringOutput
	LambdaFunctionName pulumi.StringOutput
	DynamoTableName    pulumi.StringOutput
}

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		out, err := newStack(ctx)
		if err != nil {
			return err
		}

		ctx.Export("bucketName", out.BucketName)
		ctx.Export("bucketArn", out.BucketArn)
		ctx.Export("lambdaFunctionName", out.LambdaFunctionName)
		ctx.Export("dynamoTableName", out.DynamoTableName)
		return nil
	})
}

func newStack(ctx *pulumi.Context) (*stackOutputs, error) {
	// 读取配置
	conf := settings.Load(ctx)
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", settings.Namespace, err)
	}
	tags := conf.Tags()

	err := ctx.Log.Info(fmt.Sprintf("deploying %s/%s to %q", conf.Project, conf.Stack, conf.Region), nil)
	if err != nil {
		return nil, err
	}

	// 创建 S3 bucket
	bucket, err := storage.NewStorageBucket(ctx, conf.BucketName, &storage.StorageBucketArgs{
		ForceDestroy: conf.ForceDestroy,
		Tags:         tags,
	})
	if err != nil {
		return nil, fmt.Errorf("bucket %s: %w", conf.BucketName, err)
	}

	// 创建 DynamoDB 表
	table, err := database.NewKeyValueTable(ctx, conf.TableName, &database.KeyValueTableArgs{
		Tags: tags,
	})
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", conf.TableName, err)
	}

	// 创建 lambda 函数
	var alarmActions []string
	if conf.AlarmTopicArn != "" {
		alarmActions = append(alarmActions, conf.AlarmTopicArn)
	}
	fn, err := serverless.NewServerlessFunction(ctx, conf.FunctionName, &serverless.ServerlessFunctionArgs{
		Bucket:           bucket,
		Table:            table,
		CodePath:         conf.CodePath,
		Handler:          conf.Handler,
		Runtime:          conf.Runtime,
		Architecture:     conf.Architecture,
		MemorySize:       conf.MemorySize,
		Timeout:          conf.Timeout,
		LogRetentionDays: conf.LogRetentionDays,
		ErrorAlarm:       conf.ErrorAlarm,
		AlarmActions:     alarmActions,
		Tags:             tags,
	})
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", conf.FunctionName, err)
	}

	return &stackOutputs{
		BucketName:         bucket.Bucket.ID().ToStringOutput(),
		BucketArn:          bucket.Bucket.Arn,
		LambdaFunctionName: fn.Function.Name,
		DynamoTableName:    table.Table.Name,
	}, nil
}
