package serverless

import (
	"errors"
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/cloudwatch"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/lambda"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/s3"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	AWS_Roles "serverless-pulumi/AWS-Roles"
	"serverless-pulumi/database"
	"serverless-pulumi/monitoring"
	"serverless-pulumi/schema"
	"serverless-pulumi/settings"
	"serverless-pulumi/storage"
)

const ServerlessFunctionType = "serverless:component:ServerlessFunction"

var (
	ErrMissingBucket = errors.New("serverless function needs a bucket")
	ErrMissingTable  = errors.New("serverless function needs a table")
	ErrMissingCode   = errors.New("serverless function needs a code path")
)

// ServerlessFunction is a Lambda function subscribed to object-created events
// of a bucket, with write access to a table.
type ServerlessFunction struct {
	pulumi.ResourceState

	Role         *iam.Role
	Function     *lambda.Function
	Permission   *lambda.Permission
	Notification *s3.BucketNotification
	LogGroup     *cloudwatch.LogGroup
	ErrorAlarm   *cloudwatch.MetricAlarm
}

type ServerlessFunctionArgs struct {
	// Bucket whose uploads trigger the function.
	Bucket *storage.StorageBucket
	// Table the function records uploads into.
	Table *database.KeyValueTable

	// CodePath is a local directory packaged as the deployment archive.
	CodePath     string
	Handler      string
	Runtime      string
	Architecture string
	MemorySize   int
	Timeout      int

	LogRetentionDays int
	ErrorAlarm       bool
	AlarmActions     []string

	Tags pulumi.StringMap
}

func (a *ServerlessFunctionArgs) validate() error {
	switch {
	case a == nil || a.Bucket == nil || a.Bucket.Bucket == nil:
		return ErrMissingBucket
	case a.Table == nil || a.Table.Table == nil:
		return ErrMissingTable
	case a.CodePath == "":
		return ErrMissingCode
	}
	return nil
}

// withDefaults returns a copy of a with unset runtime options filled in.
func (a ServerlessFunctionArgs) withDefaults() *ServerlessFunctionArgs {
	if a.Handler == "" {
		a.Handler = settings.DefaultHandler
	}
	if a.Runtime == "" {
		a.Runtime = settings.DefaultRuntime
	}
	if a.Architecture == "" {
		a.Architecture = settings.DefaultArchitecture
	}
	if a.MemorySize == 0 {
		a.MemorySize = settings.DefaultMemorySize
	}
	if a.Timeout == 0 {
		a.Timeout = settings.DefaultTimeout
	}
	if a.LogRetentionDays == 0 {
		a.LogRetentionDays = settings.DefaultLogRetentionDays
	}
	return &a
}

func NewServerlessFunction(ctx *pulumi.Context, name string, args *ServerlessFunctionArgs, opts ...pulumi.ResourceOption) (*ServerlessFunction, error) {
	if err := args.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	args = args.withDefaults()
	component := &ServerlessFunction{}
	err := ctx.RegisterComponentResource(ServerlessFunctionType, name, component, opts...)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	self := pulumi.Parent(component)

	// 创建IAM角色
	role, err := AWS_Roles.CreateLambdaRole(ctx, name+"-lambdaRole", args.Tags, self)
	if err != nil {
		return nil, err
	}
	basicPolicy, err := AWS_Roles.CreatePolicyAttachment(ctx, name+"-lambdaRolePolicy", role,
		AWS_Roles.BasicExecutionPolicyArn, self)
	if err != nil {
		return nil, err
	}
	dynamoPolicy, err := AWS_Roles.CreatePolicyAttachment(ctx, name+"-lambdaRoleDynamoPolicy", role,
		AWS_Roles.DynamoDBFullAccessPolicyArn, pulumi.Parent(role))
	if err != nil {
		return nil, err
	}

	fnArgs := &lambda.FunctionArgs{
		Code:          pulumi.NewFileArchive(args.CodePath),
		Role:          role.Arn,
		Handler:       pulumi.String(args.Handler),
		Runtime:       pulumi.String(args.Runtime),
		Architectures: pulumi.StringArray{pulumi.String(args.Architecture)},
		MemorySize:    pulumi.Int(args.MemorySize),
		Timeout:       pulumi.Int(args.Timeout),
		Environment: &lambda.FunctionEnvironmentArgs{
			Variables: pulumi.StringMap{
				schema.TableNameEnv: args.Table.Table.Name,
			},
		},
		Tags: args.Tags,
	}
	// 角色的策略必须先生效, 否则第一次调用可能没有权限
	fn, err := lambda.NewFunction(ctx, name+"-lambda", fnArgs, self,
		pulumi.DependsOn([]pulumi.Resource{basicPolicy, dynamoPolicy}))
	if err != nil {
		return nil, err
	}

	logGroup, err := monitoring.CreateLogGroup(ctx, name+"-logs", fn, args.LogRetentionDays, args.Tags, self)
	if err != nil {
		return nil, err
	}

	if args.ErrorAlarm {
		component.ErrorAlarm, err = monitoring.CreateErrorAlarm(ctx, name+"-errorAlarm", fn, 1, args.AlarmActions, self)
		if err != nil {
			return nil, err
		}
	}

	// 允许 S3 触发该函数
	permission, err := lambda.NewPermission(ctx, name+"-lambdaPerm", &lambda.PermissionArgs{
		Action:    pulumi.String("lambda:InvokeFunction"),
		Function:  fn.Name,
		Principal: pulumi.String("s3.amazonaws.com"),
		SourceArn: args.Bucket.Bucket.Arn,
	}, pulumi.Parent(fn))
	if err != nil {
		return nil, err
	}

	// S3 validates the destination when the notification is written, so the
	// permission has to exist first.
	notification, err := s3.NewBucketNotification(ctx, name+"-bucketNotification", &s3.BucketNotificationArgs{
		Bucket: args.Bucket.Bucket.ID(),
		LambdaFunctions: s3.BucketNotificationLambdaFunctionArray{
			&s3.BucketNotificationLambdaFunctionArgs{
				LambdaFunctionArn: fn.Arn,
				Events:            pulumi.ToStringArray([]string{schema.ObjectCreatedEvent}),
			},
		},
	}, pulumi.Parent(args.Bucket.Bucket), pulumi.DependsOn([]pulumi.Resource{fn, permission, logGroup}))
	if err != nil {
		return nil, err
	}

	component.Role = role
	component.Function = fn
	component.Permission = permission
	component.Notification = notification
	component.LogGroup = logGroup

	err = ctx.Log.Debug(fmt.Sprintf("function %s packaged from %s (%s, %s)", name, args.CodePath, args.Runtime, args.Architecture),
		&pulumi.LogArgs{Resource: component})
	if err != nil {
		return nil, err
	}

	err = ctx.RegisterResourceOutputs(component, pulumi.Map{
		"lambdaFunc": fn.Name,
		"lambdaArn":  fn.Arn,
	})
	if err != nil {
		return nil, fmt.Errorf("register outputs of %s: %w", name, err)
	}
	return component, nil
}
