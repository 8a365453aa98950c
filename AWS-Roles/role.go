package AWS_Roles

import (
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/iam"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

const (
	BasicExecutionPolicyArn     = "arn:aws:iam::aws:policy/service-role/AWSLambdaBasicExecutionRole"
	DynamoDBFullAccessPolicyArn = "arn:aws:iam::aws:policy/AmazonDynamoDBFullAccess"
)

const lambdaAssumeRolePolicy = `{
                "Version": "2012-10-17",
                "Statement": [{
                    "Action": "sts:AssumeRole",
                    "Effect": "Allow",
                    "Principal": {
                        "Service": "lambda.amazonaws.com"
                    }
                }]
            }`

// CreateLambdaRole creates the execution role assumed by the function.
func CreateLambdaRole(ctx *pulumi.Context, name string, tags pulumi.StringMap, opts ...pulumi.ResourceOption) (*iam.Role, error) {
	// 创建 IAM 角色
	role, err := iam.NewRole(ctx, name, &iam.RoleArgs{
		AssumeRolePolicy: pulumi.String(lambdaAssumeRolePolicy),
		Tags:             tags,
	}, opts...)
	if err != nil {
		return nil, err
	}
	return role, nil
}

func CreatePolicyAttachment(ctx *pulumi.Context, name string, role *iam.Role, policyArn string, opts ...pulumi.ResourceOption) (*iam.RolePolicyAttachment, error) {
	attachment, err := iam.NewRolePolicyAttachment(ctx, name, &iam.RolePolicyAttachmentArgs{
		Role:      role.Name,
		PolicyArn: pulumi.String(policyArn),
	}, opts...)
	if err != nil {
		return nil, err
	}
	return attachment, nil
}
