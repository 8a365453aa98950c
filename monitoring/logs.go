package monitoring

import (
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/cloudwatch"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/lambda"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// CreateLogGroup pre-creates the log group Lambda writes to, with a fixed retention.
func CreateLogGroup(ctx *pulumi.Context, name string, fn *lambda.Function, retentionDays int, tags pulumi.StringMap, opts ...pulumi.ResourceOption) (*cloudwatch.LogGroup, error) {
	logGroup, err := cloudwatch.NewLogGroup(ctx, name, &cloudwatch.LogGroupArgs{
		Name:            pulumi.Sprintf("/aws/lambda/%s", fn.Name),
		RetentionInDays: pulumi.Int(retentionDays),
		Tags:            tags,
	}, opts...)
	if err != nil {
		return nil, err
	}
	return logGroup, nil
}
