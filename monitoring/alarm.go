package monitoring

import (
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/cloudwatch"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/lambda"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// CreateErrorAlarm fires when the function reports at least threshold errors
// within one minute. actions may be empty.
func CreateErrorAlarm(ctx *pulumi.Context, name string, fn *lambda.Function, threshold float64, actions []string, opts ...pulumi.ResourceOption) (*cloudwatch.MetricAlarm, error) {
	var alarmActions pulumi.Array
	for _, arn := range actions {
		alarmActions = append(alarmActions, pulumi.String(arn))
	}

	alarm, err := cloudwatch.NewMetricAlarm(ctx, name, &cloudwatch.MetricAlarmArgs{
		AlarmDescription:   pulumi.Sprintf("Errors reported by %s", fn.Name),
		ComparisonOperator: pulumi.String("GreaterThanOrEqualToThreshold"),
		EvaluationPeriods:  pulumi.Int(1),
		MetricName:         pulumi.String("Errors"),
		Namespace:          pulumi.String("AWS/Lambda"),
		Period:             pulumi.Int(60),
		Statistic:          pulumi.String("Sum"),
		Threshold:          pulumi.Float64(threshold),
		TreatMissingData:   pulumi.String("notBreaching"),
		AlarmActions:       alarmActions,
		Dimensions: pulumi.StringMap{
			"FunctionName": fn.Name,
		},
	}, opts...)
	if err != nil {
		return nil, err
	}
	return alarm, nil
}
