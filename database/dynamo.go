package database

import (
	"fmt"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/dynamodb"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"serverless-pulumi/schema"
)

const KeyValueTableType = "serverless:component:KeyValueTable"

// KeyValueTable wraps the upload table: one item per recorded object, keyed
// by object key and upload time.
type KeyValueTable struct {
	pulumi.ResourceState

	Table *dynamodb.Table
}

type KeyValueTableArgs struct {
	Tags pulumi.StringMap
}

func NewKeyValueTable(ctx *pulumi.Context, name string, args *KeyValueTableArgs, opts ...pulumi.ResourceOption) (*KeyValueTable, error) {
	if args == nil {
		args = &KeyValueTableArgs{}
	}
	component := &KeyValueTable{}
	err := ctx.RegisterComponentResource(KeyValueTableType, name, component, opts...)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", name, err)
	}

	// 创建 DynamoDB 表
	table, err := dynamodb.NewTable(ctx, name+"-table", &dynamodb.TableArgs{
		Attributes: dynamodb.TableAttributeArray{
			&dynamodb.TableAttributeArgs{
				Name: pulumi.String(schema.PartitionKey),
				Type: pulumi.String("S"),
			},
			&dynamodb.TableAttributeArgs{
				Name: pulumi.String(schema.SortKey),
				Type: pulumi.String("S"),
			},
		},
		BillingMode:   pulumi.String("PROVISIONED"),
		HashKey:       pulumi.String(schema.PartitionKey), // 分区键
		RangeKey:      pulumi.String(schema.SortKey),      // 排序键
		ReadCapacity:  pulumi.Int(1),
		WriteCapacity: pulumi.Int(1),
		Tags:          args.Tags,
	}, pulumi.Parent(component))
	if err != nil {
		return nil, err
	}

	component.Table = table
	err = ctx.RegisterResourceOutputs(component, pulumi.Map{
		"tableName": table.Name,
		"tableArn":  table.Arn,
	})
	if err != nil {
		return nil, fmt.Errorf("register outputs of %s: %w", name, err)
	}
	return component, nil
}
