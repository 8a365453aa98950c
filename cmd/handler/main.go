// Command handler is the Lambda entry point packaged into ./function as
// "bootstrap". It records every object created in the bucket into the table
// named by TABLE_NAME.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"serverless-pulumi/ingest"
	"serverless-pulumi/schema"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Error("load aws config", "error", err)
		os.Exit(1)
	}

	recorder, err := ingest.NewRecorder(dynamodb.NewFromConfig(cfg), os.Getenv(schema.TableNameEnv), logger)
	if err != nil {
		logger.Error("create recorder", "error", err)
		os.Exit(1)
	}

	lambda.Start(recorder.Handle)
}
