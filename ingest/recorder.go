// Package ingest records uploaded objects into the upload table. It is the
// code the stack packages into the function archive.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"serverless-pulumi/schema"
)

var ErrNoTable = errors.New(schema.TableNameEnv + " is not set")

// PutItemAPI is the part of the DynamoDB client the recorder needs.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

var _ PutItemAPI = (*dynamodb.Client)(nil)

type Recorder struct {
	client PutItemAPI
	table  string
	logger *slog.Logger
	now    func() time.Time
}

func NewRecorder(client PutItemAPI, table string, logger *slog.Logger) (*Recorder, error) {
	if table == "" {
		return nil, ErrNoTable
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		client: client,
		table:  table,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Handle records every object of the event. A failing record does not stop
// the others; all failures are returned together so the invocation is retried.
func (r *Recorder) Handle(ctx context.Context, event events.S3Event) error {
	var errs []error
	for _, record := range event.Records {
		if err := r.Record(ctx, record.S3.Bucket.Name, record.S3.Object.Key); err != nil {
			r.logger.ErrorContext(ctx, "record upload", "bucket", record.S3.Bucket.Name, "key", record.S3.Object.Key, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Record writes one item for the object. rawKey is the key as it appears in
// the notification, i.e. URL encoded with '+' for spaces.
func (r *Recorder) Record(ctx context.Context, bucket, rawKey string) error {
	key, err := url.QueryUnescape(rawKey)
	if err != nil {
		return fmt.Errorf("decode key %q: %w", rawKey, err)
	}
	ts := r.now().UTC().Format(schema.TimestampLayout)

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item: map[string]types.AttributeValue{
			schema.PartitionKey: &types.AttributeValueMemberS{Value: key},
			schema.SortKey:      &types.AttributeValueMemberS{Value: ts},
		},
	})
	if err != nil {
		return fmt.Errorf("put %q into %s: %w", key, r.table, err)
	}
	r.logger.InfoContext(ctx, "recorded upload", "bucket", bucket, "key", key, "ts", ts)
	return nil
}
