package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

type fakeTable struct {
	puts []*dynamodb.PutItemInput
	fail map[string]error
}

func (f *fakeTable) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	key := params.Item["key"].(*types.AttributeValueMemberS).Value
	if err := f.fail[key]; err != nil {
		return nil, err
	}
	f.puts = append(f.puts, params)
	return &dynamodb.PutItemOutput{}, nil
}

func newTestRecorder(t *testing.T, table *fakeTable) *Recorder {
	r, err := NewRecorder(table, "uploads", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	r.now = func() time.Time {
		return time.Date(2026, 10, 19, 14, 3, 59, 0, time.UTC)
	}
	return r
}

func s3Event(keys ...string) events.S3Event {
	var event events.S3Event
	for _, key := range keys {
		event.Records = append(event.Records, events.S3EventRecord{
			EventName: "ObjectCreated:Put",
			S3: events.S3Entity{
				Bucket: events.S3Bucket{Name: "mybucket-bucket"},
				Object: events.S3Object{Key: key},
			},
		})
	}
	return event
}

func TestNewRecorderNeedsTable(t *testing.T) {
	_, err := NewRecorder(&fakeTable{}, "", nil)
	require.ErrorIs(t, err, ErrNoTable)
}

func TestHandle(t *testing.T) {
	table := &fakeTable{}
	r := newTestRecorder(t, table)

	err := r.Handle(context.Background(), s3Event("photos/summer+trip%281%29.jpg", "notes.txt"))
	require.NoError(t, err)
	require.Len(t, table.puts, 2)

	put := table.puts[0]
	require.Equal(t, "uploads", aws.ToString(put.TableName))
	require.Equal(t, map[string]types.AttributeValue{
		"key": &types.AttributeValueMemberS{Value: "photos/summer trip(1).jpg"},
		"TS":  &types.AttributeValueMemberS{Value: "10/19/2026, 14:03:59"},
	}, put.Item)
	require.Equal(t, "notes.txt", itemKey(table.puts[1]))
}

func TestHandleEmptyEvent(t *testing.T) {
	table := &fakeTable{}
	r := newTestRecorder(t, table)

	require.NoError(t, r.Handle(context.Background(), events.S3Event{}))
	require.Empty(t, table.puts)
}

func TestHandleKeepsGoingAfterFailure(t *testing.T) {
	throttled := errors.New("ProvisionedThroughputExceededException")
	table := &fakeTable{fail: map[string]error{"a.txt": throttled}}
	r := newTestRecorder(t, table)

	err := r.Handle(context.Background(), s3Event("a.txt", "bad%zzkey", "c.txt"))
	require.Error(t, err)
	require.ErrorIs(t, err, throttled)
	require.ErrorContains(t, err, `put "a.txt" into uploads`)
	require.ErrorContains(t, err, `decode key "bad%zzkey"`)

	require.Len(t, table.puts, 1)
	require.Equal(t, "c.txt", itemKey(table.puts[0]))
}

func itemKey(put *dynamodb.PutItemInput) string {
	return put.Item["key"].(*types.AttributeValueMemberS).Value
}
