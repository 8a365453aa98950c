// Package schema holds the names shared by the table declaration and the
// function that writes into it.
package schema

const (
	// PartitionKey is the hash key of the upload table: the decoded object key.
	PartitionKey = "key"
	// SortKey is the range key of the upload table: the time the upload was recorded.
	SortKey = "TS"

	// TableNameEnv carries the table name into the function environment.
	TableNameEnv = "TABLE_NAME"

	// TimestampLayout formats SortKey values, e.g. "10/19/2026, 14:03:59".
	TimestampLayout = "01/02/2006, 15:04:05"

	// ObjectCreatedEvent is the bucket event that triggers the function.
	ObjectCreatedEvent = "s3:ObjectCreated:*"
)
