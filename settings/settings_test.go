package settings

import (
	"testing"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/stretchr/testify/require"

	"serverless-pulumi/internal/pulumimock"
)

func load(t *testing.T, config map[string]string) *Settings {
	var s *Settings
	_, err := pulumimock.Run(func(ctx *pulumi.Context) error {
		s = Load(ctx)
		return nil
	}, config)
	require.NoError(t, err)
	return s
}

func TestLoadDefaults(t *testing.T) {
	s := load(t, nil)

	require.Equal(t, pulumimock.Project, s.Project)
	require.Equal(t, pulumimock.Stack, s.Stack)
	require.Equal(t, DefaultBucketName, s.BucketName)
	require.Equal(t, DefaultTableName, s.TableName)
	require.Equal(t, DefaultFunctionName, s.FunctionName)
	require.Equal(t, DefaultCodePath, s.CodePath)
	require.Equal(t, DefaultHandler, s.Handler)
	require.Equal(t, DefaultRuntime, s.Runtime)
	require.Equal(t, DefaultArchitecture, s.Architecture)
	require.Equal(t, DefaultMemorySize, s.MemorySize)
	require.Equal(t, DefaultTimeout, s.Timeout)
	require.Equal(t, DefaultLogRetentionDays, s.LogRetentionDays)
	require.False(t, s.ErrorAlarm)
	require.False(t, s.ForceDestroy)
	require.NoError(t, s.Validate())
}

func TestLoadOverrides(t *testing.T) {
	s := load(t, map[string]string{
		"aws:region":                  "eu-west-1",
		"serverless:bucketName":       "uploads",
		"serverless:codePath":         "./build/function",
		"serverless:runtime":          "provided.al2",
		"serverless:architecture":     "x86_64",
		"serverless:memorySize":       "256",
		"serverless:logRetentionDays": "30",
		"serverless:errorAlarm":       "true",
		"serverless:alarmTopicArn":    "arn:aws:sns:eu-west-1:123456789012:alerts",
	})

	require.Equal(t, "eu-west-1", s.Region)
	require.Equal(t, "uploads", s.BucketName)
	require.Equal(t, DefaultTableName, s.TableName)
	require.Equal(t, "./build/function", s.CodePath)
	require.Equal(t, "provided.al2", s.Runtime)
	require.Equal(t, "x86_64", s.Architecture)
	require.Equal(t, 256, s.MemorySize)
	require.Equal(t, 30, s.LogRetentionDays)
	require.True(t, s.ErrorAlarm)
	require.Equal(t, "arn:aws:sns:eu-west-1:123456789012:alerts", s.AlarmTopicArn)
	require.NoError(t, s.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Settings {
		return &Settings{
			Architecture:     DefaultArchitecture,
			MemorySize:       DefaultMemorySize,
			Timeout:          DefaultTimeout,
			LogRetentionDays: DefaultLogRetentionDays,
		}
	}

	tests := []struct {
		name   string
		mutate func(s *Settings)
		errMsg string
	}{
		{"architecture", func(s *Settings) { s.Architecture = "mips" }, `architecture must be arm64 or x86_64, got "mips"`},
		{"memory too small", func(s *Settings) { s.MemorySize = 64 }, "memorySize must be between 128 and 10240 MB, got 64"},
		{"timeout too long", func(s *Settings) { s.Timeout = 901 }, "timeout must be between 1 and 900 seconds, got 901"},
		{"retention", func(s *Settings) { s.LogRetentionDays = 8 }, "logRetentionDays 8 is not a CloudWatch retention period"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := valid()
			tc.mutate(s)
			require.EqualError(t, s.Validate(), tc.errMsg)
		})
	}
}

func TestTags(t *testing.T) {
	s := &Settings{Project: "serverless", Stack: "dev"}
	tags := s.Tags()
	require.Len(t, tags, 3)
	require.Equal(t, pulumi.String("dev"), tags["Stack"])
	require.Equal(t, pulumi.String("pulumi"), tags["ManagedBy"])
}
