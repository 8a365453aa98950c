package settings

import (
	"errors"
	"fmt"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

const Namespace = "serverless"

const (
	DefaultBucketName       = "mybucket"
	DefaultTableName        = "myDynamotable"
	DefaultFunctionName     = "myLambda"
	DefaultCodePath         = "./function"
	DefaultHandler          = "bootstrap"
	DefaultRuntime          = "provided.al2023"
	DefaultArchitecture     = "arm64"
	DefaultMemorySize       = 128
	DefaultTimeout          = 10
	DefaultLogRetentionDays = 7
)

// retention values accepted by CloudWatch Logs
var retentionDays = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 14: true, 30: true, 60: true, 90: true,
	120: true, 150: true, 180: true, 365: true, 400: true, 545: true, 731: true,
	1096: true, 1827: true, 2192: true, 2557: true, 2922: true, 3288: true, 3653: true,
}

// Settings is the stack configuration for the serverless program.
type Settings struct {
	Project string
	Stack   string
	Region  string

	BucketName   string
	TableName    string
	FunctionName string

	CodePath     string
	Handler      string
	Runtime      string
	Architecture string
	MemorySize   int
	Timeout      int

	LogRetentionDays int
	ErrorAlarm       bool
	AlarmTopicArn    string
	ForceDestroy     bool
}

// Load reads the "serverless" config namespace, filling in defaults for
// anything the stack leaves unset.
func Load(ctx *pulumi.Context) *Settings {
	conf := config.New(ctx, Namespace)
	// 区域只用于日志
	region, _ := ctx.GetConfig("aws:region")

	return &Settings{
		Project: ctx.Project(),
		Stack:   ctx.Stack(),
		Region:  region,

		BucketName:   stringOr(conf.Get("bucketName"), DefaultBucketName),
		TableName:    stringOr(conf.Get("tableName"), DefaultTableName),
		FunctionName: stringOr(conf.Get("functionName"), DefaultFunctionName),

		CodePath:     stringOr(conf.Get("codePath"), DefaultCodePath),
		Handler:      stringOr(conf.Get("handler"), DefaultHandler),
		Runtime:      stringOr(conf.Get("runtime"), DefaultRuntime),
		Architecture: stringOr(conf.Get("architecture"), DefaultArchitecture),
		MemorySize:   intOr(conf.GetInt("memorySize"), DefaultMemorySize),
		Timeout:      intOr(conf.GetInt("timeout"), DefaultTimeout),

		LogRetentionDays: intOr(conf.GetInt("logRetentionDays"), DefaultLogRetentionDays),
		ErrorAlarm:       conf.GetBool("errorAlarm"),
		AlarmTopicArn:    conf.Get("alarmTopicArn"),
		ForceDestroy:     conf.GetBool("forceDestroy"),
	}
}

// Validate rejects values the provider would only refuse at apply time.
func (s *Settings) Validate() error {
	var errs []error
	if s.Architecture != "arm64" && s.Architecture != "x86_64" {
		errs = append(errs, fmt.Errorf("architecture must be arm64 or x86_64, got %q", s.Architecture))
	}
	if s.MemorySize < 128 || s.MemorySize > 10240 {
		errs = append(errs, fmt.Errorf("memorySize must be between 128 and 10240 MB, got %d", s.MemorySize))
	}
	if s.Timeout < 1 || s.Timeout > 900 {
		errs = append(errs, fmt.Errorf("timeout must be between 1 and 900 seconds, got %d", s.Timeout))
	}
	if !retentionDays[s.LogRetentionDays] {
		errs = append(errs, fmt.Errorf("logRetentionDays %d is not a CloudWatch retention period", s.LogRetentionDays))
	}
	return errors.Join(errs...)
}

// Tags are applied to every taggable resource in the stack.
func (s *Settings) Tags() pulumi.StringMap {
	return pulumi.StringMap{
		"Project":   pulumi.String(s.Project),
		"Stack":     pulumi.String(s.Stack),
		"ManagedBy": pulumi.String("pulumi"),
	}
}

func stringOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func intOr(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
