package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

// CloudWatchConfig holds configuration for CloudWatch log forwarding.
type CloudWatchConfig struct {
	// LogGroupName is the CloudWatch log group.
	LogGroupName string
	// LogStreamName is the log stream, typically a host or instance ID.
	LogStreamName string
	// SignConfig enables signing of entries before shipping. Nil disables it.
	SignConfig *SignatureConfig
}

// CloudWatchAPI defines the CloudWatch Logs operations used.
// This interface enables testing with mock implementations.
type CloudWatchAPI interface {
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// CloudWatchLogger ships action log entries to CloudWatch Logs. Shipping
// never fails the action being logged: errors go to stderr and the
// action proceeds.
type CloudWatchLogger struct {
	client        CloudWatchAPI
	config        *CloudWatchConfig
	sequenceToken *string
	mu            sync.Mutex
}

// NewCloudWatchLogger creates a CloudWatch logger from AWS config.
func NewCloudWatchLogger(awsCfg aws.Config, config *CloudWatchConfig) *CloudWatchLogger {
	return &CloudWatchLogger{client: cloudwatchlogs.NewFromConfig(awsCfg), config: config}
}

// NewCloudWatchLoggerWithClient creates a CloudWatch logger with a
// custom client for testing.
func NewCloudWatchLoggerWithClient(client CloudWatchAPI, config *CloudWatchConfig) *CloudWatchLogger {
	return &CloudWatchLogger{client: client, config: config}
}

// LogAction encodes, optionally signs, and ships an action log entry.
func (l *CloudWatchLogger) LogAction(entry ActionLogEntry) {
	message, err := l.encode(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cloudwatch marshal error: %v\n", err)
		return
	}
	l.putLogEvent(message)
}

// encode marshals the entry, wrapped in a signature when signing is
// configured. A signing failure falls back to the unsigned entry rather
// than dropping the record.
func (l *CloudWatchLogger) encode(entry any) (string, error) {
	if l.config.SignConfig != nil {
		signed, err := NewSignedEntry(entry, l.config.SignConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cloudwatch signing error: %v\n", err)
		} else {
			entry = signed
		}
	}
	message, err := json.Marshal(entry)
	return string(message), err
}

// putLogEvent sends one log event, tracking the sequence token across
// calls.
func (l *CloudWatchLogger) putLogEvent(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	input := &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(l.config.LogGroupName),
		LogStreamName: aws.String(l.config.LogStreamName),
		LogEvents: []types.InputLogEvent{
			{
				Message:   aws.String(message),
				Timestamp: aws.Int64(time.Now().UnixMilli()),
			},
		},
		SequenceToken: l.sequenceToken,
	}

	// The caller's context may already be done when the action itself
	// failed, so log shipping uses its own.
	output, err := l.client.PutLogEvents(context.Background(), input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cloudwatch PutLogEvents error: %v\n", err)
		return
	}
	if output != nil && output.NextSequenceToken != nil {
		l.sequenceToken = output.NextSequenceToken
	}
}
