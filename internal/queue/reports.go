// Package queue provides the SQS producer that hands analyzed flood reports
// to the asynchronous scoring worker.
package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"floodroute/internal/config"
	"floodroute/internal/types"
)

// SQSSender abstracts the SQS SendMessage operation for testability.
// Production code uses the *sqs.Client from aws-sdk-go-v2.
type SQSSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// ReportProducer serializes FloodReportMessages and sends them to the report
// scoring queue. The ingest worker consumes them Lambda-side.
type ReportProducer struct {
	client   SQSSender
	queueURL string
	logger   *slog.Logger
}

// NewReportProducer creates a ReportProducer for the configured report queue.
func NewReportProducer(client SQSSender, cfg config.QueueConfig, logger *slog.Logger) *ReportProducer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportProducer{
		client:   client,
		queueURL: cfg.ReportQueueURL,
		logger:   logger,
	}
}

// Enqueue sends one flood report to the scoring queue. The report ID rides
// along as a message attribute so operators can trace a report without
// parsing bodies.
func (p *ReportProducer) Enqueue(ctx context.Context, msg types.FloodReportMessage) error {
	if p.queueURL == "" {
		return types.NewAppError(
			types.ErrCodeUpstreamQueue,
			"report queue is not configured",
			nil,
		)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to serialize report message",
			err,
		)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]sqsTypes.MessageAttributeValue{
			"report_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(msg.ReportID),
			},
		},
	}

	if _, err := p.client.SendMessage(ctx, input); err != nil {
		return types.NewAppError(
			types.ErrCodeUpstreamQueue,
			"failed to enqueue report for scoring",
			err,
		)
	}

	p.logger.InfoContext(ctx, "report enqueued for scoring",
		"report_id", msg.ReportID,
		"queue_url", p.queueURL,
		"flood_detected", msg.FloodDetected,
	)

	return nil
}

// NewSQSClient builds an SQS client from the queue configuration. A non-empty
// EndpointURL redirects calls to a local emulator (LocalStack) during
// development.
func NewSQSClient(ctx context.Context, cfg config.QueueConfig) (*sqs.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, err
	}

	return sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
		}
	}), nil
}
