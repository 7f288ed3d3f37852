package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"floodroute/internal/types"
)

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for
// testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// WorkerMetrics emits ingest-worker metrics to CloudWatch. The worker runs as
// a Lambda, so there is no process to scrape; metrics are pushed per record
// batch instead. Emission failures are logged and swallowed; metrics must
// never fail a batch.
type WorkerMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    *slog.Logger
}

// NewWorkerMetrics creates a WorkerMetrics publishing to the given CloudWatch
// namespace.
func NewWorkerMetrics(client CloudWatchClient, namespace string, logger *slog.Logger) *WorkerMetrics {
	return &WorkerMetrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// RecordReportProcessed emits one ReportProcessed datum with Result and
// RiskLevel dimensions.
func (m *WorkerMetrics) RecordReportProcessed(ctx context.Context, result string, level types.RiskLevel) {
	m.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String("ReportProcessed"),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: []cwtypes.Dimension{
			{Name: aws.String("Result"), Value: aws.String(result)},
			{Name: aws.String("RiskLevel"), Value: aws.String(string(level))},
		},
	})
}

// RecordProcessingLatency emits the time taken to score one report.
func (m *WorkerMetrics) RecordProcessingLatency(ctx context.Context, duration time.Duration) {
	m.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String("ReportProcessingLatency"),
		Value:      aws.Float64(float64(duration.Milliseconds())),
		Unit:       cwtypes.StandardUnitMilliseconds,
	})
}

// RecordQueueLag emits the delay between report enqueue and processing start.
func (m *WorkerMetrics) RecordQueueLag(ctx context.Context, lag time.Duration) {
	m.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String("ReportQueueLag"),
		Value:      aws.Float64(float64(lag.Milliseconds())),
		Unit:       cwtypes.StandardUnitMilliseconds,
	})
}

func (m *WorkerMetrics) put(ctx context.Context, datum cwtypes.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{datum},
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.ErrorContext(ctx, "failed to emit worker metric",
			"metric", aws.ToString(datum.MetricName),
			"error", err.Error(),
		)
	}
}
