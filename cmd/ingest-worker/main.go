// Package main is the entrypoint for the Ingest Worker Lambda function.
//
// The worker consumes analyzed flood reports from the report SQS queue,
// scores each one through the assessment service (town resolution, MET
// warning fusion, persistence, event publishing), and emits CloudWatch
// metrics. It uses the SQS Lambda handler pattern with partial batch
// responses: messages that fail scoring are reported back so SQS retries
// only those.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"

	"floodroute/internal/assessment"
	"floodroute/internal/config"
	"floodroute/internal/db"
	evt "floodroute/internal/events"
	"floodroute/internal/external"
	"floodroute/internal/observability"
	"floodroute/internal/types"
)

// ReportScorer scores one queued flood report. A (nil, nil) return means the
// report was deliberately skipped (no flood detected).
type ReportScorer interface {
	ScoreReport(ctx context.Context, msg types.FloodReportMessage) (*types.AssessResponse, error)
}

// Handler holds the dependencies for the ingest worker Lambda handler.
type Handler struct {
	scorer  ReportScorer
	metrics *observability.WorkerMetrics
	logger  *slog.Logger
}

// Handle processes an SQS event containing one or more flood report messages.
// Each message is scored independently; failures are returned as partial
// batch failures so SQS redelivers only the affected messages.
func (h *Handler) Handle(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	response := events.SQSEventResponse{}

	for _, record := range sqsEvent.Records {
		if err := h.processMessage(ctx, record); err != nil {
			h.logger.Error("failed to process report message",
				"message_id", record.MessageId,
				"error", err.Error(),
			)
			response.BatchItemFailures = append(response.BatchItemFailures,
				events.SQSBatchItemFailure{ItemIdentifier: record.MessageId},
			)
		}
	}

	return response, nil
}

// processMessage scores a single queued report.
func (h *Handler) processMessage(ctx context.Context, record events.SQSMessage) error {
	start := time.Now()

	var msg types.FloodReportMessage
	if err := json.Unmarshal([]byte(record.Body), &msg); err != nil {
		h.logger.Error("failed to unmarshal report message",
			"message_id", record.MessageId,
			"error", err.Error(),
		)
		// Permanent parse failure, redelivery cannot fix it.
		h.metrics.RecordReportProcessed(ctx, "parse_failure", "")
		return nil
	}

	logger := h.logger.With(
		"report_id", msg.ReportID,
		"retry_count", msg.RetryCount,
	)
	logger.InfoContext(ctx, "scoring queued report")

	if sent, ok := record.Attributes["SentTimestamp"]; ok {
		if sentAt, err := parseMillisTimestamp(sent); err == nil {
			h.metrics.RecordQueueLag(ctx, time.Since(sentAt))
		}
	}

	resp, err := h.scorer.ScoreReport(ctx, msg)
	if err != nil {
		h.metrics.RecordReportProcessed(ctx, "failure", "")
		return err
	}
	if resp == nil {
		logger.InfoContext(ctx, "report skipped, no flood detected")
		h.metrics.RecordReportProcessed(ctx, "skipped", "")
		return nil
	}

	h.metrics.RecordReportProcessed(ctx, "success", resp.RiskLevel)
	h.metrics.RecordProcessingLatency(ctx, time.Since(start))

	logger.InfoContext(ctx, "report scored",
		"assessment_id", resp.AssessmentID,
		"final_score", resp.FinalScore,
		"risk_level", string(resp.RiskLevel),
	)
	return nil
}

// parseMillisTimestamp converts an SQS SentTimestamp (epoch milliseconds) to
// a time.Time.
func parseMillisTimestamp(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	logger.Info("ingest worker initializing (cold start)")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Queue.AWSRegion))
	if err != nil {
		logger.Error("failed to load AWS SDK config", "error", err)
		os.Exit(1)
	}

	metClient := external.NewMetClient(
		&http.Client{Timeout: cfg.Met.Timeout},
		external.MetClientConfig{
			Token:   cfg.Met.APIKey.Unmask(),
			BaseURL: cfg.Met.BaseURL,
			Logger:  logger,
		},
	)

	var publisher assessment.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = evt.NewAssessmentPublisher(cfg.Kafka, logger)
	} else {
		logger.Warn("no Kafka brokers configured, assessment events disabled")
	}

	scorer := assessment.NewService(
		db.NewTownRepository(pool),
		metClient,
		db.NewAssessmentRepository(pool),
		publisher,
		nil, // Prometheus metrics are API-process only; the worker uses CloudWatch
		logger,
	)

	metrics := observability.NewWorkerMetrics(
		cloudwatch.NewFromConfig(awsCfg),
		cfg.Observability.MetricNamespace,
		logger,
	)

	handler := &Handler{scorer: scorer, metrics: metrics, logger: logger}
	lambda.Start(handler.Handle)
}
