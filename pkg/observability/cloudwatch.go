package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// publishFailureThreshold is the number of consecutive PutMetricData failures
// that opens the breaker
const publishFailureThreshold = 3

// RunMetrics describes one completed analysis run
type RunMetrics struct {
	Source   string
	Records  int
	Dropped  int
	Edges    int
	Isolated int
	Duration time.Duration
}

// PutMetricDataAPI is the subset of the CloudWatch client used for publishing
type PutMetricDataAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchPublisher sends per-run metrics to CloudWatch. Calls go through a
// circuit breaker so a failing endpoint is skipped until it recovers.
type CloudWatchPublisher struct {
	namespace string
	client    PutMetricDataAPI
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

// NewCloudWatchPublisher creates a new publisher
func NewCloudWatchPublisher(namespace string, client PutMetricDataAPI, logger *zap.Logger) *CloudWatchPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "cloudwatch",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= publishFailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &CloudWatchPublisher{
		namespace: namespace,
		client:    client,
		breaker:   breaker,
		logger:    logger,
	}
}

// PublishRun records a run. Failures are logged and returned, but callers are
// expected to treat them as non-fatal.
func (p *CloudWatchPublisher) PublishRun(ctx context.Context, run RunMetrics) error {
	if p.client == nil {
		return nil
	}

	now := aws.Time(time.Now())
	dimensions := []types.Dimension{
		{
			Name:  aws.String("Source"),
			Value: aws.String(run.Source),
		},
	}
	datum := func(name string, value float64, unit types.StandardUnit) types.MetricDatum {
		return types.MetricDatum{
			MetricName: aws.String(name),
			Dimensions: dimensions,
			Value:      aws.Float64(value),
			Unit:       unit,
			Timestamp:  now,
		}
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(p.namespace),
		MetricData: []types.MetricDatum{
			datum("RecordsIngested", float64(run.Records), types.StandardUnitCount),
			datum("RowsDropped", float64(run.Dropped), types.StandardUnitCount),
			datum("EdgesDiscovered", float64(run.Edges), types.StandardUnitCount),
			datum("IsolatedRecords", float64(run.Isolated), types.StandardUnitCount),
			datum("AnalysisLatency", float64(run.Duration.Milliseconds()), types.StandardUnitMilliseconds),
		},
	}

	_, err := p.breaker.Execute(func() (interface{}, error) {
		return p.client.PutMetricData(ctx, input)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		p.logger.Debug("Skipping metrics while breaker is open", zap.String("namespace", p.namespace))
		return err
	}
	if err != nil {
		p.logger.Warn("Failed to send metrics", zap.String("namespace", p.namespace), zap.Error(err))
		return fmt.Errorf("failed to put metric data: %w", err)
	}
	return nil
}
