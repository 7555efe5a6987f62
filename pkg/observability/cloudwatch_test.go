package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (f *fakeCloudWatch) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs = append(f.inputs, params)
	return &cloudwatch.PutMetricDataOutput{}, f.err
}

func TestCloudWatchPublisher_PublishRun(t *testing.T) {
	client := &fakeCloudWatch{}
	publisher := NewCloudWatchPublisher("LoanGraph/test", client, zaptest.NewLogger(t))

	err := publisher.PublishRun(context.Background(), RunMetrics{
		Source:   "loan_data.csv",
		Records:  45000,
		Dropped:  2,
		Edges:    1200,
		Isolated: 3,
		Duration: 1500 * time.Millisecond,
	})
	require.NoError(t, err)
	require.Len(t, client.inputs, 1)

	input := client.inputs[0]
	assert.Equal(t, "LoanGraph/test", aws.ToString(input.Namespace))

	values := make(map[string]float64)
	for _, d := range input.MetricData {
		values[aws.ToString(d.MetricName)] = aws.ToFloat64(d.Value)
		require.Len(t, d.Dimensions, 1)
		assert.Equal(t, "loan_data.csv", aws.ToString(d.Dimensions[0].Value))
	}
	assert.Equal(t, map[string]float64{
		"RecordsIngested": 45000,
		"RowsDropped":     2,
		"EdgesDiscovered": 1200,
		"IsolatedRecords": 3,
		"AnalysisLatency": 1500,
	}, values)
	assert.Equal(t, types.StandardUnitMilliseconds, input.MetricData[4].Unit)
}

func TestCloudWatchPublisher_Error(t *testing.T) {
	client := &fakeCloudWatch{err: errors.New("throttled")}
	publisher := NewCloudWatchPublisher("LoanGraph/test", client, zaptest.NewLogger(t))

	err := publisher.PublishRun(context.Background(), RunMetrics{Source: "x"})

	assert.ErrorContains(t, err, "throttled")
}

func TestCloudWatchPublisher_NilClient(t *testing.T) {
	publisher := NewCloudWatchPublisher("LoanGraph/test", nil, zaptest.NewLogger(t))

	assert.NoError(t, publisher.PublishRun(context.Background(), RunMetrics{}))
}

func TestCloudWatchPublisher_BreakerOpensAfterFailures(t *testing.T) {
	client := &fakeCloudWatch{err: errors.New("throttled")}
	publisher := NewCloudWatchPublisher("LoanGraph/test", client, zaptest.NewLogger(t))

	for i := 0; i < publishFailureThreshold; i++ {
		assert.ErrorContains(t, publisher.PublishRun(context.Background(), RunMetrics{}), "throttled")
	}

	err := publisher.PublishRun(context.Background(), RunMetrics{})

	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Len(t, client.inputs, publishFailureThreshold)
}
