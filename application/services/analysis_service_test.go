package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"loangraph/application/ports"
	"loangraph/domain/config"
	"loangraph/domain/core/entities"
	domainservices "loangraph/domain/services"
	apperrors "loangraph/pkg/errors"
	"loangraph/pkg/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubStore struct {
	records []entities.LoanRecord
	report  ports.IngestReport
	err     error
	loaded  string
}

func (s *stubStore) Load(ctx context.Context, name string, r io.Reader) ([]entities.LoanRecord, ports.IngestReport, error) {
	s.loaded = name
	return s.records, s.report, s.err
}

func (s *stubStore) LoadFile(ctx context.Context, path string) ([]entities.LoanRecord, ports.IngestReport, error) {
	s.loaded = path
	return s.records, s.report, s.err
}

func loan(education, intent string) entities.LoanRecord {
	return entities.LoanRecord{PersonEducation: education, LoanIntent: intent}
}

func newService(t *testing.T, store ports.RecordStore, metrics *observability.Collector) *AnalysisService {
	t.Helper()
	return NewAnalysisService(
		store,
		domainservices.NewGraphBuilder(config.SequentialDomainConfig()),
		domainservices.NewDegreeAnalyzer(),
		metrics,
		nil,
		zaptest.NewLogger(t),
	)
}

func TestAnalysisService_Run(t *testing.T) {
	store := &stubStore{
		records: []entities.LoanRecord{
			loan("Bachelor", "PERSONAL"),
			loan("Bachelor", "MEDICAL"),
			loan("Doctorate", "VENTURE"),
		},
		report: ports.IngestReport{Source: "upload.csv", Accepted: 3, Dropped: 1, DroppedLines: []int{4}},
	}
	metrics := observability.NewCollector("test")
	svc := newService(t, store, metrics)

	result, err := svc.Run(context.Background(), "upload.csv", strings.NewReader(""))
	require.NoError(t, err)

	assert.Equal(t, "upload.csv", store.loaded)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, map[int]int{1: 2}, result.Histogram.AsMap())
	assert.Equal(t, 3, result.Summary.RecordCount)
	assert.Equal(t, 1, result.Summary.IsolatedCount)
	assert.Equal(t, 1, result.Report.Dropped)

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.RecordsIngested))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RowsDropped))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.PairComparisons))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EdgesDiscovered))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Analyses.WithLabelValues("success")))
}

func TestAnalysisService_RunFile(t *testing.T) {
	store := &stubStore{records: []entities.LoanRecord{loan("A", "X"), loan("A", "Y")}}
	svc := newService(t, store, nil)

	result, err := svc.RunFile(context.Background(), "/data/loan_data.csv")
	require.NoError(t, err)

	assert.Equal(t, "/data/loan_data.csv", store.loaded)
	assert.Equal(t, 1, result.Graph.EdgeCount())
}

func TestAnalysisService_DistinctRunIDs(t *testing.T) {
	svc := newService(t, &stubStore{}, nil)

	first, err := svc.RunFile(context.Background(), "a.csv")
	require.NoError(t, err)
	second, err := svc.RunFile(context.Background(), "a.csv")
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestAnalysisService_LoadFailure(t *testing.T) {
	store := &stubStore{err: apperrors.NewIngestionError("missing.csv", errors.New("no such file"))}
	metrics := observability.NewCollector("test")
	svc := newService(t, store, metrics)

	result, err := svc.RunFile(context.Background(), "missing.csv")

	assert.Nil(t, result)
	assert.True(t, apperrors.IsIngestion(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Analyses.WithLabelValues("error")))
}

func TestAnalysisService_CancelledContext(t *testing.T) {
	svc := newService(t, &stubStore{records: []entities.LoanRecord{loan("A", "X")}}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RunFile(ctx, "a.csv")

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnavailable))
}

type recordingPublisher struct {
	runs []observability.RunMetrics
	err  error
}

func (p *recordingPublisher) PublishRun(_ context.Context, run observability.RunMetrics) error {
	p.runs = append(p.runs, run)
	return p.err
}

func TestAnalysisService_PublishesRun(t *testing.T) {
	store := &stubStore{
		records: []entities.LoanRecord{
			loan("Master", "EDUCATION"),
			loan("Master", "VENTURE"),
			loan("Associate", "HOMEIMPROVEMENT"),
		},
		report: ports.IngestReport{Accepted: 3, Dropped: 4},
	}
	publisher := &recordingPublisher{err: errors.New("unreachable")}
	service := newService(t, store, nil).WithPublisher(publisher)

	_, err := service.Run(context.Background(), "upload.csv", strings.NewReader(""))

	require.NoError(t, err, "publish failures must not fail the run")
	require.Len(t, publisher.runs, 1)
	run := publisher.runs[0]
	assert.Equal(t, UploadSource, run.Source)
	assert.Equal(t, 3, run.Records)
	assert.Equal(t, 4, run.Dropped)
	assert.Equal(t, 1, run.Edges)
	assert.Equal(t, 1, run.Isolated)
}

func TestAnalysisService_PublishedSource(t *testing.T) {
	publisher := &recordingPublisher{}
	service := newService(t, &stubStore{}, nil).WithPublisher(publisher)

	_, err := service.Run(context.Background(), "client-chosen-name-7f3a", strings.NewReader(""))
	require.NoError(t, err)
	_, err = service.RunFile(context.Background(), "/data/loan_data.csv")
	require.NoError(t, err)

	require.Len(t, publisher.runs, 2)
	assert.Equal(t, UploadSource, publisher.runs[0].Source)
	assert.Equal(t, "loan_data.csv", publisher.runs[1].Source)
}

func TestAnalysisService_MaxRecords(t *testing.T) {
	records := []entities.LoanRecord{loan("A", "X"), loan("A", "Y"), loan("B", "Y")}
	metrics := observability.NewCollector("test")
	publisher := &recordingPublisher{}
	service := newService(t, &stubStore{records: records}, metrics).WithPublisher(publisher).WithMaxRecords(2)

	result, err := service.Run(context.Background(), "upload.csv", strings.NewReader(""))

	assert.Nil(t, result)
	require.True(t, apperrors.IsType(err, apperrors.ErrorTypeTooLarge))
	assert.Equal(t, http.StatusRequestEntityTooLarge, apperrors.HTTPStatus(err))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.PairComparisons))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Analyses.WithLabelValues("error")))
	assert.Empty(t, publisher.runs)

	result, err = service.WithMaxRecords(3).Run(context.Background(), "upload.csv", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Graph.EdgeCount())
}

func TestAnalysisService_BuildHonorsDeadline(t *testing.T) {
	records := make([]entities.LoanRecord, 50)
	for i := range records {
		records[i] = loan("Bachelor", "PERSONAL")
	}
	service := newService(t, &stubStore{records: records}, nil)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := service.Run(ctx, "upload.csv", strings.NewReader(""))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTimeout))
}
