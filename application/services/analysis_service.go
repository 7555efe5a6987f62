package services

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"time"

	"loangraph/application/ports"
	"loangraph/domain/core/aggregates"
	"loangraph/domain/core/entities"
	domainservices "loangraph/domain/services"
	apperrors "loangraph/pkg/errors"
	"loangraph/pkg/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AnalysisResult is everything one run produced
type AnalysisResult struct {
	RunID     string
	Report    ports.IngestReport
	Graph     *aggregates.SimilarityGraph
	Histogram aggregates.DegreeHistogram
	Summary   domainservices.GraphSummary
}

// RunPublisher receives a summary of every successful run
type RunPublisher interface {
	PublishRun(ctx context.Context, run observability.RunMetrics) error
}

// UploadSource labels published runs whose records arrived as a stream.
// Stream names come from clients and never reach the publisher.
const UploadSource = "upload"

// AnalysisService runs the ingest, build and analyze pipeline
type AnalysisService struct {
	store     ports.RecordStore
	builder   *domainservices.GraphBuilder
	analyzer  *domainservices.DegreeAnalyzer
	metrics   *observability.Collector
	tracer    *observability.Tracer
	publisher  RunPublisher
	maxRecords int
	logger     *zap.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	store ports.RecordStore,
	builder *domainservices.GraphBuilder,
	analyzer *domainservices.DegreeAnalyzer,
	metrics *observability.Collector,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *AnalysisService {
	if tracer == nil {
		tracer = observability.NewNoopTracer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{
		store:    store,
		builder:  builder,
		analyzer: analyzer,
		metrics:  metrics,
		tracer:   tracer,
		logger:   logger,
	}
}

// WithPublisher sets where run summaries are sent
func (s *AnalysisService) WithPublisher(publisher RunPublisher) *AnalysisService {
	s.publisher = publisher
	return s
}

// WithMaxRecords rejects inputs holding more than limit records before the
// graph is built. Zero disables the limit.
func (s *AnalysisService) WithMaxRecords(limit int) *AnalysisService {
	s.maxRecords = limit
	return s
}

// Run analyzes the records read from r
func (s *AnalysisService) Run(ctx context.Context, name string, r io.Reader) (*AnalysisResult, error) {
	return s.run(ctx, name, UploadSource, func(ctx context.Context) ([]entities.LoanRecord, ports.IngestReport, error) {
		return s.store.Load(ctx, name, r)
	})
}

// RunFile analyzes the records stored at path
func (s *AnalysisService) RunFile(ctx context.Context, path string) (*AnalysisResult, error) {
	return s.run(ctx, path, filepath.Base(path), func(ctx context.Context) ([]entities.LoanRecord, ports.IngestReport, error) {
		return s.store.LoadFile(ctx, path)
	})
}

type loadFunc func(ctx context.Context) ([]entities.LoanRecord, ports.IngestReport, error)

func (s *AnalysisService) run(ctx context.Context, source, publishAs string, load loadFunc) (result *AnalysisResult, err error) {
	runID := uuid.New().String()
	runStart := time.Now()
	logger := s.logger.With(zap.String("run_id", runID), zap.String("source", source))

	ctx, span := s.tracer.StartSpan(ctx, "analysis.run",
		attribute.String("run_id", runID),
		attribute.String("source", source),
	)
	defer func() {
		observability.RecordError(span, err)
		span.End()
		s.countRun(err)
	}()

	// Ingest
	start := time.Now()
	_, ingestSpan := s.tracer.StartSpan(ctx, "analysis.ingest")
	records, report, err := load(ctx)
	observability.RecordError(ingestSpan, err)
	ingestSpan.End()
	if err != nil {
		logger.Error("Failed to load records", zap.Error(err))
		return nil, err
	}
	s.observe(observability.StageIngest, time.Since(start))
	if s.metrics != nil {
		s.metrics.RecordsIngested.Add(float64(report.Accepted))
		s.metrics.RowsDropped.Add(float64(report.Dropped))
	}
	logger.Info("Loaded loan records",
		zap.Int("records", report.Accepted),
		zap.Int("dropped", report.Dropped),
	)

	if s.maxRecords > 0 && len(records) > s.maxRecords {
		logger.Warn("Rejecting oversized input",
			zap.Int("records", len(records)),
			zap.Int("max_records", s.maxRecords),
		)
		return nil, apperrors.NewTooManyRecordsError(len(records), s.maxRecords)
	}

	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	// Build
	start = time.Now()
	buildCtx, buildSpan := s.tracer.StartSpan(ctx, "analysis.build", attribute.Int("records", len(records)))
	graph, err := s.builder.BuildContext(buildCtx, records)
	observability.RecordError(buildSpan, err)
	if err != nil {
		buildSpan.End()
		logger.Warn("Graph build interrupted", zap.Error(err))
		if ctxErr := checkContext(ctx); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	buildSpan.SetAttributes(attribute.Int("edges", graph.EdgeCount()))
	buildSpan.End()
	s.observe(observability.StageBuild, time.Since(start))
	if s.metrics != nil {
		s.metrics.PairComparisons.Add(float64(domainservices.PairCount(len(records))))
		s.metrics.EdgesDiscovered.Add(float64(graph.EdgeCount()))
	}

	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	// Analyze
	start = time.Now()
	histogram := s.analyzer.Analyze(graph)
	summary := s.analyzer.Summarize(graph)
	s.observe(observability.StageAnalyze, time.Since(start))

	logger.Info("Analysis completed",
		zap.Int("nodes", summary.NodeCount),
		zap.Int("edges", summary.EdgeCount),
		zap.Int("isolated", summary.IsolatedCount),
		zap.Int("max_degree", summary.MaxDegree),
	)

	if s.publisher != nil {
		err := s.publisher.PublishRun(ctx, observability.RunMetrics{
			Source:   publishAs,
			Records:  summary.RecordCount,
			Dropped:  report.Dropped,
			Edges:    summary.EdgeCount,
			Isolated: summary.IsolatedCount,
			Duration: time.Since(runStart),
		})
		if err != nil {
			logger.Warn("Failed to publish run metrics", zap.Error(err))
		}
	}

	return &AnalysisResult{
		RunID:     runID,
		Report:    report,
		Graph:     graph,
		Histogram: histogram,
		Summary:   summary,
	}, nil
}

func (s *AnalysisService) observe(stage string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveStage(stage, d)
	}
}

func (s *AnalysisService) countRun(err error) {
	if s.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.Analyses.WithLabelValues(status).Inc()
}

func checkContext(ctx context.Context) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("analysis").WithCause(err)
	default:
		return apperrors.NewUnavailableError("analysis").WithCause(err)
	}
}
