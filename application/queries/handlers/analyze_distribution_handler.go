package handlers

import (
	"context"
	"fmt"
	"io"

	"loangraph/application/queries"
	"loangraph/application/queries/bus"
	"loangraph/application/services"

	"go.uber.org/zap"
)

const defaultSourceName = "request body"

// AnalyzeDistributionHandler handles degree distribution queries
type AnalyzeDistributionHandler struct {
	analysis *services.AnalysisService
	logger   *zap.Logger
}

// NewAnalyzeDistributionHandler creates a new distribution handler
func NewAnalyzeDistributionHandler(analysis *services.AnalysisService, logger *zap.Logger) *AnalyzeDistributionHandler {
	return &AnalyzeDistributionHandler{
		analysis: analysis,
		logger:   logger,
	}
}

// Handle executes the distribution query
func (h *AnalyzeDistributionHandler) Handle(ctx context.Context, query queries.AnalyzeDistributionQuery) (*queries.AnalyzeDistributionResult, error) {
	result, err := runAnalysis(ctx, h.analysis, query.SourceName, query.Body, query.Path)
	if err != nil {
		return nil, err
	}

	out := toDistributionResult(result)
	if query.IncludeAdjacency {
		out.Adjacency = result.Graph.Adjacency()
		h.logger.Debug("Including adjacency in result",
			zap.String("run_id", result.RunID),
			zap.Int("nodes", len(out.Adjacency)),
		)
	}
	return out, nil
}

// Register wires both query handlers into the bus
func Register(b *bus.QueryBus, analyze *AnalyzeDistributionHandler, render *RenderDistributionHandler) error {
	if err := b.Register(queries.AnalyzeDistributionQuery{}, bus.QueryHandlerFunc(
		func(ctx context.Context, q bus.Query) (interface{}, error) {
			return analyze.Handle(ctx, q.(queries.AnalyzeDistributionQuery))
		},
	)); err != nil {
		return fmt.Errorf("failed to register analyze handler: %w", err)
	}

	if err := b.Register(queries.RenderDistributionQuery{}, bus.QueryHandlerFunc(
		func(ctx context.Context, q bus.Query) (interface{}, error) {
			return render.Handle(ctx, q.(queries.RenderDistributionQuery))
		},
	)); err != nil {
		return fmt.Errorf("failed to register render handler: %w", err)
	}

	return nil
}

func runAnalysis(ctx context.Context, analysis *services.AnalysisService, name string, body io.Reader, path string) (*services.AnalysisResult, error) {
	if path != "" {
		return analysis.RunFile(ctx, path)
	}
	if name == "" {
		name = defaultSourceName
	}
	return analysis.Run(ctx, name, body)
}

func toDistributionResult(result *services.AnalysisResult) *queries.AnalyzeDistributionResult {
	return &queries.AnalyzeDistributionResult{
		RunID:         result.RunID,
		RecordCount:   result.Summary.RecordCount,
		DroppedRows:   result.Report.Dropped,
		NodeCount:     result.Summary.NodeCount,
		EdgeCount:     result.Summary.EdgeCount,
		IsolatedCount: result.Summary.IsolatedCount,
		MaxDegree:     result.Summary.MaxDegree,
		MeanDegree:    result.Summary.MeanDegree,
		Distribution:  result.Histogram.Entries(),
	}
}
