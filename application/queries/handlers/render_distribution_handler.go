package handlers

import (
	"bytes"
	"context"
	"time"

	"loangraph/application/ports"
	"loangraph/application/queries"
	"loangraph/application/services"
	"loangraph/pkg/observability"

	"go.uber.org/zap"
)

// RenderDistributionHandler analyzes a record source and plots its histogram
type RenderDistributionHandler struct {
	analysis *services.AnalysisService
	renderer ports.DistributionRenderer
	metrics  *observability.Collector
	logger   *zap.Logger
}

// NewRenderDistributionHandler creates a new render handler
func NewRenderDistributionHandler(
	analysis *services.AnalysisService,
	renderer ports.DistributionRenderer,
	metrics *observability.Collector,
	logger *zap.Logger,
) *RenderDistributionHandler {
	return &RenderDistributionHandler{
		analysis: analysis,
		renderer: renderer,
		metrics:  metrics,
		logger:   logger,
	}
}

// Handle executes the render query
func (h *RenderDistributionHandler) Handle(ctx context.Context, query queries.RenderDistributionQuery) (*queries.RenderDistributionResult, error) {
	result, err := runAnalysis(ctx, h.analysis, query.SourceName, query.Body, query.Path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := h.renderer.Render(ctx, result.Histogram, query.Options(), &buf); err != nil {
		return nil, err
	}
	if h.metrics != nil {
		h.metrics.ObserveStage(observability.StageRender, time.Since(start))
	}

	h.logger.Info("Rendered degree distribution",
		zap.String("run_id", result.RunID),
		zap.String("format", query.Format),
		zap.Int("bytes", buf.Len()),
	)

	return &queries.RenderDistributionResult{
		ContentType: queries.ContentTypeFor(query.Format),
		Image:       buf.Bytes(),
		Analysis:    *toDistributionResult(result),
	}, nil
}
