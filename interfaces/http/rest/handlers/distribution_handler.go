package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"loangraph/application/ports"
	"loangraph/application/queries"
	querybus "loangraph/application/queries/bus"
	"loangraph/pkg/common"
	apperrors "loangraph/pkg/errors"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SourceNameHeader optionally labels an uploaded CSV in logs and errors
const SourceNameHeader = "X-Source-Name"

// DistributionHandler handles degree distribution requests
type DistributionHandler struct {
	queryBus       *querybus.QueryBus
	defaults       ports.RenderOptions
	maxRequestSize int64
	timeout        time.Duration
	logger         *zap.Logger
}

// NewDistributionHandler creates a new distribution handler
func NewDistributionHandler(
	queryBus *querybus.QueryBus,
	defaults ports.RenderOptions,
	maxRequestSize int64,
	timeout time.Duration,
	logger *zap.Logger,
) *DistributionHandler {
	return &DistributionHandler{
		queryBus:       queryBus,
		defaults:       defaults,
		maxRequestSize: maxRequestSize,
		timeout:        timeout,
		logger:         logger,
	}
}

// Analyze handles POST /api/v1/distributions
func (h *DistributionHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	includeAdjacency, err := parseBool(r, "adjacency")
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	result, err := h.queryBus.Ask(ctx, queries.AnalyzeDistributionQuery{
		SourceName:       r.Header.Get(SourceNameHeader),
		Body:             http.MaxBytesReader(w, r.Body, h.maxRequestSize),
		IncludeAdjacency: includeAdjacency,
	})
	if err != nil {
		h.respondError(w, r, "Failed to analyze distribution", err)
		return
	}

	analysis := result.(*queries.AnalyzeDistributionResult)
	common.RespondWithMeta(w, http.StatusOK, analysis, &common.MetaInfo{
		RequestID: middleware.GetReqID(r.Context()),
		RunID:     analysis.RunID,
		Version:   "v1",
	})
}

// Plot handles POST /api/v1/distributions/plot
func (h *DistributionHandler) Plot(w http.ResponseWriter, r *http.Request) {
	width, err := parseInt(r, "width", h.defaults.Width)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	height, err := parseInt(r, "height", h.defaults.Height)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = h.defaults.Format
	}
	title := r.URL.Query().Get("title")
	if title == "" {
		title = h.defaults.Title
	}

	ctx, cancel := h.context(r)
	defer cancel()

	result, err := h.queryBus.Ask(ctx, queries.RenderDistributionQuery{
		SourceName: r.Header.Get(SourceNameHeader),
		Body:       http.MaxBytesReader(w, r.Body, h.maxRequestSize),
		Format:     format,
		Width:      width,
		Height:     height,
		Title:      title,
	})
	if err != nil {
		h.respondError(w, r, "Failed to render distribution", err)
		return
	}

	plot := result.(*queries.RenderDistributionResult)
	w.Header().Set("Content-Type", plot.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(plot.Image)))
	w.Header().Set("X-Run-ID", plot.Analysis.RunID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(plot.Image); err != nil {
		h.logger.Warn("Failed to write plot", zap.Error(err))
	}
}

func (h *DistributionHandler) context(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

func (h *DistributionHandler) respondError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		err = apperrors.NewTooLargeError(tooLarge.Limit)
	}
	if appErr := apperrors.GetAppError(err); appErr != nil && appErr.Type == apperrors.ErrorTypeTooLarge {
		err = appErr.WithCode(common.StandardErrorCodes.PayloadTooLarge)
	}

	status := apperrors.HTTPStatus(err)
	fields := []zap.Field{
		zap.String("requestID", middleware.GetReqID(r.Context())),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, fields...)
	} else {
		h.logger.Warn(msg, fields...)
	}

	common.RespondAppError(w, err)
}

func parseBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.NewValidationError(name + " must be a boolean").WithCause(err)
	}
	return v, nil
}

func parseInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError(name + " must be an integer").WithCause(err)
	}
	return v, nil
}
