package di

import (
	"context"
	"fmt"

	"loangraph/application/ports"
	querybus "loangraph/application/queries/bus"
	queryhandlers "loangraph/application/queries/handlers"
	"loangraph/application/services"
	domainservices "loangraph/domain/services"
	"loangraph/infrastructure/config"
	"loangraph/infrastructure/ingest"
	"loangraph/infrastructure/render"
	"loangraph/interfaces/http/rest"
	"loangraph/interfaces/http/rest/handlers"
	"loangraph/pkg/observability"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.Encoding = cfg.Logging.Format

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(zap.String("environment", string(cfg.Environment))), nil
}

// ProvideMetrics creates the Prometheus collector. Metrics.Enabled only
// controls whether it is served.
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.Metrics.Namespace)
}

// ProvideTracer creates the OpenTelemetry tracer
func ProvideTracer(ctx context.Context, cfg *config.Config) (*observability.Tracer, error) {
	return observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: string(cfg.Environment),
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRate:  cfg.Tracing.SampleRate,
	})
}

// ProvideRunPublisher creates the CloudWatch publisher when it is enabled
func ProvideRunPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (services.RunPublisher, error) {
	cw := cfg.Metrics.CloudWatch
	if !cw.Enabled {
		return nil, nil
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cw.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cw.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return observability.NewCloudWatchPublisher(cw.Namespace, cloudwatch.NewFromConfig(awsCfg), logger), nil
}

// ProvideRecordStore creates the CSV record store
func ProvideRecordStore(logger *zap.Logger) ports.RecordStore {
	return ingest.NewCSVStore(logger)
}

// ProvideGraphBuilder creates a graph builder from the analysis settings
func ProvideGraphBuilder(cfg *config.Config) *domainservices.GraphBuilder {
	return domainservices.NewGraphBuilder(cfg.DomainConfig())
}

// ProvideDegreeAnalyzer creates a degree analyzer
func ProvideDegreeAnalyzer() *domainservices.DegreeAnalyzer {
	return domainservices.NewDegreeAnalyzer()
}

// ProvideAnalysisService creates the analysis pipeline
func ProvideAnalysisService(
	store ports.RecordStore,
	builder *domainservices.GraphBuilder,
	analyzer *domainservices.DegreeAnalyzer,
	metrics *observability.Collector,
	tracer *observability.Tracer,
	publisher services.RunPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) *services.AnalysisService {
	service := services.NewAnalysisService(store, builder, analyzer, metrics, tracer, logger).
		WithMaxRecords(cfg.Analysis.MaxRecords)
	if publisher != nil {
		service.WithPublisher(publisher)
	}
	return service
}

// ProvideRenderOptions derives the default plot options
func ProvideRenderOptions(cfg *config.Config) ports.RenderOptions {
	return ports.RenderOptions{
		Format: cfg.Render.Format,
		Width:  cfg.Render.Width,
		Height: cfg.Render.Height,
		Title:  cfg.Render.Title,
	}
}

// ProvideRenderer creates the scatter plot renderer
func ProvideRenderer(defaults ports.RenderOptions) ports.DistributionRenderer {
	return render.NewScatterRenderer(defaults)
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	analysis *services.AnalysisService,
	renderer ports.DistributionRenderer,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(
		querybus.NewLoggingMiddleware(logger),
		querybus.NewMetricsMiddleware(querybus.NewCollectorMetrics(metrics)),
	)

	err := queryhandlers.Register(queryBus,
		queryhandlers.NewAnalyzeDistributionHandler(analysis, logger),
		queryhandlers.NewRenderDistributionHandler(analysis, renderer, metrics, logger),
	)
	if err != nil {
		return nil, err
	}

	return queryBus, nil
}

// ProvideDistributionHandler creates the REST handler for distributions
func ProvideDistributionHandler(
	queryBus *querybus.QueryBus,
	defaults ports.RenderOptions,
	cfg *config.Config,
	logger *zap.Logger,
) *handlers.DistributionHandler {
	return handlers.NewDistributionHandler(
		queryBus,
		defaults,
		cfg.Server.MaxRequestSize,
		cfg.Server.RequestTimeout,
		logger,
	)
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	distributions *handlers.DistributionHandler,
	metrics *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(distributions, metrics, cfg, logger)
}
