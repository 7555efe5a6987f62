package di

import (
	"context"

	querybus "loangraph/application/queries/bus"
	"loangraph/application/services"
	"loangraph/infrastructure/config"
	"loangraph/interfaces/http/rest"
	"loangraph/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *observability.Collector
	Tracer   *observability.Tracer
	Analysis *services.AnalysisService
	QueryBus *querybus.QueryBus
	Router   *rest.Router
}

// Shutdown flushes pending spans and log entries
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error
	if c.Tracer != nil {
		if err := c.Tracer.Shutdown(ctx); err != nil {
			c.Logger.Error("Failed to shutdown tracer", zap.Error(err))
			firstErr = err
		}
	}
	// Sync fails on stdout/stderr for some platforms; it is not worth reporting.
	_ = c.Logger.Sync()
	return firstErr
}
