// Package observability wires process-wide cross-cutting concerns (tracing,
// pprof) that sit outside the request/response path.
package observability

import (
	"context"
	"strings"

	"github.com/uptrace/uptrace-go/uptrace"

	"github.com/riskibarqy/football-brain/internal/config"
	"github.com/riskibarqy/football-brain/internal/platform/logging"
)

// InitUptrace configures the global OpenTelemetry tracer provider for
// Uptrace. It returns a shutdown func that is always safe to call; when
// tracing is disabled (or unconfigured) the func is a no-op.
func InitUptrace(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if !cfg.UptraceEnabled {
		logger.Info("uptrace disabled", "reason", "UPTRACE_ENABLED=false")
		return func(context.Context) error { return nil }, nil
	}

	if strings.TrimSpace(cfg.UptraceDSN) == "" {
		logger.Info("uptrace disabled", "reason", "UPTRACE_DSN empty")
		return func(context.Context) error { return nil }, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
	)

	logger.Info("uptrace enabled", "service", cfg.ServiceName, "env", cfg.AppEnv)

	return func(ctx context.Context) error {
		return uptrace.Shutdown(ctx)
	}, nil
}
