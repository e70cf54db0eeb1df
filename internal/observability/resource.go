package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"

	"github.com/glowbook/salon-backend/internal/config"
)

// newResource describes this salon-backend instance to every OTLP
// signal the same way, so logs, metrics and traces line up in the
// telemetry backend.
func newResource(ctx context.Context, cfg *config.Config) (*sdkresource.Resource, error) {
	res, err := sdkresource.New(ctx,
		sdkresource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("service.namespace", "glowbook"),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("describe telemetry resource: %w", err)
	}
	return res, nil
}
