package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()

	p, err := Init(ctx, Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, p.Logger)

	assert.Same(t, p.Tracer, otel.GetTracerProvider())
	assert.Same(t, p.Meter, otel.GetMeterProvider())

	_, span := otel.Tracer("test").Start(ctx, "noop")
	span.End()

	require.NoError(t, p.Shutdown(ctx))
}

func TestServiceNameDefault(t *testing.T) {
	assert.Equal(t, "sales", Config{}.serviceName())
	assert.Equal(t, "sales-api", Config{ServiceName: "sales-api"}.serviceName())
}

func TestNewResource_CarriesServiceName(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment=test")

	res, err := newResource(context.Background(), Config{ServiceName: "sales-test"})
	require.NoError(t, err)

	attrs := res.Set()
	name, ok := attrs.Value(attribute.Key("service.name"))
	require.True(t, ok)
	assert.Equal(t, "sales-test", name.AsString())

	env, ok := attrs.Value(attribute.Key("deployment.environment"))
	require.True(t, ok)
	assert.Equal(t, "test", env.AsString())
}
