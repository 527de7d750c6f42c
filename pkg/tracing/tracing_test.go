package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracerRequiresServiceName(t *testing.T) {
	_, err := InitTracer(context.Background(), "", "localhost:4318")
	require.Error(t, err)
}

func TestInitTracerInstallsGlobalProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	tp, err := InitTracer(context.Background(), "gift-gateway-test", "127.0.0.1:1")
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "probe")
	assert.True(t, span.IsRecording())
	span.End()

	// The exporter target does not exist; shutdown may report the failed
	// flush but must return.
	_ = Shutdown(context.Background(), tp)
}

func TestShutdownNilProvider(t *testing.T) {
	assert.NoError(t, Shutdown(context.Background(), nil))
}
