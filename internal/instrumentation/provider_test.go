package instrumentation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Enabled: false})
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Metrics())
	assert.Nil(t, p.PrometheusHandler())
	assert.NotNil(t, p.Tracer("test"))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true, MetricsExporter: "statsd"})
	assert.ErrorContains(t, err, "invalid metrics exporter")
}

func TestNewProvider_Prometheus(t *testing.T) {
	ctx := context.Background()
	p, err := NewProvider(ctx, Config{
		Enabled:         true,
		ServiceName:     "ga4mcp-test",
		ServiceVersion:  "test",
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	}, WithoutGlobals())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(ctx) })

	p.Metrics().RecordToolInvocation(ctx, "get_common_date_ranges", StatusSuccess, time.Millisecond)

	handler := p.PrometheusHandler()
	require.NotNil(t, handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "mcp_tool_invocations_total"), "missing tool counter in:\n%s", body)
	assert.Contains(t, body, `tool="get_common_date_ranges"`)
	assert.Contains(t, body, "go_goroutines")
}

func TestNewProvider_ManualReader(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	p, err := NewProvider(ctx, Config{Enabled: true, ServiceName: "ga4mcp-test"},
		WithMetricReader(reader), WithoutGlobals())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(ctx) })

	assert.True(t, p.Enabled())
	assert.Nil(t, p.PrometheusHandler())

	p.Metrics().RecordCredentialLookup(ctx, LookupResultFound)
	got := collect(t, reader)
	assert.Contains(t, got, "credential_lookups_total")
}
