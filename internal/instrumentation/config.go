package instrumentation

import (
	"errors"
	"fmt"
	"slices"

	env "github.com/teemow/ga4mcp/internal/config"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	ServiceName    string
	ServiceVersion string

	// ServiceInstanceID defaults to the pod name when running in Kubernetes.
	ServiceInstanceID string
	K8sNamespace      string
	K8sPodName        string

	// Enabled turns metrics and tracing on (INSTRUMENTATION_ENABLED).
	Enabled bool

	// MetricsExporter is one of ExporterPrometheus, ExporterOTLP or ExporterStdout.
	MetricsExporter string

	// TracingExporter is one of ExporterOTLP, ExporterStdout or ExporterNone.
	TracingExporter string

	// OTLPEndpoint is host:port without a scheme, e.g. "localhost:4318".
	OTLPEndpoint string

	// OTLPInsecure sends OTLP over plain HTTP. Local development only.
	OTLPInsecure bool

	// TraceSamplingRate is a ratio in [0, 1].
	TraceSamplingRate float64

	// DetailedLabels adds the GA4 property id to report metrics. Leave it off
	// on servers that query many properties.
	DetailedLabels bool

	AuditLogging AuditLoggingConfig
}

// AuditLoggingConfig holds configuration for audit logging.
type AuditLoggingConfig struct {
	Enabled bool

	// IncludePII writes raw user ids next to their hashes.
	IncludePII bool
}

// DefaultConfig reads the instrumentation settings from the environment.
func DefaultConfig() Config {
	return Config{
		ServiceName:       env.String("OTEL_SERVICE_NAME", DefaultServiceName),
		ServiceVersion:    "unknown",
		ServiceInstanceID: env.String("OTEL_SERVICE_INSTANCE_ID", ""),
		K8sNamespace:      env.String("K8S_NAMESPACE", env.String("POD_NAMESPACE", "")),
		K8sPodName:        env.String("K8S_POD_NAME", env.String("HOSTNAME", "")),
		Enabled:           env.Bool("INSTRUMENTATION_ENABLED", true),
		MetricsExporter:   env.String("METRICS_EXPORTER", ExporterPrometheus),
		TracingExporter:   env.String("TRACING_EXPORTER", ExporterNone),
		OTLPEndpoint:      env.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:      env.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate: env.Float("OTEL_TRACES_SAMPLER_ARG", 0.1),
		DetailedLabels:    env.Bool("METRICS_DETAILED_LABELS", false),
		AuditLogging: AuditLoggingConfig{
			Enabled:    env.Bool("AUDIT_LOGGING_ENABLED", true),
			IncludePII: env.Bool("AUDIT_LOGGING_INCLUDE_PII", false),
		},
	}
}

var (
	metricsExporters = []string{ExporterPrometheus, ExporterOTLP, ExporterStdout}
	tracingExporters = []string{ExporterOTLP, ExporterStdout, ExporterNone}
)

// Validate reports every invalid setting. Empty exporters fall back to the
// defaults in NewProvider.
func (c *Config) Validate() error {
	var errs []error

	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		errs = append(errs, fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate))
	}
	if c.MetricsExporter != "" && !slices.Contains(metricsExporters, c.MetricsExporter) {
		errs = append(errs, fmt.Errorf("invalid metrics exporter %q, must be one of: %v", c.MetricsExporter, metricsExporters))
	}
	if c.TracingExporter != "" && !slices.Contains(tracingExporters, c.TracingExporter) {
		errs = append(errs, fmt.Errorf("invalid tracing exporter %q, must be one of: %v", c.TracingExporter, tracingExporters))
	}
	if c.OTLPEndpoint == "" && (c.TracingExporter == ExporterOTLP || c.MetricsExporter == ExporterOTLP) {
		errs = append(errs, errors.New("OTLP endpoint is required when an OTLP exporter is selected"))
	}

	return errors.Join(errs...)
}

// Label values and exporter names.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	// DefaultServiceName is reported when OTEL_SERVICE_NAME is unset.
	DefaultServiceName = "ga4mcp"

	RefreshResultSuccess = "success"
	RefreshResultFailure = "failure"

	LookupResultFound      = "found"
	LookupResultNotFound   = "not_found"
	LookupResultNoProperty = "no_property"
	LookupResultError      = "error"

	ServiceAnalyticsData = "analyticsdata"

	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)
