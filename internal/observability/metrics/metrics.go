package metrics

import (
	"context"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal       metric.Int64Counter
	HTTPRequestDuration     metric.Float64Histogram
	AuthRequestsTotal       metric.Int64Counter
	AssistantMessagesTotal  metric.Int64Counter
	AssistantRoutesTotal    metric.Int64Counter
	PlaceSearchesTotal      metric.Int64Counter
	ProviderRequestDuration metric.Float64Histogram
	DBQueryErrorsTotal      metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("city-explorer")
		var err error
		m := &AppMetrics{}

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_requests_total: %v", err)
		}

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_request_duration_seconds: %v", err)
		}

		m.AuthRequestsTotal, err = meter.Int64Counter(
			"auth_requests_total",
			metric.WithDescription("Total number of authentication requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create auth_requests_total: %v", err)
		}

		m.AssistantMessagesTotal, err = meter.Int64Counter(
			"assistant_messages_total",
			metric.WithDescription("Total number of assistant messages processed"),
			metric.WithUnit("{message}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create assistant_messages_total: %v", err)
		}

		m.AssistantRoutesTotal, err = meter.Int64Counter(
			"assistant_routes_total",
			metric.WithDescription("Total number of routes created from chat messages"),
			metric.WithUnit("{route}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create assistant_routes_total: %v", err)
		}

		m.PlaceSearchesTotal, err = meter.Int64Counter(
			"place_searches_total",
			metric.WithDescription("Total number of place searches"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create place_searches_total: %v", err)
		}

		m.ProviderRequestDuration, err = meter.Float64Histogram(
			"provider_request_duration_seconds",
			metric.WithDescription("Duration of upstream provider calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create provider_request_duration_seconds: %v", err)
		}

		m.DBQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// RecordDBError counts one failed query against the given table.
func RecordDBError(ctx context.Context, table string) {
	Get().DBQueryErrorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("table", table)))
}

// Get returns the globally initialized AppMetrics instance, initializing
// it against the current global MeterProvider on first use. Outside the
// server process that provider is the otel no-op, so recording is safe.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
