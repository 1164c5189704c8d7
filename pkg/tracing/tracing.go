package tracing

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"contrib.go.opencensus.io/exporter/jaeger"
	"contrib.go.opencensus.io/exporter/prometheus"
	"contrib.go.opencensus.io/exporter/zipkin"
	"contrib.go.opencensus.io/integrations/ocsql"
	zipkinhttp "github.com/openzipkin/zipkin-go/reporter/http"
	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/trace"

	"github.com/Notifuse/visualeditor/config"
)

// InitTracing configures sampling, the trace exporter and the metrics
// exporter. It is a no-op when tracing is disabled.
func InitTracing(cfg *config.TracingConfig) error {
	if !cfg.Enabled {
		return nil
	}

	trace.ApplyConfig(trace.Config{
		DefaultSampler: trace.ProbabilitySampler(cfg.SamplingProbability),
	})

	if err := initTraceExporter(cfg); err != nil {
		return err
	}
	if err := initMetricsExporter(cfg); err != nil {
		return err
	}

	if err := RegisterViews(); err != nil {
		return err
	}

	log.Printf("OpenCensus initialized with trace exporter: %s, metrics exporter: %s",
		cfg.TraceExporter, cfg.MetricsExporter)
	return nil
}

// RegisterViews registers the HTTP server, database and editor views
func RegisterViews() error {
	if err := view.Register(ochttp.DefaultServerViews...); err != nil {
		return fmt.Errorf("failed to register HTTP server views: %w", err)
	}
	if err := view.Register(ochttp.DefaultClientViews...); err != nil {
		return fmt.Errorf("failed to register HTTP client views: %w", err)
	}
	if err := view.Register(ocsql.DefaultViews...); err != nil {
		return fmt.Errorf("failed to register database views: %w", err)
	}
	if err := view.Register(EditorViews...); err != nil {
		return fmt.Errorf("failed to register editor views: %w", err)
	}
	return nil
}

func initTraceExporter(cfg *config.TracingConfig) error {
	switch strings.ToLower(strings.TrimSpace(cfg.TraceExporter)) {
	case "jaeger":
		if cfg.JaegerEndpoint == "" {
			return fmt.Errorf("Jaeger endpoint is required for Jaeger exporter")
		}
		je, err := jaeger.NewExporter(jaeger.Options{
			CollectorEndpoint: cfg.JaegerEndpoint,
			Process:           jaeger.Process{ServiceName: cfg.ServiceName},
		})
		if err != nil {
			return fmt.Errorf("failed to create Jaeger exporter: %w", err)
		}
		trace.RegisterExporter(je)

	case "zipkin":
		if cfg.ZipkinEndpoint == "" {
			return fmt.Errorf("Zipkin endpoint is required for Zipkin exporter")
		}
		reporter := zipkinhttp.NewReporter(cfg.ZipkinEndpoint)
		trace.RegisterExporter(zipkin.NewExporter(reporter, nil))

	case "none", "":

	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}
	return nil
}

func initMetricsExporter(cfg *config.TracingConfig) error {
	switch strings.ToLower(strings.TrimSpace(cfg.MetricsExporter)) {
	case "prometheus":
		pe, err := prometheus.NewExporter(prometheus.Options{
			Namespace: strings.ReplaceAll(cfg.ServiceName, "-", "_"),
			OnError: func(err error) {
				log.Printf("Prometheus exporter error: %v", err)
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		view.RegisterExporter(pe)

		if cfg.PrometheusPort > 0 {
			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", pe)
				addr := fmt.Sprintf(":%d", cfg.PrometheusPort)
				if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
					log.Printf("Prometheus metrics server stopped: %v", err)
				}
			}()
		}

	case "none", "":

	default:
		return fmt.Errorf("unsupported metrics exporter: %s", cfg.MetricsExporter)
	}
	return nil
}
