// Package metrics records engine activity as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	prerrors "github.com/conneroisu/prerender/internal/errors"
)

const namespace = "prerender"

// Collector implements expand.Observer on a private registry.
type Collector struct {
	registry   *prometheus.Registry
	expansions *prometheus.CounterVec
	depth      prometheus.Histogram
	typeSheets *prometheus.CounterVec
	renders    *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// New creates a collector with its metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		expansions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "element_expansions_total",
				Help:      "Custom elements expanded, by tag.",
			},
			[]string{"tag"},
		),
		depth: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "expansion_depth",
				Help:      "Nesting depth at which elements were expanded.",
				Buckets:   prometheus.LinearBuckets(0, 2, 8),
			},
		),
		typeSheets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "type_stylesheets_total",
				Help:      "Type-scoped stylesheets emitted, by tag.",
			},
			[]string{"tag"},
		),
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "renders_total",
				Help:      "Top-level renders, by root tag and outcome.",
			},
			[]string{"root", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Duration of top-level renders.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"root"},
		),
	}
	c.registry.MustRegister(c.expansions, c.depth, c.typeSheets, c.renders, c.duration)
	return c
}

// Registry exposes the collector's registry, for serving or gathering.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// ElementExpanded counts one expansion.
func (c *Collector) ElementExpanded(tag string, depth int) {
	c.expansions.WithLabelValues(tag).Inc()
	c.depth.Observe(float64(depth))
}

// TypeSheetsEmitted counts type-scoped sheets written for tag.
func (c *Collector) TypeSheetsEmitted(tag string, count int) {
	c.typeSheets.WithLabelValues(tag).Add(float64(count))
}

// RenderCompleted records a finished render. Failures are labelled with
// their error type.
func (c *Collector) RenderCompleted(root string, elapsed time.Duration, err error) {
	c.renders.WithLabelValues(root, outcome(err)).Inc()
	c.duration.WithLabelValues(root).Observe(elapsed.Seconds())
}

// WriteTextfile writes every metric in the text exposition format, for
// node_exporter's textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if pe, ok := prerrors.AsPrerenderError(err); ok {
		return string(pe.Type)
	}
	return "error"
}
