// Package tracemetrics counts errtrace interceptions with Prometheus.
//
// A Collector decorates an errtrace.Annotator:
//
//	c, err := tracemetrics.NewCollector(prometheus.DefaultRegisterer)
//	if err != nil {
//	    return err
//	}
//	errtrace.Configure(errtrace.Config{
//	    Annotator: c.Wrap(errtrace.ModifyStack),
//	})
package tracemetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/utkarsh5026/errtrace/pkg/errtrace"
)

const namespace = "errtrace"

// Collector holds the interception metrics.
type Collector struct {
	interceptions *prometheus.CounterVec
	failures      prometheus.Counter
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		interceptions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interceptions_total",
				Help:      "Errors seen leaving an instrumented call, by trace name.",
			},
			[]string{
				"name",
			},
		),
		failures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failures_total",
				Help:      "Distinct errors intercepted for the first time.",
			},
		),
	}

	for _, collector := range []prometheus.Collector{c.interceptions, c.failures} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Wrap returns an annotator that records the interception and then calls next.
func (c *Collector) Wrap(next errtrace.Annotator) errtrace.Annotator {
	return func(name string, err error) error {
		if err == nil {
			return next(name, err)
		}
		if _, seen := errtrace.OriginalStackOf(err); !seen {
			c.failures.Inc()
		}
		c.interceptions.WithLabelValues(name).Inc()
		return next(name, err)
	}
}

// Interceptions returns the counter for one trace name.
func (c *Collector) Interceptions(name string) prometheus.Counter {
	return c.interceptions.WithLabelValues(name)
}

// Failures returns the counter of distinct intercepted errors.
func (c *Collector) Failures() prometheus.Counter {
	return c.failures
}
