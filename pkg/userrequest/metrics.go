package userrequest

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts decode outcomes.
type Metrics struct {
	decoded  *prometheus.CounterVec   // outcome: dispatch, plain, rejected
	rejected *prometheus.CounterVec   // reason: path_traversal, odd_params, ...
	duration prometheus.Histogram
}

// NewMetrics creates decode metrics and registers them with reg. A nil reg disables metrics.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		decoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "olat",
			Subsystem: "userrequest",
			Name:      "decoded_total",
			Help:      "Total number of decoded requests by outcome",
		}, []string{"outcome"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "olat",
			Subsystem: "userrequest",
			Name:      "rejected_total",
			Help:      "Total number of rejected requests by reason",
		}, []string{"reason"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "olat",
			Subsystem: "userrequest",
			Name:      "decode_duration_seconds",
			Help:      "Request decoding duration in seconds",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
		}),
	}

	for _, c := range []prometheus.Collector{m.decoded, m.rejected, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(req *UserRequest, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(elapsed.Seconds())
	switch {
	case err != nil:
		m.decoded.WithLabelValues("rejected").Inc()
		m.rejected.WithLabelValues(ReasonCode(err)).Inc()
	case req.IsValidDispatchURI():
		m.decoded.WithLabelValues("dispatch").Inc()
	default:
		m.decoded.WithLabelValues("plain").Inc()
	}
}

// Decoder decodes HTTP requests for one mount point and records metrics.
type Decoder struct {
	uriPrefix string
	metrics   *Metrics
}

// NewDecoder creates a Decoder. metrics may be nil.
func NewDecoder(uriPrefix string, metrics *Metrics) *Decoder {
	return &Decoder{uriPrefix: uriPrefix, metrics: metrics}
}

// URIPrefix returns the mount point.
func (d *Decoder) URIPrefix() string { return d.uriPrefix }

// Decode runs FromHTTP and records the outcome.
func (d *Decoder) Decode(r *http.Request) (*UserRequest, error) {
	start := time.Now()
	req, err := FromHTTP(d.uriPrefix, r)
	d.metrics.observe(req, err, time.Since(start))
	return req, err
}

// DecodePath runs Parse on an already decoded path without request parameters.
func (d *Decoder) DecodePath(path string, params map[string]string) (*UserRequest, error) {
	start := time.Now()
	req, err := Parse(d.uriPrefix, path, params)
	d.metrics.observe(req, err, time.Since(start))
	return req, err
}
