// Package metrics exports delivery telemetry to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"

	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

const DefaultNamespace = "music_delivery"

// PrometheusObserver exports object store and CDN metrics.
type PrometheusObserver struct {
	duration    *promclient.HistogramVec
	errors      *promclient.CounterVec
	uploadBytes *promclient.CounterVec
}

var _ port.DeliveryObserver = (*PrometheusObserver)(nil)

// NewPrometheusObserver registers the collectors, reusing ones already registered under the same name.
func NewPrometheusObserver(namespace string, reg promclient.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = promclient.DefaultRegisterer
	}

	duration, err := register(reg, promclient.NewHistogramVec(promclient.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Latency of object store and CDN operations.",
		Buckets:   promclient.DefBuckets,
	}, []string{"operation", "bitrate"}))
	if err != nil {
		return nil, fmt.Errorf("register duration histogram: %w", err)
	}
	opErrors, err := register(reg, promclient.NewCounterVec(promclient.CounterOpts{
		Namespace: namespace,
		Name:      "operation_errors_total",
		Help:      "Count of failed object store and CDN operations.",
	}, []string{"operation", "bitrate"}))
	if err != nil {
		return nil, fmt.Errorf("register error counter: %w", err)
	}
	uploadBytes, err := register(reg, promclient.NewCounterVec(promclient.CounterOpts{
		Namespace: namespace,
		Name:      "uploaded_bytes_total",
		Help:      "Cumulative size of variants written to object storage.",
	}, []string{"bitrate"}))
	if err != nil {
		return nil, fmt.Errorf("register uploaded bytes counter: %w", err)
	}

	return &PrometheusObserver{duration: duration, errors: opErrors, uploadBytes: uploadBytes}, nil
}

func register[C promclient.Collector](reg promclient.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are promclient.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (o *PrometheusObserver) RecordUpload(bitrate int, duration time.Duration, sizeBytes int, err error) {
	if o == nil {
		return
	}
	b := strconv.Itoa(bitrate)
	o.record("upload", b, duration, err)
	if err == nil {
		o.uploadBytes.WithLabelValues(b).Add(float64(sizeBytes))
	}
}

func (o *PrometheusObserver) RecordDelete(bitrate int, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.record("delete", strconv.Itoa(bitrate), duration, err)
}

func (o *PrometheusObserver) RecordInvalidation(duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.record("invalidate", "", duration, err)
}

func (o *PrometheusObserver) record(op, bitrate string, duration time.Duration, err error) {
	o.duration.WithLabelValues(op, bitrate).Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues(op, bitrate).Inc()
	}
}
