package store

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors recorded by Instrumented.
type Metrics struct {
	latency *prometheus.HistogramVec
	errors  *prometheus.CounterVec
}

// NewMetrics creates the store collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "consultcms_store_operation_seconds",
			Help:    "Document store operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "collection"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consultcms_store_errors_total",
			Help: "Document store operations that failed with an unexpected error",
		}, []string{"operation", "collection"}),
	}
	if reg != nil {
		reg.MustRegister(m.latency, m.errors)
	}
	return m
}

// Instrumented decorates a Store with latency and error metrics.
type Instrumented struct {
	next    Store
	metrics *Metrics
}

// NewInstrumented wraps next.
func NewInstrumented(next Store, metrics *Metrics) *Instrumented {
	return &Instrumented{next: next, metrics: metrics}
}

func (s *Instrumented) track(operation, collection string) func(error) {
	start := time.Now()
	return func(err error) {
		s.metrics.latency.WithLabelValues(operation, collection).Observe(time.Since(start).Seconds())
		// a missing document or a unique violation is an outcome, not a fault
		if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrDuplicate) {
			s.metrics.errors.WithLabelValues(operation, collection).Inc()
		}
	}
}

func (s *Instrumented) FindByID(ctx context.Context, collection, id string) (doc Document, err error) {
	done := s.track("find_by_id", collection)
	defer func() { done(err) }()
	return s.next.FindByID(ctx, collection, id)
}

func (s *Instrumented) FindOne(ctx context.Context, collection string, filter map[string]any) (doc Document, err error) {
	done := s.track("find_one", collection)
	defer func() { done(err) }()
	return s.next.FindOne(ctx, collection, filter)
}

func (s *Instrumented) Find(ctx context.Context, collection string, q Query) (docs []Document, total int64, err error) {
	done := s.track("find", collection)
	defer func() { done(err) }()
	return s.next.Find(ctx, collection, q)
}

func (s *Instrumented) Insert(ctx context.Context, collection string, doc Document) (out Document, err error) {
	done := s.track("insert", collection)
	defer func() { done(err) }()
	return s.next.Insert(ctx, collection, doc)
}

func (s *Instrumented) Update(ctx context.Context, collection, id string, set Document, unset []string) (out Document, err error) {
	done := s.track("update", collection)
	defer func() { done(err) }()
	return s.next.Update(ctx, collection, id, set, unset)
}

func (s *Instrumented) Delete(ctx context.Context, collection, id string) (err error) {
	done := s.track("delete", collection)
	defer func() { done(err) }()
	return s.next.Delete(ctx, collection, id)
}
