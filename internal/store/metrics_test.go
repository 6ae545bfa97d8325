package store

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	*MemoryStore
}

func (failingStore) Insert(context.Context, string, Document) (Document, error) {
	return nil, errors.New("server selection timeout")
}

func TestInstrumentedCountsOnlyUnexpectedErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	ctx := context.Background()

	s := NewInstrumented(failingStore{NewMemoryStore()}, metrics)

	_, err := s.FindByID(ctx, "blogs", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.errors.WithLabelValues("find_by_id", "blogs")))

	_, err = s.Insert(ctx, "blogs", Document{"title": "x"})
	require.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.errors.WithLabelValues("insert", "blogs")))

	count, err := testutil.GatherAndCount(reg, "consultcms_store_operation_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
