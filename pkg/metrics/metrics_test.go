package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.DocsIndexedTotal.Add(3)
	m.SearchQueriesTotal.WithLabelValues("memory", "hit").Inc()

	if got := testutil.ToFloat64(m.DocsIndexedTotal); got != 3 {
		t.Errorf("docs_indexed_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("memory", "hit")); got != 1 {
		t.Errorf("search_queries_total = %v, want 1", got)
	}

	// a second registry must accept a second set of collectors
	New(prometheus.NewRegistry())
}
