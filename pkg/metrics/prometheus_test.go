package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegisterer(reg)

	r.RecordFetch("ok")
	r.RecordFetch("ok")
	r.RecordFetch("no_data")
	r.RecordAlert("up")
	r.RecordCycle(2.5, 70)
	r.RecordState("fetching")

	if got := testutil.ToFloat64(r.fetches.WithLabelValues("ok")); got != 2 {
		t.Fatalf("ok fetches = %v", got)
	}
	if got := testutil.ToFloat64(r.universe); got != 70 {
		t.Fatalf("universe = %v", got)
	}
	if got := testutil.ToFloat64(r.state.WithLabelValues("fetching")); got != 1 {
		t.Fatalf("fetching state = %v", got)
	}
	if got := testutil.ToFloat64(r.state.WithLabelValues("sleeping")); got != 0 {
		t.Fatalf("sleeping state = %v", got)
	}
}
