package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveQueryRecordsSample(t *testing.T) {
	before := testutil.CollectAndCount(DBQueryDuration)

	ObserveQuery("metrics_test_op")()

	if after := testutil.CollectAndCount(DBQueryDuration); after != before+1 {
		t.Errorf("expected one new series, got %d -> %d", before, after)
	}
}

func TestLikeTogglesCounter(t *testing.T) {
	c := LikeToggles.WithLabelValues("liked")
	before := testutil.ToFloat64(c)
	c.Inc()
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("expected %v, got %v", before+1, got)
	}
}
