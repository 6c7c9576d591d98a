package metricsadapter

import (
	"net/http/httptest"
	"strings"
	"testing"

	"mdfh/feed"
	"mdfh/stats"
)

func TestWatchStatisticsExposesCounters(t *testing.T) {
	st := stats.New()
	st.RecordReceived()
	st.RecordReceived()
	st.RecordDropped()

	r := New()
	r.WatchStatistics("primary", st)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	r.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `mdfh_received_total{feed="primary"} 2`) {
		t.Fatalf("metrics output missing received counter:\n%s", body)
	}
	if !strings.Contains(body, `mdfh_dropped_total{feed="primary"} 1`) {
		t.Fatalf("metrics output missing dropped counter:\n%s", body)
	}
}

func TestWatchFeedExposesState(t *testing.T) {
	m := feed.NewMonitor(feed.Config{OriginID: 1, HeartbeatMs: 100, TimeoutMultiplier: 5})
	m.OnConnected()

	r := New()
	r.WatchFeed("primary", m)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	r.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `mdfh_feed_state{feed="primary"} 1`) {
		t.Fatalf("metrics output missing Healthy(1) feed state:\n%s", body)
	}
}
