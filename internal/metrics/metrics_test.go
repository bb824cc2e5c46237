package metrics

import (
	"testing"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("expected non-nil registry")
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(mfs) == 0 {
		t.Error("expected some metrics to be registered")
	}
}

func gatherNames(t *testing.T, reg *Registry) map[string]bool {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	names := make(map[string]bool, len(mfs))
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	return names
}

func TestRegistry_RecordRequest(t *testing.T) {
	reg := NewRegistry()
	reg.RecordRequest("GET", "/fund/VTSAX", 200, 0.05)

	names := gatherNames(t, reg)
	if !names["http_requests_total"] {
		t.Error("expected http_requests_total metric")
	}
	if !names["http_request_duration_seconds"] {
		t.Error("expected http_request_duration_seconds metric")
	}
}

func TestRegistry_PipelineMetrics(t *testing.T) {
	reg := NewRegistry()

	reg.RecordProviderFetch("VTSAX", "ok")
	reg.RecordCacheLookup("miss")
	reg.RecordSnapshotReuse()
	reg.RecordSnapshotPersist("ok")
	reg.RecordAuthzDecision("grant")
	reg.RecordBacktest("ok")
	reg.RecordPipeline(0.2)

	names := gatherNames(t, reg)
	for _, want := range []string{
		"fundpipe_provider_fetches_total",
		"fundpipe_cache_lookups_total",
		"fundpipe_snapshot_reuses_total",
		"fundpipe_snapshot_persists_total",
		"fundpipe_authz_decisions_total",
		"fundpipe_backtests_total",
		"fundpipe_pipeline_duration_seconds",
	} {
		if !names[want] {
			t.Errorf("expected %s metric", want)
		}
	}
}

func TestStatusToString(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}

	for _, tc := range tests {
		if got := statusToString(tc.status); got != tc.expected {
			t.Errorf("statusToString(%d) = %s, want %s", tc.status, got, tc.expected)
		}
	}
}
