package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "maintenance-scheduler/core/metrics"
)

func TestInfluxSinkRecordSolve(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()
	start := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	rec := coremetrics.SolveRecord{
		RunID:       "run-1",
		StartDate:   start,
		Status:      "optimal",
		Objective:   53.4375,
		WorkOrders:  2,
		Crews:       1,
		Variables:   10,
		Nodes:       3,
		Assignments: 2,
		Duration:    250 * time.Millisecond,
		Time:        now,
	}
	if err := sink.RecordSolve(rec); err != nil {
		t.Fatalf("record error: %v", err)
	}

	p := write.NewPointWithMeasurement("solve_event").
		AddTag("run_id", "run-1").
		AddTag("status", "optimal").
		AddTag("component", "scheduler").
		AddField("objective", 53.438).
		AddField("work_orders", 2).
		AddField("crews", 1).
		AddField("variables", 10).
		AddField("nodes", 3).
		AddField("assignments", 2).
		AddField("duration_ms", 250.0).
		AddField("start_date", "2025-03-03").
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if strings.TrimSpace(body) != expected {
		t.Errorf("unexpected body:\n got %s\nwant %s", body, expected)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink on failing health check, got %T", sink)
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
