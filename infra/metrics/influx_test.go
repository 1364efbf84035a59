package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/fuzzycharge/core/metrics"
)

type bodyRecorder struct {
	mu     sync.Mutex
	bodies []string
}

func (b *bodyRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.bodies = append(b.bodies, strings.TrimSpace(string(data)))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}
}

func (b *bodyRecorder) all() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.bodies...)
}

func TestInfluxSink_RecordRun(t *testing.T) {
	rec := &bodyRecorder{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()
	ev := coremetrics.RunEvent{
		RunID:       "run-1",
		Outcome:     coremetrics.OutcomeCompleted,
		Steps:       3212,
		SoCInit:     0,
		SoCTarget:   100,
		FinalSoC:    100.01,
		Temperature: 61,
		Utilization: 21,
		EnergyJ:     60985.12345,
		Duration:    1500 * time.Microsecond,
		Time:        now,
	}
	if err := sink.RecordRun(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("charging_run").
		AddTag("run_id", "run-1").
		AddTag("outcome", "completed").
		AddField("seconds", 3212).
		AddField("soc_init", 0.0).
		AddField("soc_target", 100.0).
		AddField("final_soc", 100.01).
		AddField("temperature", 61.0).
		AddField("utilization", 21.0).
		AddField("energy_j", 60985.123).
		AddField("duration_ms", 1.5).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	bodies := rec.all()
	if len(bodies) != 1 || bodies[0] != expected {
		t.Errorf("unexpected bodies: %#v", bodies)
	}
}

func TestInfluxSink_RecordRunWithError(t *testing.T) {
	rec := &bodyRecorder{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	ev := coremetrics.RunEvent{
		RunID:   "run-2",
		Outcome: coremetrics.OutcomeStalled,
		Error:   "stalled",
		Time:    time.Now(),
	}
	if err := sink.RecordRun(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	bodies := rec.all()
	if len(bodies) != 1 {
		t.Fatalf("expected one write, got %d", len(bodies))
	}
	if !strings.Contains(bodies[0], `outcome=stalled`) || !strings.Contains(bodies[0], `error="stalled"`) {
		t.Errorf("unexpected body: %s", bodies[0])
	}
}

func TestInfluxSink_RecordTrajectory(t *testing.T) {
	rec := &bodyRecorder{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	start := time.Unix(1_700_000_000, 0)
	samples := []coremetrics.StepSample{
		{Second: 0, SoC: 0, VoltageV: 10.96, CurrentA: 1.79},
		{Second: 1, SoC: 0.03, VoltageV: 10.96, CurrentA: 1.79},
	}
	if err := sink.RecordTrajectory("run-1", start, samples); err != nil {
		t.Fatalf("record error: %v", err)
	}
	bodies := rec.all()
	if len(bodies) != 1 {
		t.Fatalf("expected a single batched write, got %d", len(bodies))
	}
	lines := strings.Split(bodies[0], "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %#v", lines)
	}
	p := write.NewPointWithMeasurement("charging_step").
		AddTag("run_id", "run-1").
		AddField("second", 1).
		AddField("soc", 0.03).
		AddField("voltage_v", 10.96).
		AddField("current_a", 1.79).
		SetTime(start.Add(time.Second))
	if exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond)); lines[1] != exp {
		t.Errorf("unexpected line: %s", lines[1])
	}
}

func TestInfluxSink_RecordTrajectoryEmpty(t *testing.T) {
	rec := &bodyRecorder{}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	if err := sink.RecordTrajectory("run-1", time.Now(), nil); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if len(rec.all()) != 0 {
		t.Errorf("no write expected for an empty trajectory")
	}
}

func TestInfluxSink_WriteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	err := sink.RecordRun(coremetrics.RunEvent{RunID: "r", Outcome: coremetrics.OutcomeFailed, Time: time.Now()})
	if err == nil {
		t.Fatalf("expected write error")
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
