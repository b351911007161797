package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	callsCounters   []counterCall
	callsHistograms []histCall
	flushCount      int
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsCounters = append(f.callsCounters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsHistograms = append(f.callsHistograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

// install swaps in fb for the duration of the test.
func install(t *testing.T, fb *fakeBackend) {
	t.Helper()
	orig := current()
	backend = fb
	t.Cleanup(func() { backend = orig })
}

func TestRecordStep_SuccessAndFailure(t *testing.T) {
	fb := &fakeBackend{}
	install(t, fb)

	RecordStep("jobA", "parse", nil, 2*time.Second)
	RecordStep("jobB", "insert", errors.New("boom"), 1500*time.Millisecond)

	if len(fb.callsCounters) != 2 {
		t.Fatalf("expected 2 counter calls, got %d", len(fb.callsCounters))
	}
	if len(fb.callsHistograms) != 2 {
		t.Fatalf("expected 2 histogram calls, got %d", len(fb.callsHistograms))
	}

	cc0 := fb.callsCounters[0]
	if cc0.name != StepTotal || cc0.delta != 1 {
		t.Fatalf("counter[0] = %#v; want name=%s, delta=1", cc0, StepTotal)
	}
	if cc0.labels["job"] != "jobA" || cc0.labels["step"] != "parse" || cc0.labels["status"] != "success" {
		t.Fatalf("counter[0].labels = %v; want jobA/parse/success", cc0.labels)
	}

	h0 := fb.callsHistograms[0]
	if h0.name != StepDurationSeconds {
		t.Fatalf("hist[0].name=%q; want %s", h0.name, StepDurationSeconds)
	}
	if h0.value < 2.0-0.001 || h0.value > 2.0+0.001 {
		t.Fatalf("hist[0].value=%v; want ~2.0", h0.value)
	}

	cc1 := fb.callsCounters[1]
	if cc1.labels["status"] != "failure" {
		t.Fatalf("counter[1].labels[status]=%q; want %q", cc1.labels["status"], "failure")
	}
	if h1 := fb.callsHistograms[1]; h1.value < 1.5-0.001 || h1.value > 1.5+0.001 {
		t.Fatalf("hist[1].value=%v; want ~1.5", h1.value)
	}
}

func TestRecordRowAndRun(t *testing.T) {
	fb := &fakeBackend{}
	install(t, fb)

	RecordRow("jobX", "parsed", 3)
	RecordRow("jobX", "null_dropped", 0) // ignored
	RecordRow("jobY", "inserted", 5)
	RecordRun("jobZ", nil)

	if len(fb.callsCounters) != 3 {
		t.Fatalf("expected 3 counter calls, got %d", len(fb.callsCounters))
	}

	c0 := fb.callsCounters[0]
	if c0.name != RowsTotal || c0.delta != 3 || c0.labels["kind"] != "parsed" {
		t.Fatalf("counter[0] = %#v; want %s parsed delta=3", c0, RowsTotal)
	}
	c1 := fb.callsCounters[1]
	if c1.labels["job"] != "jobY" || c1.labels["kind"] != "inserted" || c1.delta != 5 {
		t.Fatalf("counter[1] = %#v; want jobY inserted delta=5", c1)
	}
	c2 := fb.callsCounters[2]
	if c2.name != RunsTotal || c2.labels["status"] != "success" {
		t.Fatalf("counter[2] = %#v; want %s success", c2, RunsTotal)
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	orig := current()
	defer func() { backend = orig }()

	fb := &fakeBackend{}
	SetBackend(fb)
	if current() != fb {
		t.Fatal("SetBackend did not replace global backend")
	}

	if err := Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("expected flushCount=1, got %d", fb.flushCount)
	}

	SetBackend(nil)
	if current() != fb {
		t.Fatal("SetBackend(nil) should not change backend")
	}
}

func TestNopBackendIsSafe(t *testing.T) {
	var b Backend = nopBackend{}
	b.IncCounter("x", 1, nil)
	b.ObserveHistogram("x", 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("nop Flush() error = %v", err)
	}
}
