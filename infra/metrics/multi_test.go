package metrics

import (
	"fmt"
	"testing"

	"github.com/mobilitylabs/evsim/core/sim"
)

type recordingSink struct {
	calls  int
	closed bool
	err    error
}

func (r *recordingSink) RecordStep(sim.Stats) error {
	r.calls++
	return r.err
}

func (r *recordingSink) Close() { r.closed = true }

func TestMultiSinkFansOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := NewMultiSink(a, b)
	if err := m.RecordStep(sim.Stats{}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Fatalf("expected both sinks called once, got %d and %d", a.calls, b.calls)
	}
	m.Close()
	if !a.closed || !b.closed {
		t.Fatal("expected both sinks closed")
	}
}

func TestMultiSinkReturnsFirstError(t *testing.T) {
	a := &recordingSink{err: fmt.Errorf("boom")}
	b := &recordingSink{}
	m := NewMultiSink(a, b)
	if err := m.RecordStep(sim.Stats{}); err == nil {
		t.Fatal("expected error from first sink")
	}
}
