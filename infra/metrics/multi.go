package metrics

import (
	coremetrics "github.com/mobilitylabs/evsim/core/metrics"
	"github.com/mobilitylabs/evsim/core/sim"
)

// MultiSink fans one step record out to several sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordStep forwards to every sink, returning the first error encountered.
func (m *MultiSink) RecordStep(st sim.Stats) error {
	for _, s := range m.Sinks {
		if err := s.RecordStep(st); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink that holds external connections.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		if c, ok := s.(coremetrics.Closer); ok {
			c.Close()
		}
	}
}
