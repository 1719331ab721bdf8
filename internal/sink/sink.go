// Package sink persists the flattened variant rows. The CSV sink is the
// primary output; a Postgres sink can run alongside it. Sink failures are the
// only fatal errors in the pipeline.
package sink

import (
	"context"

	"github.com/shopcrawl/shopcrawl/internal/catalog"
)

// RowSink receives output rows in emission order.
type RowSink interface {
	// WriteHeader is called once before the first row.
	WriteHeader() error

	// WriteRow persists one row durably before returning.
	WriteRow(ctx context.Context, row catalog.Row) error

	// Close releases the sink's resources.
	Close() error
}

// Multi fans every call out to each sink in order and stops on the first
// error.
type Multi struct {
	sinks []RowSink
}

// NewMulti combines sinks into one RowSink.
func NewMulti(sinks ...RowSink) *Multi {
	return &Multi{sinks: sinks}
}

// WriteHeader writes the header on every sink.
func (m *Multi) WriteHeader() error {
	for _, s := range m.sinks {
		if err := s.WriteHeader(); err != nil {
			return err
		}
	}
	return nil
}

// WriteRow writes the row to every sink.
func (m *Multi) WriteRow(ctx context.Context, row catalog.Row) error {
	for _, s := range m.sinks {
		if err := s.WriteRow(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink, returning the first error encountered.
func (m *Multi) Close() error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
