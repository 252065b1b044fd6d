// Package diag carries non-fatal diagnostics out of the parsing pipeline.
//
// Sinks are fire-and-forget: nothing they do may block or fail the caller.
package diag

// Sink receives warnings and errors with optional key/value context.
type Sink interface {
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// Nop discards every diagnostic.
var Nop Sink = nopSink{}

type nopSink struct{}

func (nopSink) Warn(string, ...any)  {}
func (nopSink) Error(string, ...any) {}

// Multi fans each diagnostic out to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

type multi []Sink

func (m multi) Warn(msg string, keyvals ...any) {
	for _, s := range m {
		s.Warn(msg, keyvals...)
	}
}

func (m multi) Error(msg string, keyvals ...any) {
	for _, s := range m {
		s.Error(msg, keyvals...)
	}
}
