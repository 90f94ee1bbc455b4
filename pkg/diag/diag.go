// Package diag provides the diagnostic sink used across the compiler
// pipeline. spec.md §6 calls for nothing more elaborate than "a simple
// write-line sink"; this package adds just enough structure (severity,
// position, a run id for traceability) to tell warnings from errors per
// spec.md §7's error taxonomy. The Driver itself reports its fatal
// conditions by returning an error.
package diag

import (
	"fmt"
	"io"

	"github.com/alecthomas/participle/v2/lexer"
)

// Severity distinguishes a fatal diagnostic from one the Driver can carry
// past and still emit output for (spec.md §7).
type Severity int

const (
	Warning Severity = iota
	Fatal
)

func (s Severity) String() string {
	if s == Fatal {
		return "error"
	}
	return "warning"
}

// Diagnostic is one reported condition, anchored to a position when the
// triggering node carries one.
type Diagnostic struct {
	Severity Severity
	Pos      lexer.Position
	Message  string
}

func (d Diagnostic) String() string {
	if d.Pos.Filename == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Sink receives diagnostics as they are produced. A *Diagnostics both
// satisfies Sink and keeps the full list for the Driver to inspect.
type Sink interface {
	Warnf(pos lexer.Position, format string, args ...any)
	Errorf(pos lexer.Position, format string, args ...any)
}

// Diagnostics accumulates every diagnostic raised during one compilation
// unit's translation, per spec.md §9's note that a unit's diagnostics are
// scoped to that single translation call.
type Diagnostics struct {
	RunID string
	items []Diagnostic
}

// New creates an empty accumulator tagged with runID for traceability (see
// internal/cache, which stamps the same id on the Type Mapper's memoized
// entries produced during the same run).
func New(runID string) *Diagnostics {
	return &Diagnostics{RunID: runID}
}

func (d *Diagnostics) Warnf(pos lexer.Position, format string, args ...any) {
	d.items = append(d.items, Diagnostic{Severity: Warning, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (d *Diagnostics) Errorf(pos lexer.Position, format string, args ...any) {
	d.items = append(d.items, Diagnostic{Severity: Fatal, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Items returns every diagnostic raised so far, in report order.
func (d *Diagnostics) Items() []Diagnostic { return d.items }

// HasFatal reports whether any Errorf-level diagnostic was raised.
func (d *Diagnostics) HasFatal() bool {
	for _, it := range d.items {
		if it.Severity == Fatal {
			return true
		}
	}
	return false
}

// WriteTo writes every accumulated diagnostic as one line each, the "simple
// write-line sink" spec.md §6 asks for.
func (d *Diagnostics) WriteTo(w io.Writer) error {
	for _, it := range d.items {
		if _, err := fmt.Fprintln(w, it.String()); err != nil {
			return err
		}
	}
	return nil
}
