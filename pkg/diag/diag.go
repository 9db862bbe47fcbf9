// Package diag carries recoverable parse conditions from the parser to its caller.
package diag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shpitdev/deckschema/pkg/deck"
)

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic codes.
const (
	CodeMalformedRegex     = "malformed-regex"
	CodeExtraData          = "extra-data"
	CodeUnknownKeyword     = "unknown-keyword"
	CodeMissingTerminator  = "missing-terminator"
	CodeUnexpectedData     = "unexpected-data"
	CodeKeywordParseFailed = "keyword-parse-failed"
	CodeUnitConversion     = "unit-conversion"
	CodeWrongSection       = "wrong-section"
)

type Diagnostic struct {
	Severity Severity
	Code     string
	Keyword  string
	Location deck.Location
	Message  string
}

func (d Diagnostic) String() string {
	prefix := d.Location.String()
	if d.Keyword != "" {
		prefix += " " + d.Keyword
	}
	return fmt.Sprintf("%s: %s [%s] %s", prefix, d.Severity, d.Code, d.Message)
}

// Sink receives diagnostics. Implementations must be safe for concurrent use.
type Sink interface {
	Report(d Diagnostic)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(d Diagnostic)

func (f SinkFunc) Report(d Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Sink = SinkFunc(func(Diagnostic) {})

// OrDiscard returns s, or Discard when s is nil.
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}

// Collector keeps every reported diagnostic in report order.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()
}

// Diagnostics returns a copy of everything reported so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Count returns how many diagnostics of the given severity were reported.
func (c *Collector) Count(sev Severity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.items {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// Codes returns the code of each diagnostic in report order.
func (c *Collector) Codes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.items))
	for _, d := range c.items {
		out = append(out, d.Code)
	}
	return out
}

// SlogSink writes diagnostics to a structured logger.
type SlogSink struct {
	L *slog.Logger
}

func (s SlogSink) Report(d Diagnostic) {
	if s.L == nil {
		return
	}
	level := slog.LevelWarn
	if d.Severity == SeverityError {
		level = slog.LevelError
	}
	s.L.LogAttrs(context.Background(), level, d.Message,
		slog.String("code", d.Code),
		slog.String("keyword", d.Keyword),
		slog.String("file", d.Location.File),
		slog.Int("line", d.Location.Line),
	)
}

// Tee reports to every sink in order.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(d Diagnostic) {
		for _, s := range sinks {
			if s != nil {
				s.Report(d)
			}
		}
	})
}
