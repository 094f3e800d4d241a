// Package report carries compiler diagnostics from the parser to the user.
package report

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/sur5r/cc65/scan"
)

type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "Unknown"
}

// Diagnostic is a single message tied to a source position.
type Diagnostic struct {
	Severity Severity
	Pos      scan.FilePos
	Msg      string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Msg)
}

// Sink receives diagnostics. Reporting never stops the parse.
type Sink interface {
	Report(d Diagnostic)
}

// List collects diagnostics in order.
type List struct {
	Diags []Diagnostic
}

func (l *List) Report(d Diagnostic) {
	l.Diags = append(l.Diags, d)
}

func (l *List) count(s Severity) int {
	n := 0
	for _, d := range l.Diags {
		if d.Severity == s {
			n++
		}
	}
	return n
}

func (l *List) Errors() int {
	return l.count(Error)
}

func (l *List) Warnings() int {
	return l.count(Warning)
}

// Messages returns "severity: message" for every diagnostic, handy in tests.
func (l *List) Messages() []string {
	var ret []string
	for _, d := range l.Diags {
		ret = append(ret, d.Severity.String()+": "+d.Msg)
	}
	return ret
}

// LogSink forwards diagnostics to a logrus logger.
type LogSink struct {
	Log logrus.FieldLogger
}

func NewLogSink(log logrus.FieldLogger) *LogSink {
	return &LogSink{Log: log}
}

func (s *LogSink) Report(d Diagnostic) {
	entry := s.Log.WithFields(logrus.Fields{
		"pos":      d.Pos.String(),
		"severity": d.Severity.String(),
	})
	switch d.Severity {
	case Warning:
		entry.Warn(d.Msg)
	default:
		entry.Error(d.Msg)
	}
}

// Multi reports to every sink in turn.
type Multi []Sink

func (m Multi) Report(d Diagnostic) {
	for _, s := range m {
		s.Report(d)
	}
}

// Discard drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Report(Diagnostic) {}
