package report

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sur5r/cc65/scan"
)

func pos(line, col int) scan.FilePos {
	return scan.FilePos{File: "t.c", Line: line, Col: col}
}

func TestList(t *testing.T) {
	l := &List{}
	l.Report(Diagnostic{Severity: Warning, Pos: pos(1, 1), Msg: "useless declaration"})
	l.Report(Diagnostic{Severity: Error, Pos: pos(2, 3), Msg: "bad"})
	l.Report(Diagnostic{Severity: Error, Pos: pos(3, 3), Msg: "worse"})
	assert.Equal(t, 2, l.Errors())
	assert.Equal(t, 1, l.Warnings())
	assert.Equal(t, []string{"warning: useless declaration", "error: bad", "error: worse"}, l.Messages())
	assert.Equal(t, "t.c:2:3: error: bad", l.Diags[1].String())
}

func TestLogSink(t *testing.T) {
	logger, hook := test.NewNullLogger()
	var l List
	sink := Multi{NewLogSink(logger), &l, Discard}
	sink.Report(Diagnostic{Severity: Warning, Pos: pos(4, 2), Msg: "w"})
	sink.Report(Diagnostic{Severity: Error, Pos: pos(5, 1), Msg: "e"})

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.WarnLevel, entries[0].Level)
	assert.Equal(t, "w", entries[0].Message)
	assert.Equal(t, "t.c:4:2", entries[0].Data["pos"])
	assert.Equal(t, logrus.ErrorLevel, entries[1].Level)
	assert.Equal(t, "error", entries[1].Data["severity"])
	assert.Len(t, l.Diags, 2)
}

func TestPrinter(t *testing.T) {
	src := "int x;\n\tint ;\n"
	var buf bytes.Buffer
	p := &Printer{
		W: &buf,
		Source: func(string) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(src)), nil
		},
	}
	p.Print(Diagnostic{Severity: Warning, Pos: pos(2, 5), Msg: "useless declaration"})
	assert.Equal(t, "t.c:2:5: warning: useless declaration\n\tint ;\n    ^\n", buf.String())

	buf.Reset()
	p.PrintError(scan.ErrWithLoc(errors.New("stray '#'"), pos(1, 5)))
	assert.Equal(t, "stray '#' at t.c:1:5\nint x;\n    ^\n", buf.String())

	buf.Reset()
	p.PrintError(errors.New("no position"))
	assert.Equal(t, "no position\n", buf.String())
}
