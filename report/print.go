package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/sur5r/cc65/scan"
)

const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[1;31m"
	colorPurple = "\x1b[1;35m"
	colorGreen  = "\x1b[1;32m"
)

// ColorEnabled reports whether f is a terminal that understands escape
// codes.
func ColorEnabled(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer writes diagnostics with the offending source line and a caret
// under the reported column.
type Printer struct {
	W     io.Writer
	Color bool
	// Source returns the text of a file, nil means read it from disk.
	Source func(file string) (io.ReadCloser, error)
}

func (p *Printer) open(file string) (io.ReadCloser, error) {
	if p.Source != nil {
		return p.Source(file)
	}
	return os.Open(file)
}

func (p *Printer) Report(d Diagnostic) {
	p.Print(d)
}

func (p *Printer) Print(d Diagnostic) {
	sev := d.Severity.String()
	if p.Color {
		c := colorPurple
		if d.Severity == Error {
			c = colorRed
		}
		sev = c + sev + colorReset
	}
	fmt.Fprintf(p.W, "%s: %s: %s\n", d.Pos, sev, d.Msg)
	p.printCaret(d.Pos)
}

// PrintError prints a fatal error, with a caret when it carries a position.
func (p *Printer) PrintError(err error) {
	fmt.Fprintln(p.W, err)
	var errLoc scan.ErrorLoc
	if errors.As(err, &errLoc) {
		p.printCaret(errLoc.Pos)
	}
}

func (p *Printer) printCaret(pos scan.FilePos) {
	if pos.File == "" || pos.Line < 1 {
		return
	}
	f, err := p.open(pos.File)
	if err != nil {
		return
	}
	defer f.Close()
	b := bufio.NewReader(f)
	lineno := 1
	for {
		line, err := b.ReadString('\n')
		if lineno == pos.Line {
			line = strings.TrimRight(line, "\r\n")
			fmt.Fprintln(p.W, line)
			fmt.Fprintln(p.W, p.caretLine(line, pos.Col))
			return
		}
		if err != nil {
			return
		}
		lineno += 1
	}
}

func (p *Printer) caretLine(line string, col int) string {
	// Tabs are 4 columns wide, the lexer counts them the same way.
	var sb strings.Builder
	width := 0
	for _, v := range line {
		if v == '\t' {
			width += 4
		} else {
			width += 1
		}
	}
	if col > width+1 {
		col = width + 1
	}
	for i := 1; i < col; i++ {
		sb.WriteByte(' ')
	}
	if p.Color {
		sb.WriteString(colorGreen + "^" + colorReset)
	} else {
		sb.WriteByte('^')
	}
	return sb.String()
}
