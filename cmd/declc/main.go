// Command declc parses the declarations of a C file and lists what they
// declare.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sur5r/cc65/config"
	"github.com/sur5r/cc65/ctype"
	"github.com/sur5r/cc65/emit"
	"github.com/sur5r/cc65/parse"
	"github.com/sur5r/cc65/report"
	"github.com/sur5r/cc65/scan"
	"github.com/urfave/cli/v2"
)

const version = "0.1"

// errDiagnostics is returned when the input had errors. They were already
// printed.
var errDiagnostics = errors.New("errors in input")

func newApp(stdout, stderr io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "declc"
	app.Usage = "Parse C declarations and list their types"
	app.Version = version
	app.ArgsUsage = "FILE.c"
	app.Writer = stdout
	app.ErrWriter = stderr
	app.HideHelpCommand = true
	app.Description = "Environment variables:\n   CCDEBUG=true enables extended error messages for debugging the parser."
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Read settings from YAML `FILE`",
		},
		&cli.StringFlag{
			Name:  "std",
			Usage: "Language standard: c89, c99, cc65 or c23",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Write the listing as JSON",
		},
		&cli.BoolFlag{
			Name:  "T",
			Usage: "Print tokens after lexing (For debugging).",
		},
		&cli.StringFlag{
			Name:  "o",
			Value: "-",
			Usage: "Write output to `FILE`, '-' for stdout.",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Usage:   "Log diagnostics and print errors with stack traces",
			EnvVars: []string{"CCDEBUG"},
		},
	}
	app.Action = runDeclc
	// Exit codes are chosen by run.
	app.ExitErrHandler = func(*cli.Context, error) {}
	return app
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes declc and returns the exit status.
func run(args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr)
	err := app.Run(args)
	if err == nil {
		return 0
	}
	if !errors.Is(err, errDiagnostics) {
		fmt.Fprintln(stderr, err)
	}
	return 1
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}
	if std := c.String("std"); std != "" {
		cfg.Standard = config.Standard(std)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func runDeclc(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("Bad number of args, please specify a single source file.")
	}
	input := c.Args().First()

	debug := c.Bool("debug")
	log := logrus.New()
	log.SetOutput(c.App.ErrWriter)
	log.SetLevel(logrus.WarnLevel)
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"std":   cfg.Standard,
		"model": cfg.MemoryModel,
	}).Debug("configured")

	out := c.App.Writer
	if path := c.String("o"); path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "Failed to open output file")
		}
		defer f.Close()
		out = f
	}

	if c.Bool("T") {
		return tokenizeFile(input, out)
	}

	printer := &report.Printer{W: c.App.ErrWriter, Color: colorEnabled(c.App.ErrWriter)}
	var sink report.Sink = printer
	if debug {
		sink = report.Multi{printer, report.NewLogSink(log)}
	}

	tu, err := parseFile(input, cfg, sink, log)
	if err != nil {
		if debug {
			fmt.Fprintf(c.App.ErrWriter, "%+v\n", err)
		} else {
			printer.PrintError(err)
		}
		return errDiagnostics
	}

	l := emit.Collect(tu, ctype.Target6502)
	if c.Bool("json") {
		err = emit.JSON(l, out)
	} else {
		err = emit.Text(l, out)
	}
	if err != nil {
		return err
	}
	if tu.Errors > 0 {
		return errDiagnostics
	}
	return nil
}

func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && report.ColorEnabled(f)
}

func parseFile(path string, cfg *config.Config, sink report.Sink, log logrus.FieldLogger) (*parse.TranslationUnit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open source file %s for parsing", path)
	}
	defer f.Close()
	lexer := scan.Lex(path, f)
	return parse.Parse(lexer,
		parse.WithConfig(cfg),
		parse.WithSink(sink),
		parse.WithLogger(log),
	)
}

func tokenizeFile(path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to open source file %s for lexing", path)
	}
	defer f.Close()
	lexer := scan.Lex(path, f)
	for {
		tok, err := lexer.Next()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s:%s:%d:%d\n", tok.Kind, tok.Val, tok.Pos.Line, tok.Pos.Col)
		if tok.Kind == scan.EOF {
			return nil
		}
	}
}
