// Command runner checks the output of declc against the .expect files next
// to each test case.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/pkg/errors"
	"github.com/sergi/go-diff/diffmatchpatch"
)

var (
	filter = flag.String("filter", ".*", "A regex filtering which tests to run")
	declc  = flag.String("declc", "declc {{.In}}", "Command line running declc on {{.In}}")
	update = flag.Bool("update", false, "Rewrite the .expect files with the current output")
)

// RunWithInTemplate expands templ for the input file in and runs the result.
func RunWithInTemplate(in, templ string, timeout time.Duration) (string, error) {
	data := struct{ In string }{In: in}
	t, err := template.New("gencmdline").Parse(templ)
	if err != nil {
		return "", err
	}
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return RunWithTimeout(b.String(), timeout)
}

// RunWithTimeout runs command and returns what it wrote, stdout first. A
// non zero exit status is not an error, diagnostics are part of the output.
func RunWithTimeout(command string, timeout time.Duration) (string, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return "", errors.Errorf("malformed command %q", command)
	}
	bin := args[0]
	var stdout, stderr bytes.Buffer
	c := exec.Command(bin, args[1:]...)
	c.Stdout = &stdout
	c.Stderr = &stderr
	if err := c.Start(); err != nil {
		return "", errors.Wrapf(err, "starting %s", bin)
	}
	rc := make(chan error, 1)
	go func() {
		rc <- c.Wait()
	}()
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-t.C:
		_ = c.Process.Kill()
		return "", errors.Errorf("%s timed out", bin)
	case err := <-rc:
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			return "", err
		}
		return stdout.String() + stderr.String(), nil
	}
}

// Diff returns a readable difference between want and got.
func Diff(want, got string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(want, got)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lines)
	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix + line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}

// GoldenTests runs every .c file in tdir and compares the output with the
// matching .expect file.
func GoldenTests(tdir string) error {
	fmt.Println("golden tests in", tdir)
	passcount := 0
	runcount := 0
	re, err := regexp.Compile(*filter)
	if err != nil {
		return errors.Wrap(err, "bad filter")
	}
	tests, err := os.ReadDir(tdir)
	if err != nil {
		return err
	}
	for _, t := range tests {
		if !strings.HasSuffix(t.Name(), ".c") {
			continue
		}
		tc := filepath.Join(tdir, t.Name())
		if !re.MatchString(tc) {
			continue
		}
		runcount += 1
		got, err := RunWithInTemplate(tc, *declc, 5*time.Second)
		if err != nil {
			fmt.Printf("FAIL: %s run - %s\n", tc, err)
			continue
		}
		expectPath := strings.TrimSuffix(tc, ".c") + ".expect"
		if *update {
			if err := os.WriteFile(expectPath, []byte(got), 0o644); err != nil {
				fmt.Printf("FAIL: %s update - %s\n", tc, err)
				continue
			}
		}
		want, err := os.ReadFile(expectPath)
		if err != nil {
			fmt.Printf("FAIL: %s expect - %s\n", tc, err)
			continue
		}
		if string(want) != got {
			fmt.Printf("FAIL: %s output differs\n%s", tc, Diff(string(want), got))
			continue
		}
		fmt.Printf("PASS: %s\n", tc)
		passcount += 1
	}
	if passcount != runcount {
		return errors.Errorf("passed %d/%d", passcount, runcount)
	}
	return nil
}

func main() {
	flag.Parse()
	pass := true
	for _, tdir := range []string{"test/testcases"} {
		err := GoldenTests(tdir)
		if err != nil {
			fmt.Printf("%s FAIL: %s\n", tdir, err)
			pass = false
		}
	}
	if !pass {
		os.Exit(1)
	}
}
