package ui

import (
	"fmt"
	"io"
	"os"
)

// Output targets. Tests swap them with SetOutput.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetOutput redirects every helper; nil keeps the current writer.
func SetOutput(out, errOut io.Writer) {
	if out != nil {
		stdout = out
	}
	if errOut != nil {
		stderr = errOut
	}
}

func OK(msg string)   { fmt.Fprintln(stdout, current.Success.Render(current.SymOK+" "+msg)) }
func Warn(msg string) { fmt.Fprintln(stderr, current.Pending.Render(current.SymWarn+" "+msg)) }
func Fail(msg string) { fmt.Fprintln(stderr, current.Error.Render(current.SymFail+" "+msg)) }

// Println writes a plain line to the standard output target.
func Println(s string) { fmt.Fprintln(stdout, s) }

// Hint prints a muted line on the error output, below a failure.
func Hint(s string) { fmt.Fprintln(stderr, current.Muted.Render(s)) }
