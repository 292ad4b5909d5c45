package output

import (
	"fmt"
	"io"
	"os"
)

// Messages go to these writers; tests may swap them.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// Info prints an informational message to stdout with an info prefix.
func Info(msg string) {
	_, _ = fmt.Fprintln(Stdout, paintInfo("ℹ️  ")+msg)
}

// Infof prints a formatted informational message to stdout.
func Infof(format string, args ...any) {
	Info(fmt.Sprintf(format, args...))
}

// Warn prints a warning message to stderr with a warning prefix.
func Warn(msg string) {
	_, _ = fmt.Fprintln(Stderr, paintWarn("⚠️  "+msg))
}

// Warnf prints a formatted warning message to stderr.
func Warnf(format string, args ...any) {
	Warn(fmt.Sprintf(format, args...))
}

// Success prints a success message to stdout with a success prefix.
func Success(msg string) {
	_, _ = fmt.Fprintln(Stdout, paintSuccess("✅ "+msg))
}

// Successf prints a formatted success message to stdout.
func Successf(format string, args ...any) {
	Success(fmt.Sprintf(format, args...))
}
