// Package ui renders terminal output for the cfgclone CLI.
package ui

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// Unicode symbols for status indicators
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolStep    = "→"
)

// Success returns a success message with checkmark symbol
func Success(msg string) string {
	return fmt.Sprintf("%s %s", SymbolSuccess, msg)
}

// Successf returns a formatted success message with checkmark symbol
func Successf(format string, args ...interface{}) string {
	return Success(fmt.Sprintf(format, args...))
}

// Error returns an error message with X symbol
func Error(msg string) string {
	return fmt.Sprintf("%s %s", SymbolError, msg)
}

// Warning returns a warning message with warning symbol
func Warning(msg string) string {
	return fmt.Sprintf("%s %s", SymbolWarning, msg)
}

// Step returns a progress message with arrow symbol
func Step(msg string) string {
	return fmt.Sprintf("%s %s", SymbolStep, msg)
}

// FilePath returns an accent-styled file path
func FilePath(path string) string {
	return Accent.Render(path)
}

// Header returns a styled section header
func Header(msg string) string {
	return Bold.Render(msg)
}

// Hint returns muted hint text
func Hint(msg string) string {
	return Muted.Render(msg)
}

// Interactive reports whether stdout is a terminal. Progress chatter is
// suppressed when output is piped.
func Interactive() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}
