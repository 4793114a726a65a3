// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"io"

	"github.com/fatih/color"
)

// Console prints leveled, colorized messages.
// Info is green, Warn bright magenta, Error red and Debug cyan. Debug is a
// no-op unless the console is verbose.
type Console struct {
	out     io.Writer
	verbose bool

	infoColor  *color.Color
	warnColor  *color.Color
	errorColor *color.Color
	debugColor *color.Color
}

// New creates a console writing to out
func New(out io.Writer, verbose bool) *Console {
	return &Console{
		out:        out,
		verbose:    verbose,
		infoColor:  color.New(color.FgGreen),
		warnColor:  color.New(color.FgHiMagenta),
		errorColor: color.New(color.FgRed),
		debugColor: color.New(color.FgCyan),
	}
}

// NewDefault creates a console on the color-aware standard output
func NewDefault(verbose bool) *Console {
	return New(color.Output, verbose)
}

// WithoutColor disables escape sequences, e.g. when writing to a buffer
func (c *Console) WithoutColor() *Console {
	for _, col := range []*color.Color{c.infoColor, c.warnColor, c.errorColor, c.debugColor} {
		col.DisableColor()
	}
	return c
}

// Verbose reports whether debug messages are printed
func (c *Console) Verbose() bool {
	return c.verbose
}

// Info logs informational messages
func (c *Console) Info(format string, a ...any) {
	c.infoColor.Fprintf(c.out, format, a...)
}

// Warn logs warnings
func (c *Console) Warn(format string, a ...any) {
	c.warnColor.Fprintf(c.out, format, a...)
}

// Error logs errors
func (c *Console) Error(format string, a ...any) {
	c.errorColor.Fprintf(c.out, format, a...)
}

// Debug logs debug messages when verbose
func (c *Console) Debug(format string, a ...any) {
	if !c.verbose {
		return
	}
	c.debugColor.Fprintf(c.out, format, a...)
}

// Discard returns a console that prints nothing
func Discard() *Console {
	return New(io.Discard, false).WithoutColor()
}
