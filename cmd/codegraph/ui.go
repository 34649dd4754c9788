// TTY-aware colored output for the batch summary printer, grounded on
// vjache-cie's cmd/cie/index.go: color.Color wrappers degrading to plain
// text when stdout is not a terminal. Never imported by internal/ — this
// is presentation glue at the CLI boundary only.
package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var isTTY = isatty.IsTerminal(os.Stdout.Fd())

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	dim    = color.New(color.Faint)
)

func init() {
	// fatih/color auto-detects NO_COLOR/non-tty on most platforms, but the
	// teacher's pack grounds this on an explicit go-isatty check so piped
	// CI output is never colorized even if that detection misses a case.
	if !isTTY {
		color.NoColor = true
	}
}

func colorize(c *color.Color, format string, a ...any) string {
	return c.Sprintf(format, a...)
}
