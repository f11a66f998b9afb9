// Package term describes the output of the CLI: whether it is a terminal and
// how wide it is.
package term

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

type Output struct {
	io.Writer
	file *os.File
}

// FromWriter wraps w. Only an *os.File can be a terminal.
func FromWriter(w io.Writer) *Output {
	f, _ := w.(*os.File)
	return &Output{Writer: w, file: f}
}

func (o *Output) IsTTY() bool {
	if o.file == nil {
		return false
	}
	fd := o.file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Width returns the terminal width, or fallback when the output is not a
// terminal or its size is unknown.
func (o *Output) Width(fallback int) int {
	if !o.IsTTY() {
		return fallback
	}
	width, _, err := term.GetSize(int(o.file.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}
