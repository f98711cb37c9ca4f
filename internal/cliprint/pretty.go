// Package cliprint implements the generator's human-readable diagnostic
// printer, adapted from the teacher's source-aware pretty printer
// (internal/diagfmt/pretty.go) to Relay's simpler diagnostic shape: a
// token.Position rather than a full source span, so there is no line/column
// range to underline — only a position to report and notes to list beneath
// it.
package cliprint

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"relaygen/internal/diag"
)

// Options configures Pretty's output (spec §6, "human-readable console
// output").
type Options struct {
	Color bool
}

// Pretty writes diagnostics in diagnostic order (call bag.Sort() first) as
//
//	<path>:<line>:<col>: <SEV> <ID>: <message>
//	  note: <path>:<line>:<col>: <note message>
func Pretty(w io.Writer, diagnostics []diag.Diagnostic, opts Options) {
	errorColor := color.New(color.FgRed, color.Bold)
	warningColor := color.New(color.FgYellow, color.Bold)
	infoColor := color.New(color.FgCyan, color.Bold)
	pathColor := color.New(color.FgWhite, color.Bold)
	idColor := color.New(color.FgMagenta)
	noteColor := color.New(color.FgCyan)

	prev := color.NoColor
	defer func() { color.NoColor = prev }()
	color.NoColor = !opts.Color

	pathWidth := 0
	for _, d := range diagnostics {
		if w := runewidth.StringWidth(displayPath(d.Pos.Filename)); w > pathWidth {
			pathWidth = w
		}
	}

	for i, d := range diagnostics {
		if i > 0 {
			fmt.Fprintln(w)
		}

		var sevColored string
		switch d.Severity {
		case diag.SevError:
			sevColored = errorColor.Sprint(d.Severity.String())
		case diag.SevWarning:
			sevColored = warningColor.Sprint(d.Severity.String())
		default:
			sevColored = infoColor.Sprint(d.Severity.String())
		}

		path := displayPath(d.Pos.Filename)

		fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n",
			pathColor.Sprint(padRight(path, pathWidth)),
			d.Pos.Line, d.Pos.Column,
			sevColored,
			idColor.Sprint(string(d.ID)),
			d.Message,
		)

		for _, note := range d.Notes {
			notePath := note.Pos.Filename
			if notePath == "" {
				notePath = path
			}
			fmt.Fprintf(w, "  %s: %s:%d:%d: %s\n",
				noteColor.Sprint("note"),
				notePath, note.Pos.Line, note.Pos.Column,
				note.Msg,
			)
		}
	}
}

func displayPath(filename string) string {
	if filename == "" {
		return "<generator>"
	}
	return filename
}

// padRight pads s to width columns, measured with go-runewidth so a path
// containing wide Unicode characters still lines up across diagnostics.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	buf := make([]byte, width-w)
	for i := range buf {
		buf[i] = ' '
	}
	return s + string(buf)
}
