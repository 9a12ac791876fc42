package ui

import (
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/wfpack/pkg/errors"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format selects how install progress and command output are written
type Format int

const (
	// FormatAuto picks FormatTerminal or FormatText from the output stream
	FormatAuto Format = iota
	// FormatTerminal adds lipgloss colors to the text lines
	FormatTerminal
	// FormatText is the plain stdout contract
	FormatText
	// FormatJSON writes one JSON document per command
	FormatJSON
)

// formatNames lists the accepted spellings; the first one is canonical
var formatNames = map[Format][]string{
	FormatAuto:     {"auto", ""},
	FormatTerminal: {"term", "terminal"},
	FormatText:     {"text", "plain"},
	FormatJSON:     {"json"},
}

func (f Format) String() string {
	if names, ok := formatNames[f]; ok {
		return names[0]
	}
	return "unknown"
}

// ParseFormat accepts any spelling in formatNames, case-insensitively
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for format, names := range formatNames {
		for _, name := range names {
			if s == name {
				return format, nil
			}
		}
	}
	return FormatAuto, errors.Newf(errors.ErrInvalidInput, "unknown output format %q (want auto, term, text or json)", s)
}

// fdWriter is an output stream backed by a file descriptor
type fdWriter interface {
	io.Writer
	Fd() uintptr
}

// DetectFormat returns FormatTerminal only for a color-capable terminal with
// NO_COLOR unset
func DetectFormat(output fdWriter) Format {
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}

	fd := output.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return FormatText
	}

	if termenv.NewOutput(output).ColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}

// Resolve turns FormatAuto into a concrete format for output. Writers
// without a file descriptor, such as buffers in tests, get plain text.
func Resolve(format Format, output io.Writer) Format {
	if format != FormatAuto {
		return format
	}
	if w, ok := output.(fdWriter); ok {
		return DetectFormat(w)
	}
	return FormatText
}
