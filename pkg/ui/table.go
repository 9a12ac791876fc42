package ui

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// RenderTable writes rows under header. Terminal output keeps pterm colors,
// text output strips them.
func RenderTable(out io.Writer, format Format, header []string, rows [][]string) error {
	data := pterm.TableData{header}
	data = append(data, rows...)

	rendered, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	if format != FormatTerminal {
		rendered = pterm.RemoveColorFromString(rendered)
	}

	_, err = fmt.Fprintln(out, rendered)
	return err
}
