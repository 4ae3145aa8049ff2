// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"talkulizer/internal/layout"
	"talkulizer/internal/palette"
	"talkulizer/internal/tui"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#25A065"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})
}

// PrintTypes writes every visualizer type with its parameter labels.
func PrintTypes(w io.Writer) error {
	t := newTable("Type", "Name", "Param1", "Param2", "Offset", "Spread")
	for _, in := range layout.All() {
		l := in.Labels
		t.Row(string(in.Type), in.Name, dash(l.Param1), dash(l.Param2), dash(l.Offset), dash(l.Spread))
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// PrintPalettes writes every palette with a swatch of its six colors.
func PrintPalettes(w io.Writer) error {
	t := newTable("#", "Name", "Colors")
	for i, p := range palette.All() {
		var sb strings.Builder
		for _, c := range p.Six {
			sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render("██"))
		}
		t.Row(strconv.Itoa(i), p.Name, sb.String())
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// PrintSelection writes the audio configuration for a picked device.
func PrintSelection(w io.Writer, sel tui.Selection) error {
	_, err := fmt.Fprintf(w, "# %s\naudio:\n  source: portaudio\n  input_device: %d\n  sample_rate: %.0f\n",
		sel.Name, sel.DeviceID, sel.SampleRate)
	return err
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
