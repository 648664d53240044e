package ux

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Table is a record listing. In text mode it renders as a bordered table; in
// JSON and YAML the Records are written instead.
type Table struct {
	Headers []string
	Rows    [][]string
	Records any
}

// Data returns the structured payload.
func (t Table) Data() any {
	if t.Records != nil {
		return t.Records
	}
	return t.Rows
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Text renders the table.
func (t Table) Text() string {
	if len(t.Rows) == 0 {
		return "No results."
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

// KeyValues is an ordered list of label/value pairs for detail views.
type KeyValues struct {
	Pairs   [][2]string
	Records any
}

// Add appends a pair and returns the list.
func (kv KeyValues) Add(key, value string) KeyValues {
	kv.Pairs = append(kv.Pairs, [2]string{key, value})
	return kv
}

// Data returns the structured payload.
func (kv KeyValues) Data() any {
	if kv.Records != nil {
		return kv.Records
	}
	out := make(map[string]string, len(kv.Pairs))
	for _, p := range kv.Pairs {
		out[p[0]] = p[1]
	}
	return out
}

var keyStyle = lipgloss.NewStyle().Bold(true)

// Text renders aligned "key: value" lines.
func (kv KeyValues) Text() string {
	width := 0
	for _, p := range kv.Pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}
	var out string
	for i, p := range kv.Pairs {
		if i > 0 {
			out += "\n"
		}
		out += keyStyle.Width(width+2).Render(p[0]+":") + p[1]
	}
	return out
}
