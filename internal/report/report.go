// Package report renders the dashboard's server table for export.
//
// Three formats are supported: CSV, an HTML table that spreadsheet tools open
// as an .xls workbook, and a bordered plain-text table for terminals.
package report

import (
	"encoding/csv"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Format selects the report encoding.
type Format string

const (
	// FormatCSV writes comma-separated values with a header row.
	FormatCSV Format = "csv"

	// FormatXLS writes an HTML table that spreadsheet tools open as a
	// workbook.
	FormatXLS Format = "xls"

	// FormatTable writes a bordered plain-text table for terminals.
	FormatTable Format = "table"
)

// Row is one server line in a report.
type Row struct {
	ID        int64
	Name      string
	IPAddress string
	Memory    string
	Type      string
	Status    string
}

var headers = []string{"ID", "Name", "IP Address", "Memory", "Type", "Status"}

// ParseFormat converts a user-supplied format name into a [Format].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLS, FormatTable:
		return f, nil
	case "":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown report format %q (expected csv, xls or table)", s)
	}
}

// ContentType returns the MIME type used when serving a report over HTTP.
func (f Format) ContentType() string {
	switch f {
	case FormatXLS:
		return "application/vnd.ms-excel"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// FileName returns the download name for a report in this format.
func (f Format) FileName() string {
	if f == FormatTable {
		return "server-report.txt"
	}
	return "server-report." + string(f)
}

// Write renders rows in the given format.
func Write(w io.Writer, format Format, title string, rows []Row) error {
	switch format {
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatXLS:
		return writeXLS(w, title, rows)
	case FormatTable:
		return writeTable(w, rows)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func writeCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

var xlsTemplate = template.Must(template.New("xls").Parse(`<html xmlns:x="urn:schemas-microsoft-com:office:excel">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<table border="1">
<caption>{{.Title}}</caption>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

func writeXLS(w io.Writer, title string, rows []Row) error {
	if title == "" {
		title = "Server Report"
	}
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = r.fields()
	}
	return xlsTemplate.Execute(w, struct {
		Title   string
		Headers []string
		Rows    [][]string
	}{title, headers, cells})
}

func writeTable(w io.Writer, rows []Row) error {
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = r.fields()
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	upStyle := cellStyle.Foreground(lipgloss.Color("42"))
	downStyle := cellStyle.Foreground(lipgloss.Color("196"))

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == len(headers)-1 && row >= 0 && row < len(rows) {
				if rows[row].Status == "SERVER_UP" {
					return upStyle
				}
				return downStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func (r Row) fields() []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Name,
		r.IPAddress,
		r.Memory,
		r.Type,
		strings.ReplaceAll(r.Status, "_", " "),
	}
}
