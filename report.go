package serverboard

import (
	"io"

	"github.com/jpalmerr/serverboard/internal/report"
)

// ReportFormat selects how [WriteReport] encodes the server table.
type ReportFormat string

const (
	// ReportCSV is comma-separated values with a header row.
	ReportCSV ReportFormat = "csv"

	// ReportXLS is an HTML table that spreadsheet tools open as a workbook.
	ReportXLS ReportFormat = "xls"

	// ReportTable is a bordered plain-text table for terminals.
	ReportTable ReportFormat = "table"
)

// ParseReportFormat converts a format name ("csv", "xls", "table") into a
// [ReportFormat]. An empty name selects [ReportCSV].
func ParseReportFormat(s string) (ReportFormat, error) {
	f, err := report.ParseFormat(s)
	if err != nil {
		return "", err
	}
	return ReportFormat(f), nil
}

// FileName returns the conventional download name, e.g. "server-report.xls".
func (f ReportFormat) FileName() string {
	return report.Format(f).FileName()
}

// WriteReport renders servers as a report in the given format.
//
// The title is used by formats that carry one (xls); pass "" for the
// default.
func WriteReport(w io.Writer, format ReportFormat, title string, servers []Server) error {
	rows := make([]report.Row, len(servers))
	for i, s := range servers {
		rows[i] = report.Row{
			ID:        s.ID,
			Name:      s.Name,
			IPAddress: s.IPAddress,
			Memory:    s.Memory,
			Type:      s.Type,
			Status:    s.Status.String(),
		}
	}
	return report.Write(w, report.Format(format), title, rows)
}

// Report writes the servers currently displayed by the view to w.
func (a *App) Report(w io.Writer, format ReportFormat, title string) error {
	return WriteReport(w, format, title, a.DisplayedServers())
}
