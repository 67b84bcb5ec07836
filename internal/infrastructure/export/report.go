// Package export serializes the materialized admin listing into a
// semicolon-delimited CSV artifact that common spreadsheet tools open
// correctly, including non-ASCII text (UTF-8 with a byte-order mark).
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/attestation-hub/attestation-registry/internal/application/query"
	"github.com/attestation-hub/attestation-registry/internal/domain/shared"
)

// utf8BOM makes spreadsheet tools detect UTF-8 instead of the local ANSI
// code page.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// header is the literal localized header row of the report.
var header = []string{"ID", "Студент", "Группа", "Тип", "Оценка", "Преподаватель", "Дата"}

// dateLayout is the exam date format used in report rows.
const dateLayout = "2006-01-02"

// ReportWriter writes admin listing reports into a directory.
type ReportWriter struct {
	dir string
}

// NewReportWriter creates a writer. An empty dir means the current
// working directory.
func NewReportWriter(dir string) *ReportWriter {
	if dir == "" {
		dir = "."
	}
	return &ReportWriter{dir: dir}
}

// FileName returns the report name for the export moment's local time:
// Report_YYYY-MM-DD_HH-MM.csv. Two exports in the same minute collide and
// the later one overwrites the earlier file.
func FileName(now time.Time) string {
	return fmt.Sprintf("Report_%s.csv", now.Format("2006-01-02_15-04"))
}

// Export writes the given rows in the order given, header first, fields
// separated by ';'. It serializes exactly what it is handed - whatever
// filter was last applied to the listing - and never re-queries.
func (w *ReportWriter) Export(rows []query.AdminRowDTO, now time.Time) (string, error) {
	path := filepath.Join(w.dir, FileName(now))

	file, err := os.Create(path)
	if err != nil {
		return "", shared.WrapError("export", "Export", shared.ErrExport,
			"failed to create report file", err)
	}

	if err := writeReport(file, rows); err != nil {
		_ = file.Close()
		return "", shared.WrapError("export", "Export", shared.ErrExport,
			"failed to write report", err)
	}

	if err := file.Close(); err != nil {
		return "", shared.WrapError("export", "Export", shared.ErrExport,
			"failed to close report file", err)
	}

	return path, nil
}

func writeReport(file *os.File, rows []query.AdminRowDTO) error {
	if _, err := file.Write(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(file)
	cw.Comma = ';'

	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.ResultID, 10),
			row.StudentName,
			row.GroupName,
			row.TypeName,
			strconv.Itoa(row.Grade),
			row.MemberName,
			row.ExamDate.Format(dateLayout),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
