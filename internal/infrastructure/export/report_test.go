package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attestation-hub/attestation-registry/internal/application/query"
)

func sampleRows() []query.AdminRowDTO {
	date := time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)
	return []query.AdminRowDTO{
		{ResultID: 1, StudentName: "Иванов Петр", GroupName: "IT-21",
			TypeName: "Экзамен", Grade: 4, MemberName: "Кузнецова А.В.", ExamDate: date},
		{ResultID: 2, StudentName: "Сидорова Анна", GroupName: "ЭК-11",
			TypeName: "Защита", Grade: 2, MemberName: "Petrov B.", ExamDate: date},
	}
}

func readReport(t *testing.T, path string) (raw []byte, records [][]string) {
	t.Helper()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	body := bytes.TrimPrefix(raw, utf8BOM)
	reader := csv.NewReader(bytes.NewReader(body))
	reader.Comma = ';'
	records, err = reader.ReadAll()
	require.NoError(t, err)
	return raw, records
}

func TestFileName_MinutePrecision(t *testing.T) {
	now := time.Date(2025, 6, 18, 10, 30, 59, 0, time.UTC)
	assert.Equal(t, "Report_2025-06-18_10-30.csv", FileName(now))
}

func TestExport_WritesHeaderAndRows(t *testing.T) {
	writer := NewReportWriter(t.TempDir())
	now := time.Date(2025, 6, 18, 10, 30, 0, 0, time.UTC)

	path, err := writer.Export(sampleRows(), now)
	require.NoError(t, err)
	assert.Equal(t, "Report_2025-06-18_10-30.csv", filepath.Base(path))

	raw, records := readReport(t, path)

	assert.True(t, bytes.HasPrefix(raw, utf8BOM), "report must start with a UTF-8 BOM")
	require.Len(t, records, 3) // заголовок + 2 строки

	assert.Equal(t, []string{"ID", "Студент", "Группа", "Тип", "Оценка", "Преподаватель", "Дата"}, records[0])
	assert.Equal(t, []string{"1", "Иванов Петр", "IT-21", "Экзамен", "4", "Кузнецова А.В.", "2025-06-18"}, records[1])
	assert.Equal(t, []string{"2", "Сидорова Анна", "ЭК-11", "Защита", "2", "Petrov B.", "2025-06-18"}, records[2])
}

func TestExport_EmptyListingStillWritesHeader(t *testing.T) {
	writer := NewReportWriter(t.TempDir())

	path, err := writer.Export(nil, time.Date(2025, 6, 18, 10, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	_, records := readReport(t, path)
	require.Len(t, records, 1)
	assert.Equal(t, "ID", records[0][0])
}

func TestExport_SameMinuteOverwrites(t *testing.T) {
	writer := NewReportWriter(t.TempDir())
	now := time.Date(2025, 6, 18, 10, 30, 0, 0, time.UTC)

	first, err := writer.Export(sampleRows(), now)
	require.NoError(t, err)

	second, err := writer.Export(sampleRows()[:1], now.Add(30*time.Second))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	_, records := readReport(t, second)
	assert.Len(t, records, 2) // last writer wins
}

func TestExport_UnwritableDirectory(t *testing.T) {
	writer := NewReportWriter(filepath.Join(t.TempDir(), "missing"))

	_, err := writer.Export(sampleRows(), time.Now())
	require.Error(t, err)
}
