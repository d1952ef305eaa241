package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	out, err := exporter.Render(Dataset{
		Title:   "Attendance Log",
		Headers: []string{"Date", "Status", "Notes"},
		Rows: [][]string{
			{"2025-09-01", "present", ""},
			{"2025-09-03", "absent", "doctor visit"},
		},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, []string{"Date", "Status", "Notes"}, records[0])
	require.Equal(t, "doctor visit", records[2][2])
}

func TestCSVExporterPadsShortRows(t *testing.T) {
	exporter := NewCSVExporter()
	out, err := exporter.Render(Dataset{
		Headers: []string{"Date", "Status", "Notes"},
		Rows:    [][]string{{"2025-09-01", "late"}},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records[1], 3)
	require.Equal(t, "", records[1][2])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()
	out, err := exporter.Render(Dataset{
		Title:   "Attendance Log MAT101",
		Headers: []string{"Date", "Status"},
		Rows:    [][]string{{"2025-09-01", "present"}},
	})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	exporter := NewPDFExporter()
	_, err := exporter.Render(Dataset{Title: "empty"})
	require.Error(t, err)
}
