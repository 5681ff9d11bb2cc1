package export

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/AngelCh415/studio-metrics/internal/models"
)

func sampleResult() *models.Result {
	visitor := models.NewVisitor{FirstName: "Ana", LastName: "Diaz", Email: "a@x.com", FirstVisitAt: "2024-01-05", FirstVisitLocation: "Downtown"}
	return &models.Result{
		Groups: []models.GroupResult{
			{TeacherName: "Jane", Location: "Downtown", Period: "Jan 24", NewClients: 2, RetainedClients: 1, RetentionRate: 50, TotalRevenue: 120},
			{TeacherName: models.StudioTeacher, Location: "Downtown", NewClients: 2, RetentionRate: 50},
		},
		Audit: models.Audit{
			Included: []models.AuditRecord{{NewVisitor: visitor, Teacher: "Jane", Period: "Jan 24", Reason: "First time visitor"}},
			Excluded: []models.AuditRecord{{NewVisitor: visitor, Teacher: "Jane", Reason: "Membership used \"Staff\" matches friends|family|staff"}},
		},
	}
}

func TestTimestampedFilename(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, filepath.Join("reports", "studio_metrics_20240309_140507.json"), TimestampedFilename("reports", "studio_metrics", at, "json"))
}

func TestWriteJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, ToFile(path, func(w io.Writer) error { return WriteJSON(w, sampleResult()) }))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got models.Result
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Groups, 2)
	assert.Equal(t, "Jane", got.Groups[0].TeacherName)
}

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, sampleResult()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetTeachers, SheetStudios, SheetIncluded, SheetExcluded, SheetUnlinked}, f.GetSheetList())

	rows, err := f.GetRows(SheetTeachers)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Teacher", "Location", "Period", "New clients"}, rows[0][:4])
	assert.Equal(t, []string{"Jane", "Downtown", "Jan 24", "2"}, rows[1][:4])

	rows, err = f.GetRows(SheetStudios)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Downtown", rows[1][0])

	rows, err = f.GetRows(SheetIncluded)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ana Diaz", rows[1][0])
	assert.Equal(t, "First time visitor", rows[1][8])

	rows, err = f.GetRows(SheetUnlinked)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
