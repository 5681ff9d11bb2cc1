package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/AngelCh415/studio-metrics/internal/models"
)

const (
	SheetTeachers = "Teachers"
	SheetStudios  = "Studios"
	SheetIncluded = "Included"
	SheetExcluded = "Excluded"
	SheetUnlinked = "Unlinked"
)

var metricHeaders = []string{
	"New clients", "Trials", "Referrals", "Hosted", "Influencer", "Others",
	"Retained", "Converted",
	"Retention %", "Conversion %", "No-show %", "Late cancel %", "First-time buyer %",
	"Influencer conv %", "Referral conv %", "Trial to membership %",
	"Revenue", "Avg revenue per client",
}

var auditHeaders = []string{
	"Name", "Email", "Teacher", "Period", "First visit at", "First visit",
	"Location", "Membership used", "Reason",
}

// WriteWorkbook writes the result as an xlsx workbook: teacher groups, studio
// rollups, and the included, excluded and unlinked audit lists.
func WriteWorkbook(w io.Writer, res *models.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTeachers); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, s := range []string{SheetStudios, SheetIncluded, SheetExcluded, SheetUnlinked} {
		if _, err := f.NewSheet(s); err != nil {
			return fmt.Errorf("create sheet %s: %w", s, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	var teachers, studios [][]any
	for _, g := range res.Groups {
		if g.IsStudio() {
			studios = append(studios, append([]any{g.Location}, metricCells(g)...))
			continue
		}
		teachers = append(teachers, append([]any{g.TeacherName, g.Location, g.Period}, metricCells(g)...))
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]any
	}{
		{SheetTeachers, append([]string{"Teacher", "Location", "Period"}, metricHeaders...), teachers},
		{SheetStudios, append([]string{"Location"}, metricHeaders...), studios},
		{SheetIncluded, auditHeaders, auditRows(res.Audit.Included)},
		{SheetExcluded, auditHeaders, auditRows(res.Audit.Excluded)},
		{SheetUnlinked, auditHeaders, auditRows(res.Audit.Unlinked)},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.headers, s.rows, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any, style int) error {
	hdr := make([]any, len(headers))
	for i, h := range headers {
		hdr[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &hdr); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("%s header style: %w", sheet, err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	return f.SetColWidth(sheet, "A", lastCol, 16)
}

func metricCells(g models.GroupResult) []any {
	return []any{
		g.NewClients, g.Trials, g.Referrals, g.Hosted, g.InfluencerSignups, g.Others,
		g.RetainedClients, g.ConvertedClients,
		g.RetentionRate, g.ConversionRate, g.NoShowRate, g.LateCancellationRate, g.FirstTimeBuyerRate,
		g.InfluencerConversionRate, g.ReferralConversionRate, g.TrialToMembershipConversion,
		g.TotalRevenue, g.AverageRevenuePerClient,
	}
}

func auditRows(recs []models.AuditRecord) [][]any {
	out := make([][]any, 0, len(recs))
	for _, r := range recs {
		out = append(out, []any{
			r.Name(), r.Email, r.Teacher, r.Period, r.FirstVisitAt, r.FirstVisit,
			r.FirstVisitLocation, r.MembershipUsed, r.Reason,
		})
	}
	return out
}
