package export

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/diillson/tmc-summarizer-go/internal/domain/entity"
	"github.com/diillson/tmc-summarizer-go/internal/shared/types"
)

const (
	summarySheet = "Summary"
	detailSheet  = "Detail"
)

// xlsxStyles are the cell styles shared by every sheet of the workbook.
type xlsxStyles struct {
	title  int
	header int
	peak   int
	total  int
}

func newXLSXStyles(f *excelize.File) (xlsxStyles, error) {
	var s xlsxStyles
	var err error

	if s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 13},
	}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"404040"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
	}); err != nil {
		return s, err
	}
	if s.peak, err = f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFE699"}, Pattern: 1},
	}); err != nil {
		return s, err
	}
	s.total, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: []excelize.Border{{Type: "top", Color: "000000", Style: 1}},
	})
	return s, err
}

// ExportToXLSX grava o relatório como uma planilha: uma aba "Summary" e uma
// aba por categoria presente.
func (r *ExportRepositoryImpl) ExportToXLSX(report *entity.Report, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "xlsx")
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	styles, err := newXLSXStyles(f)
	if err != nil {
		return "", fmt.Errorf("error creating workbook styles: %w", err)
	}

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return "", fmt.Errorf("error naming summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, styles, report); err != nil {
		return "", err
	}

	if hasHeavyDetail(report) {
		if _, err := f.NewSheet(detailSheet); err != nil {
			return "", fmt.Errorf("error creating sheet %s: %w", detailSheet, err)
		}
		if err := writeDetailSheet(f, styles, report); err != nil {
			return "", err
		}
	}

	for _, cat := range report.Categories {
		sheet := string(cat)
		if _, err := f.NewSheet(sheet); err != nil {
			return "", fmt.Errorf("error creating sheet %s: %w", sheet, err)
		}
		if err := writeCategorySheet(f, styles, sheet, report, cat); err != nil {
			return "", err
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(outputFilename); err != nil {
		return "", &types.IOError{Op: "write", Path: outputFilename, Err: err}
	}

	return filepath.Abs(outputFilename)
}

func writeSummarySheet(f *excelize.File, styles xlsxStyles, report *entity.Report) error {
	header := []interface{}{
		"Location ID", "Location Name", "City", "Date", "Count Period",
		"AM Peak Hour", "AM Peak Volume", "PM Peak Hour", "PM Peak Volume",
		"Total Volume", "Source File",
	}
	for _, d := range entity.Directions {
		header = append(header, fmt.Sprintf("%s Leg", d.Label()))
	}
	for _, d := range entity.Directions {
		header = append(header, fmt.Sprintf("%s %% Heavy", d))
	}

	row := 1
	if err := setRow(f, summarySheet, row, header, styles.header); err != nil {
		return err
	}

	for _, rs := range report.Runs {
		row++
		ref := rs.ReferenceTable()
		values := []interface{}{
			rs.Location.ID, rs.Location.Name, rs.Location.City, dateText(rs.Location), rs.Location.CountPeriod(),
		}
		if ref != nil {
			values = append(values,
				ref.AMPeak.Text(), peakCount(ref.AMPeak),
				ref.PMPeak.Text(), peakCount(ref.PMPeak),
				ref.GrandTotal,
			)
		} else {
			values = append(values, "n/a", "", "n/a", "", "")
		}
		values = append(values, filepath.Base(rs.Location.SourceFile))
		for _, d := range entity.Directions {
			values = append(values, rs.Location.Legs[d])
		}
		heavy := make(map[entity.Direction]float64)
		for _, s := range rs.HeavyShare {
			heavy[s.Direction] = s.HeavyPercent
		}
		for _, d := range entity.Directions {
			if pct, ok := heavy[d]; ok {
				values = append(values, round(pct, 1))
			} else {
				values = append(values, "")
			}
		}
		if err := setRow(f, summarySheet, row, values, 0); err != nil {
			return err
		}
	}

	row += 2
	for _, p := range []entity.Period{entity.PeriodAM, entity.PeriodPM} {
		text := "n/a"
		if np, ok := report.NetworkPeak(p); ok {
			text = np.Text()
		}
		if err := setRow(f, summarySheet, row, []interface{}{fmt.Sprintf("Network %s Peak Hour", p), text}, 0); err != nil {
			return err
		}
		if err := styleCell(f, summarySheet, 1, row, styles.total); err != nil {
			return err
		}
		row++
	}

	return f.SetColWidth(summarySheet, "A", "K", 18)
}

func hasHeavyDetail(report *entity.Report) bool {
	for _, rs := range report.Runs {
		if rs.Heavy != nil && len(rs.Heavy.Peaks) > 0 {
			return true
		}
	}
	return false
}

// writeDetailSheet escreve, por local, o volume e o percentual de pesados de
// cada movimento nos picos AM e PM.
func writeDetailSheet(f *excelize.File, styles xlsxStyles, report *entity.Report) error {
	row := 1
	for _, rs := range report.Runs {
		if rs.Heavy == nil || len(rs.Heavy.Peaks) == 0 {
			continue
		}

		if err := setRow(f, detailSheet, row, []interface{}{rs.Location.Title()}, styles.title); err != nil {
			return err
		}
		row++

		header := []interface{}{"Measure", "Peak Hour", "PHF"}
		for _, c := range rs.Heavy.Columns {
			header = append(header, c.Heading())
		}
		header = append(header, "Total")
		if err := setRow(f, detailSheet, row, header, styles.header); err != nil {
			return err
		}
		row++

		for _, d := range rs.Heavy.Peaks {
			period := strings.ToLower(string(d.Period))
			totals := []interface{}{period + "_total", d.Text(), round(d.Factor, 2)}
			for _, n := range d.Totals {
				totals = append(totals, n)
			}
			totals = append(totals, d.Total)

			pct := []interface{}{period + "_heavy_pct", d.Text(), round(d.Factor, 2)}
			for _, v := range d.HeavyPercent {
				pct = append(pct, round(v, 1))
			}
			pct = append(pct, round(d.TotalHeavy, 1))

			for _, values := range [][]interface{}{totals, pct} {
				if err := setRow(f, detailSheet, row, values, 0); err != nil {
					return err
				}
				row++
			}
		}
		row++
	}

	if err := f.SetColWidth(detailSheet, "A", "A", 16); err != nil {
		return err
	}
	return f.SetColWidth(detailSheet, "B", "B", 18)
}

// writeHeavyBlock escreve o percentual de pesados de cada intervalo.
func writeHeavyBlock(f *excelize.File, styles xlsxStyles, sheet string, row int, hb *entity.HeavyBreakdown) (int, error) {
	if err := setRow(f, sheet, row, []interface{}{"Percent Heavy Vehicles"}, styles.total); err != nil {
		return row, err
	}
	row++

	header := []interface{}{"Time"}
	for _, c := range hb.Columns {
		header = append(header, c.Heading())
	}
	header = append(header, "Total")
	if err := setRow(f, sheet, row, header, styles.header); err != nil {
		return row, err
	}
	row++

	for _, r := range hb.Rows {
		values := []interface{}{r.Start.Format("15:04")}
		for _, v := range r.Percent {
			values = append(values, round(v, 1))
		}
		values = append(values, round(r.Total, 1))
		if err := setRow(f, sheet, row, values, 0); err != nil {
			return row, err
		}
		row++
	}
	return row, nil
}

func writeCategorySheet(f *excelize.File, styles xlsxStyles, sheet string, report *entity.Report, cat entity.Category) error {
	row := 1
	for _, rs := range report.Runs {
		table := rs.Table(cat)
		if table == nil {
			continue
		}

		if err := setRow(f, sheet, row, []interface{}{fmt.Sprintf("%s - %s", rs.Location.Title(), cat)}, styles.title); err != nil {
			return err
		}
		row++
		if info := blockInfo(rs.Location); info != "" {
			if err := setRow(f, sheet, row, []interface{}{info}, 0); err != nil {
				return err
			}
			row++
		}

		header := []interface{}{"Time"}
		for _, c := range table.Columns {
			header = append(header, c.Heading())
		}
		header = append(header, "15-Min Total", "Hourly Total")
		if err := setRow(f, sheet, row, header, styles.header); err != nil {
			return err
		}
		row++

		for i, r := range table.Rows {
			values := []interface{}{r.Start.Format("15:04")}
			for _, n := range r.Counts {
				values = append(values, n)
			}
			values = append(values, r.Total, r.Hourly)
			style := 0
			if table.Peak.Contains(i) {
				style = styles.peak
			}
			if err := setRow(f, sheet, row, values, style); err != nil {
				return err
			}
			row++
		}

		totals := []interface{}{"Total"}
		for _, n := range table.ColumnTotals {
			totals = append(totals, n)
		}
		totals = append(totals, table.GrandTotal)
		if err := setRow(f, sheet, row, totals, styles.total); err != nil {
			return err
		}
		row++

		peakRow := []interface{}{"Peak Hour"}
		phfRow := []interface{}{"PHF"}
		if table.Peak != nil {
			peakRow[0] = fmt.Sprintf("Peak Hour %s", table.Peak.Text())
			for _, n := range table.Peak.ColumnTotals {
				peakRow = append(peakRow, n)
			}
			peakRow = append(peakRow, table.Peak.Count)
			phfRow = append(phfRow, round(table.Peak.Factor, 2))
		} else {
			peakRow = append(peakRow, "n/a")
			phfRow = append(phfRow, "n/a")
		}
		if err := setRow(f, sheet, row, peakRow, styles.total); err != nil {
			return err
		}
		row++
		if err := setRow(f, sheet, row, phfRow, 0); err != nil {
			return err
		}
		row++
		for _, p := range []entity.Period{entity.PeriodAM, entity.PeriodPM} {
			peak := table.PeriodPeak(p)
			if err := setRow(f, sheet, row, []interface{}{fmt.Sprintf("%s Peak", p), peak.Text(), peakCount(peak)}, 0); err != nil {
				return err
			}
			row++
		}
		row++

		if err := setRow(f, sheet, row, []interface{}{"Direction", "Total", "Peak Hour"}, styles.header); err != nil {
			return err
		}
		row++
		for _, dt := range table.Directions {
			if err := setRow(f, sheet, row, []interface{}{dt.Direction.Label(), dt.Total, dt.PeakTotal}, 0); err != nil {
				return err
			}
			row++
		}

		if cat == entity.CategoryTotal && rs.Heavy != nil {
			row++
			var err error
			if row, err = writeHeavyBlock(f, styles, sheet, row, rs.Heavy); err != nil {
				return err
			}
		}
		row += 2
	}

	return f.SetColWidth(sheet, "A", "A", 22)
}

// setRow escreve os valores a partir da coluna A e aplica o estilo, se houver.
func setRow(f *excelize.File, sheet string, row int, values []interface{}, style int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("error writing %s!%s: %w", sheet, start, err)
	}
	if style == 0 || len(values) == 0 {
		return nil
	}
	end, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, style)
}

func styleCell(f *excelize.File, sheet string, col, row, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, style)
}

func blockInfo(loc entity.Location) string {
	info := loc.City
	if d := dateText(loc); d != "" {
		if info != "" {
			info += " | "
		}
		info += d
	}
	if p := loc.CountPeriod(); p != "" {
		if info != "" {
			info += " | "
		}
		info += p
	}
	return info
}

func peakCount(p *entity.PeakWindow) interface{} {
	if p == nil {
		return ""
	}
	return p.Count
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
