package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/diillson/tmc-summarizer-go/internal/domain/entity"
	"github.com/diillson/tmc-summarizer-go/internal/shared/types"
)

// ExportToPDF gera uma página por local com os picos e os totais por aproximação.
func (r *ExportRepositoryImpl) ExportToPDF(report *entity.Report, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	drawSectionTitle := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(4)
	}

	drawSection := func(title string, content string) {
		if content == "" {
			return
		}
		drawSectionTitle(title)
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		pdf.MultiCell(190, 5, tr(content), "", "L", false)
		pdf.Ln(6)
	}

	networkLines := []string{}
	for _, p := range []entity.Period{entity.PeriodAM, entity.PeriodPM} {
		if np, ok := report.NetworkPeak(p); ok {
			networkLines = append(networkLines, fmt.Sprintf("Network %s peak hour: %s", p, np.Text()))
		}
	}

	for i, rs := range report.Runs {
		pdf.AddPage()

		pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
		pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
		pdf.SetFont("Arial", "B", 14)
		title := rs.Location.Title()
		if len(title) > 80 {
			title = title[:77] + "..."
		}
		pdf.CellFormat(0, 12, tr(fmt.Sprintf("  %s", title)), "", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		pdf.SetFillColor(240, 240, 240)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		info := blockInfo(rs.Location)
		if info == "" {
			info = filepath.Base(rs.Location.SourceFile)
		}
		pdf.CellFormat(0, 8, tr(fmt.Sprintf("  %s", info)), "", 1, "L", true, 0, "")
		pdf.Ln(8)

		ref := rs.ReferenceTable()
		if ref != nil {
			peaks := []string{
				fmt.Sprintf("Peak hour (%s): %s, %d vehicles, PHF %.2f", ref.Category, ref.Peak.Text(), peakVolume(ref.Peak), peakFactor(ref.Peak)),
				fmt.Sprintf("AM peak: %s", ref.AMPeak.Text()),
				fmt.Sprintf("PM peak: %s", ref.PMPeak.Text()),
			}
			peaks = append(peaks, networkLines...)
			drawSection("Peak Hours", strings.Join(peaks, "\n"))
		}

		for _, table := range rs.Tables {
			drawSectionTitle(string(table.Category))

			colWidth := 190.0 / 3
			pdf.SetFont("Arial", "B", 10)
			pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
			pdf.CellFormat(colWidth, 7, "Direction", "B", 0, "L", false, 0, "")
			pdf.CellFormat(colWidth, 7, "Total", "B", 0, "R", false, 0, "")
			pdf.CellFormat(colWidth, 7, tr(fmt.Sprintf("Peak Hour (%s)", table.Peak.Text())), "B", 1, "R", false, 0, "")

			pdf.SetFont("Arial", "", 10)
			for _, dt := range table.Directions {
				pdf.CellFormat(colWidth, 6, dt.Direction.Label(), "", 0, "L", false, 0, "")
				pdf.CellFormat(colWidth, 6, fmt.Sprintf("%d", dt.Total), "", 0, "R", false, 0, "")
				pdf.CellFormat(colWidth, 6, fmt.Sprintf("%d", dt.PeakTotal), "", 1, "R", false, 0, "")
			}
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(colWidth, 6, "All", "T", 0, "L", false, 0, "")
			pdf.CellFormat(colWidth, 6, fmt.Sprintf("%d", table.GrandTotal), "T", 0, "R", false, 0, "")
			pdf.CellFormat(colWidth, 6, fmt.Sprintf("%d", peakVolume(table.Peak)), "T", 1, "R", false, 0, "")
			pdf.Ln(6)
		}

		if len(rs.HeavyShare) > 0 {
			lines := make([]string, 0, len(rs.HeavyShare))
			for _, s := range rs.HeavyShare {
				lines = append(lines, fmt.Sprintf("%s: %.1f%%", s.Direction.Label(), s.HeavyPercent))
			}
			drawSection("Heavy Vehicles at Peak Hour", strings.Join(lines, "\n"))
		}

		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Generated by TMC Summarizer | %s", filepath.Base(rs.Location.SourceFile))), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", i+1)), "", 0, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", &types.IOError{Op: "write", Path: outputFilename, Err: err}
	}

	return filepath.Abs(outputFilename)
}

func peakVolume(p *entity.PeakWindow) int {
	if p == nil {
		return 0
	}
	return p.Count
}

func peakFactor(p *entity.PeakWindow) float64 {
	if p == nil {
		return 0
	}
	return p.Factor
}
