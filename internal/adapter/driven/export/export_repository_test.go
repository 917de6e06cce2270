package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/diillson/tmc-summarizer-go/internal/application/usecase"
	"github.com/diillson/tmc-summarizer-go/internal/domain/entity"
	"github.com/diillson/tmc-summarizer-go/internal/shared/types"
)

func sampleReport(t *testing.T) *entity.Report {
	t.Helper()

	day := time.Date(2023, 5, 24, 0, 0, 0, 0, time.UTC)
	light := entity.CountKey{Class: entity.LightVehicles, Direction: entity.Northbound, Movement: entity.Through}
	peds := entity.CountKey{Class: entity.LightVehicles, Direction: entity.Northbound, Movement: entity.PedsCrosswalk}

	run := entity.Run{
		Location: entity.Location{
			ID:         "101",
			Name:       "Main St & 1st Ave",
			City:       "Springfield",
			Legs:       map[entity.Direction]string{entity.Northbound: "Main St"},
			Date:       day,
			StartTime:  "07:00",
			EndTime:    "09:00",
			SourceFile: "101_main.xlsx",
		},
		Columns: []entity.Column{
			{Key: light, Label: "Straight Through"},
			{Key: peds, Label: "Peds in Crosswalk"},
		},
	}
	for i, n := range []int{10, 12, 11, 9, 8, 7, 6, 5} {
		run.Intervals = append(run.Intervals, entity.RawInterval{
			Start:    day.Add(7*time.Hour + time.Duration(i)*15*time.Minute),
			Duration: 15 * time.Minute,
			Counts:   map[entity.CountKey]int{light: n, peds: i % 2},
		})
	}

	report, err := usecase.BuildReport([]entity.Run{run}, usecase.AggregateOptions{})
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}
	return report
}

func TestExportToXLSX(t *testing.T) {
	dir := t.TempDir()
	repo := NewExportRepository()

	path, err := repo.ExportToXLSX(sampleReport(t), types.DefaultReportName, dir)
	if err != nil {
		t.Fatalf("ExportToXLSX: %v", err)
	}
	if filepath.Base(path) != "TMC Summary.xlsx" {
		t.Errorf("unexpected file name %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open written workbook: %v", err)
	}
	defer f.Close()

	want := []string{"Summary", "Light Vehicles", "Pedestrians"}
	if got := f.GetSheetList(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("sheets = %v, want %v", got, want)
	}

	rows, err := f.GetRows("Light Vehicles")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	var total, peak []string
	for _, r := range rows {
		if len(r) == 0 {
			continue
		}
		switch {
		case r[0] == "Total":
			total = r
		case strings.HasPrefix(r[0], "Peak Hour 07:00 to 08:00"):
			peak = r
		}
	}
	if len(total) < 3 || total[1] != "68" || total[2] != "68" {
		t.Errorf("total row = %v, want 68", total)
	}
	if len(peak) < 3 || peak[2] != "42" {
		t.Errorf("peak row = %v, want 42", peak)
	}

	summary, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(summary) < 2 || summary[1][0] != "101" || summary[1][5] != "07:00 to 08:00" {
		t.Errorf("summary row = %v", summary[1])
	}
}

func TestExportToXLSXHeavyDetail(t *testing.T) {
	day := time.Date(2023, 5, 24, 0, 0, 0, 0, time.UTC)
	light := entity.CountKey{Class: entity.LightVehicles, Direction: entity.Northbound, Movement: entity.Through}
	total := entity.CountKey{Class: entity.TotalVehicles, Direction: entity.Northbound, Movement: entity.Through}

	run := entity.Run{
		Location: entity.Location{ID: "202", Name: "Oak St", Date: day, SourceFile: "202_oak.xlsx"},
		Columns: []entity.Column{
			{Key: light, Label: "Straight Through"},
			{Key: total, Label: "Straight Through"},
		},
	}
	for i := 0; i < 4; i++ {
		run.Intervals = append(run.Intervals, entity.RawInterval{
			Start:    day.Add(7*time.Hour + time.Duration(i)*15*time.Minute),
			Duration: 15 * time.Minute,
			Counts:   map[entity.CountKey]int{light: 8, total: 10},
		})
	}
	report, err := usecase.BuildReport([]entity.Run{run}, usecase.AggregateOptions{})
	if err != nil {
		t.Fatalf("BuildReport: %v", err)
	}

	path, err := NewExportRepository().ExportToXLSX(report, "Detail Test", t.TempDir())
	if err != nil {
		t.Fatalf("ExportToXLSX: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open written workbook: %v", err)
	}
	defer f.Close()

	want := []string{"Summary", "Detail", "Light Vehicles", "Total Vehicles"}
	if got := f.GetSheetList(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("sheets = %v, want %v", got, want)
	}

	detail, err := f.GetRows("Detail")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	byMeasure := make(map[string][]string)
	for _, r := range detail {
		if len(r) > 0 {
			byMeasure[r[0]] = r
		}
	}
	if got := byMeasure["am_total"]; strings.Join(got, ",") != "am_total,07:00 to 08:00,1,40,40" {
		t.Errorf("am_total row = %v", got)
	}
	if got := byMeasure["am_heavy_pct"]; strings.Join(got, ",") != "am_heavy_pct,07:00 to 08:00,1,20,20" {
		t.Errorf("am_heavy_pct row = %v", got)
	}
	if _, ok := byMeasure["pm_total"]; ok {
		t.Error("no PM counts, expected no pm rows")
	}

	rows, err := f.GetRows("Total Vehicles")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	found := false
	for i, r := range rows {
		if len(r) > 0 && r[0] == "Percent Heavy Vehicles" {
			found = true
			if i+2 >= len(rows) {
				t.Fatal("percent heavy block has no rows")
			}
			if got := strings.Join(rows[i+2], ","); got != "07:00,20,20" {
				t.Errorf("first percent heavy row = %s", got)
			}
		}
	}
	if !found {
		t.Error("expected a percent heavy block on the Total Vehicles sheet")
	}
}

func TestExportToXLSXIsDeterministic(t *testing.T) {
	repo := NewExportRepository()
	report := sampleReport(t)

	first, err := repo.ExportToXLSX(report, "TMC Summary", t.TempDir())
	if err != nil {
		t.Fatalf("first export: %v", err)
	}
	second, err := repo.ExportToXLSX(report, "TMC Summary", t.TempDir())
	if err != nil {
		t.Fatalf("second export: %v", err)
	}

	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	if len(a) == 0 || !bytes.Equal(a, b) {
		t.Error("re-running the export should produce identical bytes")
	}
}

func TestExportToXLSXOverwrites(t *testing.T) {
	dir := t.TempDir()
	repo := NewExportRepository()
	report := sampleReport(t)

	stale := filepath.Join(dir, "TMC Summary.xlsx")
	if err := os.WriteFile(stale, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	path, err := repo.ExportToXLSX(report, "TMC Summary", dir)
	if err != nil {
		t.Fatalf("ExportToXLSX: %v", err)
	}
	if _, err := excelize.OpenFile(path); err != nil {
		t.Errorf("overwritten workbook should be readable: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected a single output file, got %d", len(entries))
	}
}

func TestExportToXLSXUnwritableDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewExportRepository().ExportToXLSX(sampleReport(t), "TMC Summary", blocker)
	if !errors.Is(err, types.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	var ioErr *types.IOError
	if !errors.As(err, &ioErr) || ioErr.Path != blocker {
		t.Errorf("expected IOError for %s, got %v", blocker, err)
	}
}

func TestExportToCSV(t *testing.T) {
	path, err := NewExportRepository().ExportToCSV(sampleReport(t), "report", t.TempDir())
	if err != nil {
		t.Fatalf("ExportToCSV: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	// header + Light NB + Pedestrians NB
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	light := records[1]
	if light[3] != "Light Vehicles" || light[5] != "68" || light[7] != "42" || light[8] != "0.88" {
		t.Errorf("light record = %v", light)
	}
}

func TestExportToJSON(t *testing.T) {
	path, err := NewExportRepository().ExportToJSON(sampleReport(t), "report", t.TempDir())
	if err != nil {
		t.Fatalf("ExportToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded entity.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Runs) != 1 || decoded.Runs[0].Tables[0].Peak.Count != 42 {
		t.Errorf("unexpected decoded report: %+v", decoded.Runs)
	}
}

func TestExportToPDFAndZip(t *testing.T) {
	dir := t.TempDir()
	repo := NewExportRepository()
	report := sampleReport(t)

	xlsxPath, err := repo.ExportToXLSX(report, "TMC Summary", dir)
	if err != nil {
		t.Fatalf("ExportToXLSX: %v", err)
	}
	pdfPath, err := repo.ExportToPDF(report, "TMC Summary", dir)
	if err != nil {
		t.Fatalf("ExportToPDF: %v", err)
	}
	if info, err := os.Stat(pdfPath); err != nil || info.Size() == 0 {
		t.Fatalf("pdf not written: %v", err)
	}

	zipPath, err := repo.ZipFiles([]string{xlsxPath, pdfPath}, "TMC Summary", dir)
	if err != nil {
		t.Fatalf("ZipFiles: %v", err)
	}

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "TMC Summary.xlsx,TMC Summary.pdf" {
		t.Errorf("zip entries = %v", names)
	}
}
