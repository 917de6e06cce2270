package summarizer

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/diillson/tmc-summarizer-go/internal/testutil"
)

func TestWriteSummaryFileEndToEnd(t *testing.T) {
	dir := t.TempDir()
	testutil.Write(t, dir, "167385_Cheltenham.xlsx", testutil.SpikeWorkbook())

	path, err := WriteSummaryFile(dir, "")
	if err != nil {
		t.Fatalf("WriteSummaryFile: %v", err)
	}
	if path != filepath.Join(dir, "TMC Summary.xlsx") {
		t.Errorf("report written to %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Light Vehicles")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	found := false
	for _, r := range rows {
		if len(r) > 0 && strings.HasPrefix(r[0], "Peak Hour 07:00 to 08:00") {
			found = r[len(r)-1] == "42"
		}
	}
	if !found {
		t.Error("expected a 07:00 to 08:00 peak hour of 42")
	}
}

func TestRunWithExtraOutputs(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	testutil.Write(t, in, "1_first.xlsx", testutil.SpikeWorkbook())

	second := testutil.SpikeWorkbook()
	second.Tabs[0].Times = testutil.Times("16:00", 8, 15*time.Minute)
	testutil.Write(t, in, "2_second.xlsx", second)

	res, err := Run(context.Background(), Options{
		InputDir:   in,
		OutputDir:  out,
		ReportName: "Network",
		ReportType: []string{"csv", "json"},
		Zip:        true,
		PublishDB:  "sqlite://" + filepath.Join(out, "counts.db"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Runs != 2 || len(res.Exports) != 2 {
		t.Errorf("result = %+v", res)
	}
	if filepath.Base(res.Archive) != "Network.zip" {
		t.Errorf("archive = %s", res.Archive)
	}
	// 2 files x 8 intervals x 5 columns
	if res.Published != 80 {
		t.Errorf("published = %d, want 80", res.Published)
	}
}

func TestRunErrors(t *testing.T) {
	if _, err := WriteSummaryFile(filepath.Join(t.TempDir(), "missing"), ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing dir: expected ErrNotFound, got %v", err)
	}

	dir := t.TempDir()
	wb := testutil.SpikeWorkbook()
	wb.Tabs[0].Headers = wb.Tabs[0].Headers[:2]
	wb.Tabs[0].Counts = testutil.Column(2, 1, []int{1, 2, 3, 4, 5, 6, 7, 8})
	testutil.Write(t, dir, "3_broken.xlsx", wb)

	if _, err := WriteSummaryFile(dir, ""); !errors.Is(err, ErrDataFormat) {
		t.Errorf("missing columns: expected ErrDataFormat, got %v", err)
	}
}
