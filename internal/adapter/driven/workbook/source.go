package workbook

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// sheetSource is the read-only view of a workbook the parser needs.
// Cells come back unformatted: times and dates may be Excel serial numbers.
type sheetSource interface {
	SheetNames() []string
	Rows(sheet string) ([][]string, error)
	Close() error
}

var workbookExtensions = map[string]bool{
	".xls":  true,
	".xlsx": true,
	".xlsm": true,
}

func isWorkbook(name string) bool {
	return workbookExtensions[strings.ToLower(filepath.Ext(name))]
}

func openSource(path string) (sheetSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("error opening workbook: %w", err)
		}
		return &xlsxSource{f: f}, nil
	case ".xls":
		wb, err := xls.Open(path, "utf-8")
		if err != nil {
			return nil, fmt.Errorf("error opening legacy workbook: %w", err)
		}
		return &xlsSource{wb: wb}, nil
	}
	return nil, fmt.Errorf("unsupported workbook format: %s", filepath.Ext(path))
}

type xlsxSource struct {
	f *excelize.File
}

func (s *xlsxSource) SheetNames() []string {
	return s.f.GetSheetList()
}

func (s *xlsxSource) Rows(sheet string) ([][]string, error) {
	return s.f.GetRows(sheet, excelize.Options{RawCellValue: true})
}

func (s *xlsxSource) Close() error {
	return s.f.Close()
}

type xlsSource struct {
	wb *xls.WorkBook
}

func (s *xlsSource) SheetNames() []string {
	var names []string
	for i := 0; i < s.wb.NumSheets(); i++ {
		if sheet := s.wb.GetSheet(i); sheet != nil {
			names = append(names, sheet.Name)
		}
	}
	return names
}

func (s *xlsSource) Rows(name string) ([][]string, error) {
	for i := 0; i < s.wb.NumSheets(); i++ {
		sheet := s.wb.GetSheet(i)
		if sheet == nil || sheet.Name != name {
			continue
		}

		rows := make([][]string, 0, int(sheet.MaxRow)+1)
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := sheet.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		return rows, nil
	}
	return nil, fmt.Errorf("sheet %q not found", name)
}

func (s *xlsSource) Close() error {
	return nil
}

// findSheet matches a sheet name ignoring case and surrounding spaces.
func findSheet(names []string, want string) (string, bool) {
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), want) {
			return n, true
		}
	}
	return "", false
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
