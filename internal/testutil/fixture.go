// Package testutil builds TMC workbooks for tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

// Header is one count column: the approach label (only written on the first
// column of a group) and the movement label.
type Header struct {
	Approach string
	Movement string
}

// Tab is one class tab of a count file.
type Tab struct {
	Name    string
	Headers []Header
	Times   []string
	Counts  [][]int
	// Raw replaces Times/Counts when set, for malformed-row cases.
	Raw [][]interface{}
}

// Workbook describes a whole count file.
type Workbook struct {
	LocationName string
	City         string
	Date         string
	StartTime    string
	EndTime      string
	Legs         map[string]string
	SkipInfo     bool
	Tabs         []Tab
}

// Approach returns the standard movement columns of one approach.
func Approach(label, crosswalk string) []Header {
	hs := []Header{
		{Approach: label, Movement: "U Turns"},
		{Movement: "Left Turns"},
		{Movement: "Straight Through"},
		{Movement: "Right Turns"},
	}
	if crosswalk != "" {
		hs = append(hs, Header{Movement: crosswalk})
	}
	return hs
}

// Times returns n clock labels starting at start ("07:00") every step.
func Times(start string, n int, step time.Duration) []string {
	t, err := time.Parse("15:04", start)
	if err != nil {
		panic(err)
	}
	out := make([]string, n)
	for i := range out {
		out[i] = t.Add(time.Duration(i) * step).Format("15:04")
	}
	return out
}

// Column builds count rows where only column col carries values.
func Column(width, col int, values []int) [][]int {
	rows := make([][]int, len(values))
	for i, v := range values {
		rows[i] = make([]int, width)
		rows[i][col] = v
	}
	return rows
}

// Write saves the workbook as dir/name and returns its path.
func Write(t testing.TB, dir, name string, wb Workbook) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	first := true
	addSheet := func(name string) {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
			first = false
			return
		}
		if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("new sheet %s: %v", name, err)
		}
	}
	set := func(sheet string, col, row int, v interface{}) {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("set %s!%s: %v", sheet, cell, err)
		}
	}

	if !wb.SkipInfo {
		addSheet("Information")
		row := 1
		place := [][2]string{{"Intersection Name", wb.LocationName}, {"Municipality", wb.City}}
		for _, dir := range []string{"Northbound", "Southbound", "Eastbound", "Westbound"} {
			if street, ok := wb.Legs[dir]; ok {
				place = append(place, [2]string{dir + " Street", street})
			}
		}
		for _, p := range place {
			if p[1] == "" {
				continue
			}
			set("Information", 1, row, p[0])
			set("Information", 2, row, p[1])
			row++
		}
		timing := [][2]string{{"Date", wb.Date}, {"Start Time", wb.StartTime}, {"End Time", wb.EndTime}}
		for i, p := range timing {
			if p[1] == "" {
				continue
			}
			set("Information", 4, i+1, p[0])
			set("Information", 5, i+1, p[1])
		}
	}

	for _, tab := range wb.Tabs {
		addSheet(tab.Name)
		set(tab.Name, 1, 1, tab.Name)
		set(tab.Name, 1, 3, "Time")
		for i, h := range tab.Headers {
			if h.Approach != "" {
				set(tab.Name, i+2, 2, h.Approach)
			}
			set(tab.Name, i+2, 3, h.Movement)
		}

		if tab.Raw != nil {
			for r, values := range tab.Raw {
				for c, v := range values {
					if v != nil {
						set(tab.Name, c+1, r+4, v)
					}
				}
			}
			continue
		}
		for r, ts := range tab.Times {
			set(tab.Name, 1, r+4, ts)
			for c, v := range tab.Counts[r] {
				set(tab.Name, c+2, r+4, v)
			}
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
	return path
}

// SpikeWorkbook is the reference scenario: one light-vehicle approach with
// through counts 10,12,11,9,8,7,6,5 from 07:00 in 15-minute steps.
func SpikeWorkbook() Workbook {
	headers := Approach("Northbound", "Peds in Crosswalk")
	return Workbook{
		LocationName: "Cheltenham Ave & Washington Ln",
		City:         "Cheltenham Twp",
		Date:         "2023-05-24",
		StartTime:    "07:00",
		EndTime:      "09:00",
		Legs:         map[string]string{"Northbound": "Washington Ln"},
		Tabs: []Tab{{
			Name:    "Light Vehicles",
			Headers: headers,
			Times:   Times("07:00", 8, 15*time.Minute),
			Counts:  Column(len(headers), 2, []int{10, 12, 11, 9, 8, 7, 6, 5}),
		}},
	}
}
