package workbook

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/diillson/tmc-summarizer-go/internal/domain/entity"
	"github.com/diillson/tmc-summarizer-go/internal/domain/repository"
	"github.com/diillson/tmc-summarizer-go/internal/shared/types"
)

const informationSheet = "Information"

// CountRepositoryImpl implementa o CountRepository lendo planilhas de contagem.
type CountRepositoryImpl struct {
	console types.ConsoleInterface
}

// NewCountRepository cria uma nova implementação do CountRepository.
func NewCountRepository(console types.ConsoleInterface) repository.CountRepository {
	return &CountRepositoryImpl{console: console}
}

// LocationID extracts the numeric location id a count file name must start
// with, e.g. "150314" from "150314_US13BristolPike.xls".
func LocationID(name string) (string, bool) {
	prefix, _, found := strings.Cut(filepath.Base(name), "_")
	if !found || prefix == "" {
		return "", false
	}
	if _, err := strconv.Atoi(prefix); err != nil {
		return "", false
	}
	return prefix, true
}

// LoadRuns parses every count file under inputDir, one run per file.
func (r *CountRepositoryImpl) LoadRuns(ctx context.Context, inputDir string) ([]entity.Run, error) {
	files, err := r.findCountFiles(inputDir)
	if err != nil {
		return nil, err
	}

	runs := make([]entity.Run, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.console.LogInfo("Reading %s", filepath.Base(file))
		run, err := r.parseRun(file)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, nil
}

func (r *CountRepositoryImpl) findCountFiles(inputDir string) ([]string, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		return nil, types.NotFoundError(inputDir, err)
	}
	if !info.IsDir() {
		return nil, types.NotFoundError(inputDir, fmt.Errorf("%s is not a directory", inputDir))
	}

	var files []string
	err = filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !isWorkbook(name) || strings.HasPrefix(name, "~$") {
			return nil
		}
		if _, ok := LocationID(name); !ok {
			r.console.LogWarning("Skipping %s: file names must start with a numeric location id and an underscore", name)
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, types.NotFoundError(inputDir, err)
	}

	if len(files) == 0 {
		return nil, types.NotFoundError(inputDir, nil)
	}
	sort.Strings(files)
	return files, nil
}

func (r *CountRepositoryImpl) parseRun(path string) (*entity.Run, error) {
	src, err := openSource(path)
	if err != nil {
		return nil, &types.DataFormatError{File: path, Reason: err.Error()}
	}
	defer src.Close()

	id, _ := LocationID(path)
	loc := entity.Location{ID: id, SourceFile: path}
	sheets := src.SheetNames()

	if name, ok := findSheet(sheets, informationSheet); ok {
		rows, err := src.Rows(name)
		if err != nil {
			return nil, &types.DataFormatError{File: path, Sheet: name, Reason: err.Error()}
		}
		if err := parseInformation(rows, &loc, path, name); err != nil {
			return nil, err
		}
	} else {
		r.console.LogWarning("%s has no %s tab; location metadata will be empty", filepath.Base(path), informationSheet)
	}

	b := newRunBuilder(loc.Date)
	found := false
	for _, class := range entity.VehicleClasses {
		name, ok := findSheet(sheets, string(class))
		if !ok {
			continue
		}
		found = true

		rows, err := src.Rows(name)
		if err != nil {
			return nil, &types.DataFormatError{File: path, Sheet: name, Reason: err.Error()}
		}
		cols, err := parseHeaders(rows, class, path, name)
		if err != nil {
			return nil, err
		}
		if err := b.addRows(rows[headerRows:], cols, path, name); err != nil {
			return nil, err
		}
	}

	if !found {
		return nil, &types.DataFormatError{File: path, Reason: "no Light Vehicles, Heavy Vehicles or Total Vehicles tab"}
	}

	if err := b.checkCoverage(path); err != nil {
		return nil, err
	}
	run := b.build(loc)
	return &run, nil
}

// parseInformation reads the place names (columns A:B) and the date and
// count times (columns D:E).
func parseInformation(rows [][]string, loc *entity.Location, file, sheet string) error {
	legs := make(map[entity.Direction]string)

	for i, row := range rows {
		label := normalizeLabel(cell(row, 0))
		value := strings.TrimSpace(cell(row, 1))
		if label != "" && value != "" {
			switch {
			case label == "intersection name":
				loc.Name = value
			case strings.HasSuffix(label, "street"):
				for prefix, d := range approachLabels {
					if strings.HasPrefix(label, prefix) {
						legs[d] = value
					}
				}
			case strings.Contains(label, "municipality"), strings.Contains(label, "city"),
				strings.Contains(label, "township"), strings.Contains(label, "town"):
				loc.City = value
			}
		}

		value = strings.TrimSpace(cell(row, 4))
		if value == "" {
			continue
		}
		switch normalizeLabel(cell(row, 3)) {
		case "date":
			date, err := parseDate(value)
			if err != nil {
				return &types.DataFormatError{File: file, Sheet: sheet, Row: i + 1, Column: "Date", Reason: err.Error()}
			}
			loc.Date = date
		case "start time":
			loc.StartTime = clockText(value)
		case "end time":
			loc.EndTime = clockText(value)
		}
	}

	if len(legs) > 0 {
		loc.Legs = legs
	}
	return nil
}

// runBuilder merges the class tabs of one file into intervals keyed by start time.
type runBuilder struct {
	date    time.Time
	columns []entity.Column
	counts  map[time.Time]map[entity.CountKey]int
	tabs    []tabStarts
}

// tabStarts records which interval starts a class tab carried.
type tabStarts struct {
	sheet  string
	starts map[time.Time]bool
}

func newRunBuilder(date time.Time) *runBuilder {
	return &runBuilder{
		date:   date,
		counts: make(map[time.Time]map[entity.CountKey]int),
	}
}

func (b *runBuilder) addRows(rows [][]string, cols []headerColumn, file, sheet string) error {
	seen := make(map[time.Time]bool)

	for i, row := range rows {
		rowNum := i + headerRows + 1
		if blankRow(row) {
			continue
		}

		rawTime := cell(row, 0)
		clock, err := parseClock(rawTime)
		if err != nil {
			return &types.DataFormatError{File: file, Sheet: sheet, Row: rowNum, Column: "Time", Reason: err.Error()}
		}
		start := b.date.Add(clock)
		if seen[start] {
			return &types.DataFormatError{File: file, Sheet: sheet, Row: rowNum, Column: "Time",
				Reason: fmt.Sprintf("duplicate interval %s", start.Format("15:04"))}
		}
		seen[start] = true

		counts, ok := b.counts[start]
		if !ok {
			counts = make(map[entity.CountKey]int, len(cols))
			b.counts[start] = counts
		}
		for _, hc := range cols {
			n, err := parseCount(cell(row, hc.Index))
			if err != nil {
				return &types.DataFormatError{File: file, Sheet: sheet, Row: rowNum, Column: hc.Column.Heading(), Reason: err.Error()}
			}
			counts[hc.Column.Key] = n
		}
	}

	for _, hc := range cols {
		b.columns = append(b.columns, hc.Column)
	}
	b.tabs = append(b.tabs, tabStarts{sheet: sheet, starts: seen})
	return nil
}

// checkCoverage requires every class tab to carry the same interval starts,
// so no tab ends up with counts it never had.
func (b *runBuilder) checkCoverage(file string) error {
	starts := make([]time.Time, 0, len(b.counts))
	for t := range b.counts {
		starts = append(starts, t)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	for _, tab := range b.tabs {
		for _, t := range starts {
			if !tab.starts[t] {
				return &types.DataFormatError{File: file, Sheet: tab.sheet, Column: "Time",
					Reason: fmt.Sprintf("interval %s missing from %s", t.Format("15:04"), tab.sheet)}
			}
		}
	}
	return nil
}

func (b *runBuilder) build(loc entity.Location) entity.Run {
	starts := make([]time.Time, 0, len(b.counts))
	for t := range b.counts {
		starts = append(starts, t)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	step := 15 * time.Minute
	var smallest time.Duration
	for i := 1; i < len(starts); i++ {
		if d := starts[i].Sub(starts[i-1]); smallest == 0 || d < smallest {
			smallest = d
		}
	}
	if smallest > 0 {
		step = smallest
	}

	intervals := make([]entity.RawInterval, 0, len(starts))
	for _, t := range starts {
		intervals = append(intervals, entity.RawInterval{Start: t, Duration: step, Counts: b.counts[t]})
	}

	return entity.Run{Location: loc, Columns: b.columns, Intervals: intervals}
}
