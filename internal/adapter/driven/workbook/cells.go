package workbook

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04:05 PM",
	"3:04PM",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006.01.02",
	"Jan 2, 2006",
	"January 2, 2006",
	"Monday, January 2, 2006",
}

// parseClock reads a time of day. Excel stores times as fractions of a day,
// optionally on top of a date serial; text cells use clock notation.
func parseClock(raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("blank time")
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 0 {
			return 0, fmt.Errorf("negative time %q", raw)
		}
		minutes := math.Round((f - math.Floor(f)) * 24 * 60)
		if minutes >= 24*60 {
			minutes = 0
		}
		return time.Duration(minutes) * time.Minute, nil
	}

	upper := strings.ToUpper(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("unrecognized time %q", raw)
}

// parseDate reads the count date and drops any time component.
func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date serial %q: %w", raw, err)
		}
		return midnight(t), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return midnight(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// clockText normalizes a time cell to "HH:MM", keeping unparseable text as is.
func clockText(raw string) string {
	d, err := parseClock(raw)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return time.Time{}.Add(d).Format("15:04")
}

// parseCount reads a non-negative whole count. Blank cells are an error:
// a missing count is never treated as zero.
func parseCount(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("blank count")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative count %d", n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("count %q is not a whole number", raw)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative count %q", raw)
	}
	return int(f), nil
}
