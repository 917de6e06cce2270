package workbook

import (
	"fmt"
	"strings"

	"github.com/diillson/tmc-summarizer-go/internal/domain/entity"
	"github.com/diillson/tmc-summarizer-go/internal/shared/types"
)

// headerRows is the number of rows above the data: a title, the approach
// level and the movement level.
const headerRows = 3

var approachLabels = map[string]entity.Direction{
	"southbound": entity.Southbound,
	"westbound":  entity.Westbound,
	"northbound": entity.Northbound,
	"eastbound":  entity.Eastbound,
}

// movementLabels maps the lower-cased movement header to its column. The
// "croswalk" spellings show up on real field sheets.
var movementLabels = map[string]entity.Movement{
	"u turns":            entity.UTurn,
	"left turns":         entity.LeftTurn,
	"straight through":   entity.Through,
	"right turns":        entity.RightTurn,
	"peds in crosswalk":  entity.PedsCrosswalk,
	"peds in croswalk":   entity.PedsCrosswalk,
	"bikes in crosswalk": entity.BikesCrosswalk,
	"bikes in croswalk":  entity.BikesCrosswalk,
}

// requiredMovements must be present on every approach of a tab.
var requiredMovements = []entity.Movement{entity.LeftTurn, entity.Through, entity.RightTurn}

var movementHeadings = map[entity.Movement]string{
	entity.LeftTurn:  "Left Turns",
	entity.Through:   "Straight Through",
	entity.RightTurn: "Right Turns",
}

// headerColumn ties a count column to its position in the sheet.
type headerColumn struct {
	Index  int
	Column entity.Column
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// parseHeaders flattens the two-level header of a class tab and validates it
// against the fixed column schema.
func parseHeaders(rows [][]string, class entity.VehicleClass, file, sheet string) ([]headerColumn, error) {
	fail := func(row int, column, reason string) error {
		return &types.DataFormatError{File: file, Sheet: sheet, Row: row, Column: column, Reason: reason}
	}

	if len(rows) < headerRows {
		return nil, fail(0, "", "missing the approach and movement header rows")
	}
	level1, level2 := rows[1], rows[2]

	if first := cell(level2, 0); normalizeLabel(first) != "time" {
		return nil, fail(3, first, "first column must be Time")
	}

	var (
		cols       []headerColumn
		current    entity.Direction
		approach   bool
		seen       = make(map[entity.CountKey]bool)
		approaches []entity.Direction
	)

	for i := 1; i < len(level2) || i < len(level1); i++ {
		if l1 := strings.TrimSpace(cell(level1, i)); l1 != "" {
			d, ok := approachLabels[normalizeLabel(l1)]
			if !ok {
				return nil, fail(2, l1, "unknown approach")
			}
			current, approach = d, true
			approaches = append(approaches, d)
		}

		label := strings.TrimSpace(cell(level2, i))
		if label == "" {
			continue
		}
		m, ok := movementLabels[normalizeLabel(label)]
		if !ok {
			return nil, fail(3, label, "unknown movement")
		}
		if !approach {
			return nil, fail(3, label, "count column before any approach header")
		}

		key := entity.CountKey{Class: class, Direction: current, Movement: m}
		if seen[key] {
			return nil, fail(3, label, fmt.Sprintf("duplicate %s column", current.Label()))
		}
		seen[key] = true
		cols = append(cols, headerColumn{Index: i, Column: entity.Column{Key: key, Label: label}})
	}

	if len(cols) == 0 {
		return nil, fail(3, "", "no count columns")
	}

	for _, d := range approaches {
		for _, m := range requiredMovements {
			if !seen[entity.CountKey{Class: class, Direction: d, Movement: m}] {
				return nil, fail(3, d.Label()+" / "+movementHeadings[m], "missing required column")
			}
		}
	}

	return cols, nil
}
