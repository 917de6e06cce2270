package entity

import "time"

// Location holds the metadata of one count station, read from the Information tab.
type Location struct {
	ID         string               `json:"location_id"`
	Name       string               `json:"location_name"`
	City       string               `json:"city,omitempty"`
	Legs       map[Direction]string `json:"legs,omitempty"`
	Date       time.Time            `json:"date"`
	StartTime  string               `json:"start_time,omitempty"`
	EndTime    string               `json:"end_time,omitempty"`
	SourceFile string               `json:"source_file"`
}

// Title returns "<id> - <name>", or just the id when no name was recorded.
func (l Location) Title() string {
	if l.Name == "" {
		return l.ID
	}
	return l.ID + " - " + l.Name
}

// CountPeriod renders the observed time span, e.g. "07:00 to 09:00".
func (l Location) CountPeriod() string {
	if l.StartTime == "" && l.EndTime == "" {
		return ""
	}
	return l.StartTime + " to " + l.EndTime
}

// Run is one observation run: a single count file and its ordered intervals.
type Run struct {
	Location  Location
	Columns   []Column
	Intervals []RawInterval
}

// Step returns the interval duration of the run, defaulting to 15 minutes.
func (r *Run) Step() time.Duration {
	if len(r.Intervals) > 0 && r.Intervals[0].Duration > 0 {
		return r.Intervals[0].Duration
	}
	return 15 * time.Minute
}

// CategoryColumns returns the columns routed to the category, in file order.
func (r *Run) CategoryColumns(cat Category) []Column {
	var cols []Column
	for _, c := range r.Columns {
		if got, ok := c.Key.Category(); ok && got == cat {
			cols = append(cols, c)
		}
	}
	return cols
}
