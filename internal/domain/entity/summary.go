package entity

import "time"

// Period splits a count day into morning and afternoon peaks.
type Period string

const (
	PeriodAM Period = "AM"
	PeriodPM Period = "PM"
)

// IntervalRow is one interval of a summary table.
type IntervalRow struct {
	Start  time.Time `json:"start"`
	Counts []int     `json:"counts"`
	Total  int       `json:"total_15_min"`
	Hourly int       `json:"total_hourly"`
}

// DirectionTotal sums every column of an approach.
type DirectionTotal struct {
	Direction Direction `json:"direction"`
	Total     int       `json:"total"`
	PeakTotal int       `json:"peak_total"`
}

// PeakWindow is the highest-volume run of consecutive intervals.
type PeakWindow struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	FirstRow     int       `json:"first_row"`
	LastRow      int       `json:"last_row"`
	Count        int       `json:"count"`
	MaxInterval  int       `json:"max_interval"`
	Factor       float64   `json:"peak_hour_factor"`
	ColumnTotals []int     `json:"column_totals"`
}

// Text renders the window as "07:15 to 08:15".
func (p *PeakWindow) Text() string {
	if p == nil {
		return "n/a"
	}
	return p.Start.Format("15:04") + " to " + p.End.Format("15:04")
}

// Contains reports whether row i of the table falls inside the window.
func (p *PeakWindow) Contains(i int) bool {
	return p != nil && i >= p.FirstRow && i <= p.LastRow
}

// SummaryTable aggregates one category of one run.
type SummaryTable struct {
	LocationID   string           `json:"location_id"`
	Category     Category         `json:"category"`
	Columns      []Column         `json:"columns"`
	Rows         []IntervalRow    `json:"rows"`
	ColumnTotals []int            `json:"column_totals"`
	Directions   []DirectionTotal `json:"directions"`
	GrandTotal   int              `json:"grand_total"`
	Peak         *PeakWindow      `json:"peak,omitempty"`
	AMPeak       *PeakWindow      `json:"am_peak,omitempty"`
	PMPeak       *PeakWindow      `json:"pm_peak,omitempty"`
}

// PeriodPeak returns the AM or PM peak of the table.
func (t *SummaryTable) PeriodPeak(p Period) *PeakWindow {
	if p == PeriodAM {
		return t.AMPeak
	}
	return t.PMPeak
}

// DirectionShare is the heavy-vehicle percentage of an approach at the peak hour.
type DirectionShare struct {
	Direction    Direction `json:"direction"`
	HeavyPercent float64   `json:"heavy_percent"`
}

// HeavyRow is the heavy-vehicle percentage of one interval, per movement
// column and over the whole interval.
type HeavyRow struct {
	Start   time.Time `json:"start"`
	Percent []float64 `json:"percent"`
	Total   float64   `json:"total"`
}

// PeakDetail breaks an AM or PM peak hour of the Total Vehicles table down by
// movement column.
type PeakDetail struct {
	Period       Period    `json:"period"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Factor       float64   `json:"peak_hour_factor"`
	Totals       []int     `json:"totals"`
	HeavyPercent []float64 `json:"heavy_percent"`
	Total        int       `json:"total"`
	TotalHeavy   float64   `json:"total_heavy_percent"`
}

// Text renders the peak as "07:15 to 08:15".
func (d PeakDetail) Text() string {
	return d.Start.Format("15:04") + " to " + d.End.Format("15:04")
}

// HeavyBreakdown is the heavy-vehicle percentage of a run per interval and
// per period peak. Columns are the Total Vehicles columns that have a Light
// Vehicles counterpart.
type HeavyBreakdown struct {
	Columns []Column     `json:"columns"`
	Rows    []HeavyRow   `json:"rows"`
	Peaks   []PeakDetail `json:"peaks,omitempty"`
}

// Peak returns the detail of a period peak, if there is one.
func (h *HeavyBreakdown) Peak(p Period) (PeakDetail, bool) {
	if h == nil {
		return PeakDetail{}, false
	}
	for _, d := range h.Peaks {
		if d.Period == p {
			return d, true
		}
	}
	return PeakDetail{}, false
}

// RunSummary collects the tables built from a single run.
type RunSummary struct {
	Location   Location         `json:"location"`
	Tables     []SummaryTable   `json:"tables"`
	HeavyShare []DirectionShare `json:"heavy_share,omitempty"`
	Heavy      *HeavyBreakdown  `json:"heavy,omitempty"`
}

// Table returns the table of a category, or nil.
func (rs *RunSummary) Table(cat Category) *SummaryTable {
	for i := range rs.Tables {
		if rs.Tables[i].Category == cat {
			return &rs.Tables[i]
		}
	}
	return nil
}

// ReferenceTable is the table peaks are reported from: Total Vehicles when
// the file has it, otherwise the first vehicle table.
func (rs *RunSummary) ReferenceTable() *SummaryTable {
	for _, cat := range []Category{CategoryTotal, CategoryLight, CategoryHeavy} {
		if t := rs.Table(cat); t != nil {
			return t
		}
	}
	if len(rs.Tables) > 0 {
		return &rs.Tables[0]
	}
	return nil
}

// NetworkPeak is the median peak start across all locations of a period.
type NetworkPeak struct {
	Period Period        `json:"period"`
	Start  time.Duration `json:"start"`
	End    time.Duration `json:"end"`
}

// Text renders the network peak as "07:15 to 08:15".
func (np NetworkPeak) Text() string {
	return clock(np.Start) + " to " + clock(np.End)
}

func clock(d time.Duration) string {
	return time.Time{}.Add(d).Format("15:04")
}

// Report is the full output of one summarize call.
type Report struct {
	Categories   []Category    `json:"categories"`
	Runs         []RunSummary  `json:"runs"`
	NetworkPeaks []NetworkPeak `json:"network_peaks,omitempty"`
}

// NetworkPeak returns the network peak of a period, if one was found.
func (r *Report) NetworkPeak(p Period) (NetworkPeak, bool) {
	for _, np := range r.NetworkPeaks {
		if np.Period == p {
			return np, true
		}
	}
	return NetworkPeak{}, false
}
