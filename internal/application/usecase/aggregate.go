package usecase

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/diillson/tmc-summarizer-go/internal/domain/entity"
	"github.com/diillson/tmc-summarizer-go/internal/shared/types"
)

// AggregateOptions controls the peak search.
type AggregateOptions struct {
	// WindowSize is the number of consecutive intervals in a peak window.
	WindowSize int
	// SplitHour separates AM from PM peaks, by the start of a window's last interval.
	SplitHour int
	// Progress, when set, is called after each run is aggregated.
	Progress func(loc entity.Location)
}

func (o AggregateOptions) withDefaults() AggregateOptions {
	if o.WindowSize <= 0 {
		o.WindowSize = types.DefaultPeakWindow
	}
	if o.SplitHour <= 0 || o.SplitHour > 23 {
		o.SplitHour = types.DefaultSplitHour
	}
	return o
}

// Aggregate builds one summary table per category present in the run.
func Aggregate(run *entity.Run, opts AggregateOptions) ([]entity.SummaryTable, error) {
	if len(run.Intervals) == 0 {
		return nil, types.EmptyInputError(run.Location.SourceFile)
	}
	opts = opts.withDefaults()

	var tables []entity.SummaryTable
	for _, cat := range entity.Categories {
		cols := run.CategoryColumns(cat)
		if len(cols) == 0 {
			continue
		}
		tables = append(tables, buildTable(run, cat, cols, opts))
	}
	return tables, nil
}

func buildTable(run *entity.Run, cat entity.Category, cols []entity.Column, opts AggregateOptions) entity.SummaryTable {
	step := run.Step()
	table := entity.SummaryTable{
		LocationID:   run.Location.ID,
		Category:     cat,
		Columns:      cols,
		Rows:         make([]entity.IntervalRow, len(run.Intervals)),
		ColumnTotals: make([]int, len(cols)),
	}

	for i, iv := range run.Intervals {
		row := entity.IntervalRow{Start: iv.Start, Counts: make([]int, len(cols))}
		for j, c := range cols {
			n := iv.Counts[c.Key]
			row.Counts[j] = n
			row.Total += n
			table.ColumnTotals[j] += n
		}
		table.GrandTotal += row.Total
		table.Rows[i] = row
	}

	// Hourly totals look back over the window, stopping at gaps.
	for i := range table.Rows {
		sum := table.Rows[i].Total
		for k := i - 1; k >= 0 && i-k < opts.WindowSize; k-- {
			if table.Rows[k+1].Start.Sub(table.Rows[k].Start) != step {
				break
			}
			sum += table.Rows[k].Total
		}
		table.Rows[i].Hourly = sum
	}

	split := time.Duration(opts.SplitHour) * time.Hour
	table.Peak = findPeak(table.Rows, step, opts.WindowSize, nil)
	table.AMPeak = findPeak(table.Rows, step, opts.WindowSize, func(last time.Time) bool { return timeOfDay(last) < split })
	table.PMPeak = findPeak(table.Rows, step, opts.WindowSize, func(last time.Time) bool { return timeOfDay(last) >= split })

	table.Directions = directionTotals(cols, table.ColumnTotals, table.Peak)
	return table
}

// findPeak slides a window of size consecutive intervals over rows and keeps
// the highest total. Windows spanning a gap are skipped; ties keep the
// earliest start. accept filters windows by the start of their last interval.
func findPeak(rows []entity.IntervalRow, step time.Duration, size int, accept func(last time.Time) bool) *entity.PeakWindow {
	var best *entity.PeakWindow

	for i := 0; i+size <= len(rows); i++ {
		window := rows[i : i+size]
		if !contiguous(window, step) {
			continue
		}
		last := window[size-1].Start
		if accept != nil && !accept(last) {
			continue
		}

		sum, maxInterval := 0, 0
		for _, r := range window {
			sum += r.Total
			if r.Total > maxInterval {
				maxInterval = r.Total
			}
		}
		if best != nil && sum <= best.Count {
			continue
		}
		best = &entity.PeakWindow{
			Start:       window[0].Start,
			End:         last.Add(step),
			FirstRow:    i,
			LastRow:     i + size - 1,
			Count:       sum,
			MaxInterval: maxInterval,
		}
	}

	if best == nil {
		return nil
	}

	if best.MaxInterval > 0 {
		best.Factor = float64(best.Count) / float64(size*best.MaxInterval)
	}
	width := len(rows[best.FirstRow].Counts)
	best.ColumnTotals = make([]int, width)
	for _, r := range rows[best.FirstRow : best.LastRow+1] {
		for j, n := range r.Counts {
			best.ColumnTotals[j] += n
		}
	}
	return best
}

func contiguous(rows []entity.IntervalRow, step time.Duration) bool {
	for k := 1; k < len(rows); k++ {
		if rows[k].Start.Sub(rows[k-1].Start) != step {
			return false
		}
	}
	return true
}

func timeOfDay(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second
}

func directionTotals(cols []entity.Column, totals []int, peak *entity.PeakWindow) []entity.DirectionTotal {
	var out []entity.DirectionTotal
	for _, d := range entity.Directions {
		dt := entity.DirectionTotal{Direction: d}
		present := false
		for j, c := range cols {
			if c.Key.Direction != d {
				continue
			}
			present = true
			dt.Total += totals[j]
			if peak != nil {
				dt.PeakTotal += peak.ColumnTotals[j]
			}
		}
		if present {
			out = append(out, dt)
		}
	}
	return out
}

// BuildReport aggregates every run and derives the cross-location figures.
func BuildReport(runs []entity.Run, opts AggregateOptions) (*entity.Report, error) {
	if len(runs) == 0 {
		return nil, types.EmptyInputError("no count files")
	}
	opts = opts.withDefaults()

	report := &entity.Report{}
	present := make(map[entity.Category]bool)

	for i := range runs {
		tables, err := Aggregate(&runs[i], opts)
		if err != nil {
			return nil, err
		}
		for _, t := range tables {
			present[t.Category] = true
		}
		rs := entity.RunSummary{Location: runs[i].Location, Tables: tables}
		rs.HeavyShare = heavyShare(&runs[i], &rs)
		rs.Heavy = heavyBreakdown(&rs)
		report.Runs = append(report.Runs, rs)
		if opts.Progress != nil {
			opts.Progress(runs[i].Location)
		}
	}

	for _, cat := range entity.Categories {
		if present[cat] {
			report.Categories = append(report.Categories, cat)
		}
	}

	for _, p := range []entity.Period{entity.PeriodAM, entity.PeriodPM} {
		if np, ok := networkPeak(report.Runs, p); ok {
			report.NetworkPeaks = append(report.NetworkPeaks, np)
		}
	}
	return report, nil
}

// heavyShare is the heavy-vehicle percentage per approach over the Total
// Vehicles peak hour, 100 × (1 − light / total).
func heavyShare(run *entity.Run, rs *entity.RunSummary) []entity.DirectionShare {
	total := rs.Table(entity.CategoryTotal)
	light := rs.Table(entity.CategoryLight)
	if total == nil || light == nil || total.Peak == nil {
		return nil
	}

	lightPeak := make(map[entity.Direction]int)
	for _, r := range light.Rows[total.Peak.FirstRow : total.Peak.LastRow+1] {
		for j, n := range r.Counts {
			lightPeak[light.Columns[j].Key.Direction] += n
		}
	}

	var shares []entity.DirectionShare
	for _, dt := range total.Directions {
		share := entity.DirectionShare{Direction: dt.Direction}
		share.HeavyPercent = heavyPercent(lightPeak[dt.Direction], dt.PeakTotal)
		shares = append(shares, share)
	}
	return shares
}

// movementKey matches columns of different class tabs.
type movementKey struct {
	direction entity.Direction
	movement  entity.Movement
}

func movementOf(c entity.Column) movementKey {
	return movementKey{direction: c.Key.Direction, movement: c.Key.Movement}
}

// heavyPercent is 100 × (1 − light / total), or 0 when nothing was counted.
func heavyPercent(light, total int) float64 {
	if total == 0 {
		return 0
	}
	return (1 - float64(light)/float64(total)) * 100
}

// heavyBreakdown computes the heavy-vehicle percentage of every Total
// Vehicles column that has a Light Vehicles counterpart, per interval and
// over the AM and PM peak hours.
func heavyBreakdown(rs *entity.RunSummary) *entity.HeavyBreakdown {
	total := rs.Table(entity.CategoryTotal)
	light := rs.Table(entity.CategoryLight)
	if total == nil || light == nil {
		return nil
	}

	lightCol := make(map[movementKey]int, len(light.Columns))
	for j, c := range light.Columns {
		lightCol[movementOf(c)] = j
	}

	// pairs[k] holds the total and light column index of breakdown column k.
	var pairs [][2]int
	hb := &entity.HeavyBreakdown{}
	for j, c := range total.Columns {
		if k, ok := lightCol[movementOf(c)]; ok {
			pairs = append(pairs, [2]int{j, k})
			hb.Columns = append(hb.Columns, c)
		}
	}
	if len(pairs) == 0 {
		return nil
	}

	for i, r := range total.Rows {
		lr := light.Rows[i]
		row := entity.HeavyRow{Start: r.Start, Percent: make([]float64, len(pairs))}
		var t, l int
		for k, p := range pairs {
			row.Percent[k] = heavyPercent(lr.Counts[p[1]], r.Counts[p[0]])
			t += r.Counts[p[0]]
			l += lr.Counts[p[1]]
		}
		row.Total = heavyPercent(l, t)
		hb.Rows = append(hb.Rows, row)
	}

	for _, period := range []entity.Period{entity.PeriodAM, entity.PeriodPM} {
		peak := total.PeriodPeak(period)
		if peak == nil {
			continue
		}
		d := entity.PeakDetail{
			Period:       period,
			Start:        peak.Start,
			End:          peak.End,
			Factor:       peak.Factor,
			Totals:       make([]int, len(pairs)),
			HeavyPercent: make([]float64, len(pairs)),
		}
		lights := make([]int, len(pairs))
		for i := peak.FirstRow; i <= peak.LastRow; i++ {
			for k, p := range pairs {
				d.Totals[k] += total.Rows[i].Counts[p[0]]
				lights[k] += light.Rows[i].Counts[p[1]]
			}
		}
		var l int
		for k := range pairs {
			d.HeavyPercent[k] = heavyPercent(lights[k], d.Totals[k])
			d.Total += d.Totals[k]
			l += lights[k]
		}
		d.TotalHeavy = heavyPercent(l, d.Total)
		hb.Peaks = append(hb.Peaks, d)
	}
	return hb
}

// networkPeak takes the median start of each location's period peak. The
// empirical quantile always picks an observed start, so the network window
// stays aligned to the count intervals.
func networkPeak(runs []entity.RunSummary, p entity.Period) (entity.NetworkPeak, bool) {
	type start struct {
		offset time.Duration
		length time.Duration
	}
	var starts []start
	for i := range runs {
		ref := runs[i].ReferenceTable()
		if ref == nil {
			continue
		}
		if peak := ref.PeriodPeak(p); peak != nil {
			starts = append(starts, start{offset: timeOfDay(peak.Start), length: peak.End.Sub(peak.Start)})
		}
	}
	if len(starts) == 0 {
		return entity.NetworkPeak{}, false
	}

	sort.Slice(starts, func(i, j int) bool { return starts[i].offset < starts[j].offset })
	seconds := make([]float64, len(starts))
	for i, s := range starts {
		seconds[i] = s.offset.Seconds()
	}
	median := stat.Quantile(0.5, stat.Empirical, seconds, nil)

	for _, s := range starts {
		if s.offset.Seconds() == median {
			return entity.NetworkPeak{Period: p, Start: s.offset, End: s.offset + s.length}, true
		}
	}
	return entity.NetworkPeak{}, false
}
