package profile

import "time"

// HeatLevel is the color bucket for one calendar cell.
type HeatLevel int

const (
	LevelEmpty HeatLevel = iota
	LevelTier1
	LevelTier2
	LevelTier3
	LevelTier4
)

// LevelFor maps a daily submission count to its color bucket.
func LevelFor(count int) HeatLevel {
	switch {
	case count <= 0:
		return LevelEmpty
	case count <= 2:
		return LevelTier1
	case count <= 5:
		return LevelTier2
	case count <= 10:
		return LevelTier3
	default:
		return LevelTier4
	}
}

const dateLayout = "2006-01-02"

// CalendarDay is one cell of the activity calendar. Placeholder cells pad
// the leading and trailing partial weeks and carry no date.
type CalendarDay struct {
	Date        time.Time
	Count       int
	Level       HeatLevel
	Placeholder bool
}

// CalendarWeek is one Sunday-aligned column of seven cells.
type CalendarWeek [7]CalendarDay

// CountsByDate flattens heatmap entries into the sparse count map the
// binner consumes.
func CountsByDate(entries []HeatmapEntry) map[string]int {
	counts := make(map[string]int, len(entries))
	for _, e := range entries {
		counts[e.Date] = e.Count
	}
	return counts
}

// BuildCalendar bins a year's sparse counts into week-aligned columns:
// every date from Jan 1 through Dec 31 — or through today when year is the
// current year — left-padded to Sunday alignment and chunked into groups
// of seven, with the trailing partial week right-padded. Pure function of
// its inputs; counts is never mutated.
func BuildCalendar(year int, counts map[string]int, today time.Time) []CalendarWeek {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	if year == today.Year() {
		end = time.Date(year, today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	}

	offset := int(start.Weekday()) // Sunday = 0
	cells := make([]CalendarDay, 0, offset+366)
	for i := 0; i < offset; i++ {
		cells = append(cells, CalendarDay{Placeholder: true})
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		count := counts[d.Format(dateLayout)]
		cells = append(cells, CalendarDay{
			Date:  d,
			Count: count,
			Level: LevelFor(count),
		})
	}
	for len(cells)%7 != 0 {
		cells = append(cells, CalendarDay{Placeholder: true})
	}

	weeks := make([]CalendarWeek, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		var week CalendarWeek
		copy(week[:], cells[i:i+7])
		weeks = append(weeks, week)
	}
	return weeks
}

// YearBounds returns the selectable year range: the current year and the
// two prior years.
func YearBounds(today time.Time) (min, max int) {
	return today.Year() - 2, today.Year()
}

// YearNav is the heatmap's year selector; navigation clamps at both ends
// of the selectable range.
type YearNav struct {
	year int
	min  int
	max  int
}

func NewYearNav(today time.Time) *YearNav {
	min, max := YearBounds(today)
	return &YearNav{year: max, min: min, max: max}
}

func (n *YearNav) Current() int {
	return n.year
}

func (n *YearNav) Prev() int {
	if n.year > n.min {
		n.year--
	}
	return n.year
}

func (n *YearNav) Next() int {
	if n.year < n.max {
		n.year++
	}
	return n.year
}
