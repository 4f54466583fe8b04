package profile

import "math"

// Percentage returns round(solved/total*100), and 0 when total is 0 so an
// empty category never divides by zero.
func Percentage(solved, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(solved) / float64(total) * 100))
}

// Arc is one span of the circular progress ring, in degrees.
type Arc struct {
	Start float64 `json:"start"`
	Sweep float64 `json:"sweep"`
}

// DifficultyArcs lays the easy/medium/hard percentages sequentially around
// the ring. Each difficulty owns a 120-degree third; its sweep is its
// percentage of that third, and each subsequent arc starts at the cumulative
// sum of the prior sweeps. Percentages are capped at 100, so the spans never
// overlap and never total more than 360 degrees.
func DifficultyArcs(stats ProblemStats) [3]Arc {
	pcts := [3]int{
		clampPct(Percentage(stats.Easy.Solved, stats.Easy.Total)),
		clampPct(Percentage(stats.Medium.Solved, stats.Medium.Total)),
		clampPct(Percentage(stats.Hard.Solved, stats.Hard.Total)),
	}

	var arcs [3]Arc
	offset := 0.0
	for i, pct := range pcts {
		sweep := float64(pct) / 100 * 360 / 3
		arcs[i] = Arc{Start: offset, Sweep: sweep}
		offset += sweep
	}
	return arcs
}

func clampPct(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
