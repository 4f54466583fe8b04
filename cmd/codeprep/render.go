package main

import (
	"fmt"
	"strings"
	"time"

	"codeprep-cli/internal/profile"
	"codeprep-cli/internal/resource"
	"codeprep-cli/internal/submission"
)

var levelGlyphs = map[profile.HeatLevel]rune{
	profile.LevelEmpty: '·',
	profile.LevelTier1: '░',
	profile.LevelTier2: '▒',
	profile.LevelTier3: '▓',
	profile.LevelTier4: '█',
}

func renderProfileHeader(snap resource.Snapshot[profile.Profile], own bool) {
	if snap.State == resource.StateFailed {
		fmt.Printf("profile: %s\n", snap.Err)
		return
	}
	p := snap.Data
	name := p.Name
	if name == "" {
		name = p.Username
	}
	fmt.Printf("%s (@%s)", name, p.Username)
	if own {
		fmt.Print("  [you]")
	}
	fmt.Println()
	if p.Bio != "" {
		fmt.Println(p.Bio)
	}
	if p.Location != "" {
		fmt.Println(p.Location)
	}
	fmt.Printf("followers %d · following %d · streak %d (best %d)\n",
		p.FollowersCount, p.FollowingCount, p.CurrentStreak, p.LongestStreak)
	for _, b := range p.Badges {
		fmt.Printf("  %s %s — %s\n", b.Icon, b.Name, b.Description)
	}
	fmt.Println()
}

func renderStatsCard(snap resource.Snapshot[profile.ProblemStats]) {
	fmt.Println("Solved problems")
	if snap.State == resource.StateFailed {
		fmt.Printf("  %s\n\n", snap.Err)
		return
	}
	s := snap.Data
	arcs := profile.DifficultyArcs(s)
	rows := []struct {
		label string
		prog  profile.DifficultyProgress
		arc   profile.Arc
	}{
		{"easy", s.Easy, arcs[0]},
		{"medium", s.Medium, arcs[1]},
		{"hard", s.Hard, arcs[2]},
	}
	for _, r := range rows {
		pct := profile.Percentage(r.prog.Solved, r.prog.Total)
		fmt.Printf("  %-6s %4d/%-4d %3d%%  %s  ring %.0f°+%.0f°\n",
			r.label, r.prog.Solved, r.prog.Total, pct, bar(pct), r.arc.Start, r.arc.Sweep)
	}
	fmt.Printf("  submissions %d, accepted %d (%.1f%%)\n\n",
		s.TotalSubmissions, s.AcceptedSubmissions, s.AcceptanceRate)
}

func bar(pct int) string {
	filled := pct / 5
	return strings.Repeat("█", filled) + strings.Repeat("·", 20-filled)
}

func renderHeatmapCard(snap resource.Snapshot[[]profile.HeatmapEntry], year int) {
	fmt.Printf("Activity %d\n", year)
	if snap.State == resource.StateFailed {
		fmt.Printf("  %s\n\n", snap.Err)
		return
	}
	weeks := profile.BuildCalendar(year, profile.CountsByDate(snap.Data), time.Now().UTC())
	for row := 0; row < 7; row++ {
		var sb strings.Builder
		sb.WriteString("  ")
		for _, week := range weeks {
			day := week[row]
			if day.Placeholder {
				sb.WriteRune(' ')
			} else {
				sb.WriteRune(levelGlyphs[day.Level])
			}
		}
		fmt.Println(sb.String())
	}
	fmt.Println()
}

func renderRecentCard(snap resource.Snapshot[[]submission.Submission]) {
	fmt.Println("Recent submissions")
	if snap.State == resource.StateFailed {
		fmt.Printf("  %s\n\n", snap.Err)
		return
	}
	if len(snap.Data) == 0 {
		fmt.Println("  none yet")
		fmt.Println()
		return
	}
	for _, s := range snap.Data {
		fmt.Printf("  %s\n", formatSubmission(s))
	}
	fmt.Println()
}

func formatSubmission(s submission.Submission) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-20s %-10s %s", s.Problem.Title, s.Language, s.Status)
	if s.RuntimeMS != nil {
		fmt.Fprintf(&sb, " %dms", *s.RuntimeMS)
	}
	if s.MemoryKB != nil {
		fmt.Fprintf(&sb, " %dKB", *s.MemoryKB)
	}
	if !s.SubmittedAt.IsZero() {
		fmt.Fprintf(&sb, "  %s", s.SubmittedAt.Local().Format("Jan 2 15:04"))
	}
	return sb.String()
}
