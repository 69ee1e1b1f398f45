package overlap

import (
	"fmt"
	"math"
	"sort"
	"time"

	"session-analyzer/models"
)

// Detect finds every day in the snapshot on which at least two session
// time windows intersect and quantifies the capacity pressure for those
// days against the resolved seat capacity.
//
// Overlap hours are the sum of all pairwise intersections: a region
// where three sessions overlap is counted once per pair, so the total
// can exceed the wall-clock overlap span. This is a known
// characteristic of the measure, kept for parity with the historical
// reports, not a defect.
//
// Reports are returned most capacity-critical first (descending excess
// candidates; equally-critical days stay in date order). Time strings
// are assumed well-formed by the time sessions reach this package.
func Detect(sessions []models.Session, capacity int) []models.OverlapReport {
	byDay := make(map[string][]models.Session)
	dayOrder := make([]string, 0)
	for _, s := range sessions {
		key := s.Date.Format("2006-01-02")
		if _, seen := byDay[key]; !seen {
			dayOrder = append(dayOrder, key)
		}
		byDay[key] = append(byDay[key], s)
	}
	sort.Strings(dayOrder)

	reports := make([]models.OverlapReport, 0)
	for _, key := range dayOrder {
		day := byDay[key]
		// A single session cannot overlap anything.
		if len(day) < 2 {
			continue
		}

		// Stable sort keeps input order for equal start times; the
		// suggestion text references the first session of the day.
		sorted := make([]models.Session, len(day))
		copy(sorted, day)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Start.Before(sorted[j].Start)
		})

		overlapHours := 0.0
		found := false
		for i := 0; i < len(sorted); i++ {
			for j := i + 1; j < len(sorted); j++ {
				start := laterOf(sorted[i].Start, sorted[j].Start)
				end := earlierOf(sorted[i].End, sorted[j].End)
				if start.Before(end) {
					found = true
					overlapHours += end.Sub(start).Hours()
				}
			}
		}
		if !found {
			continue
		}

		// Candidate load counts every session that day, not only the
		// overlapping ones: all of them draw on the same seats.
		totalCandidates := 0
		latestEnd := sorted[0].End
		for _, s := range sorted {
			totalCandidates += s.Candidates
			if s.End.After(latestEnd) {
				latestEnd = s.End
			}
		}

		excess := totalCandidates - capacity
		if excess < 0 {
			excess = 0
		}
		overlapHours = math.Round(overlapHours*10) / 10

		reports = append(reports, models.OverlapReport{
			Date:             sorted[0].Date,
			Sessions:         sorted,
			OverlapHours:     overlapHours,
			TotalCandidates:  totalCandidates,
			Capacity:         capacity,
			ExcessCandidates: excess,
			Suggestions:      suggest(sorted, overlapHours, excess, latestEnd),
		})
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].ExcessCandidates > reports[j].ExcessCandidates
	})

	return reports
}

// suggest produces the day's scheduling recommendations in a fixed
// order. A day can trigger none of them and still report its overlap.
func suggest(sorted []models.Session, overlapHours float64, excess int, latestEnd time.Time) []string {
	suggestions := make([]string, 0)
	first := sorted[0]

	if excess > 0 {
		early := int(math.Ceil(float64(excess) / 2))
		suggestions = append(suggestions, fmt.Sprintf(
			"Start early check-in for %s: process %d candidate(s) before the scheduled start",
			first.ExamName, early))
	}

	closing := time.Date(first.Date.Year(), first.Date.Month(), first.Date.Day(), 17, 0, 0, 0, time.UTC)
	if !latestEnd.After(closing) && excess > 0 {
		suggestions = append(suggestions,
			"Extend operating hours beyond 17:00 to spread candidates across a longer day")
	}

	if overlapHours >= 1 {
		suggestions = append(suggestions, fmt.Sprintf(
			"Stagger session start times by %d+ hour(s) to reduce the overlap window",
			int(math.Ceil(overlapHours))))
	}

	return suggestions
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
