// Package report aggregates session snapshots by canonical client,
// branch, and month-local week for billing and volume reporting.
package report

import (
	"sort"
	"strings"
	"time"

	"session-analyzer/models"
)

// FallbackBranch receives sessions with no branch assignment, matching
// the default location used elsewhere for legacy records.
const FallbackBranch = "calicut"

// fallbackClient is the catch-all bucket for names no rule matches.
const fallbackClient = "OTHER"

// clientRules maps free-text client names onto canonical identities by
// case-insensitive substring match, evaluated top to bottom. First
// match wins; every name falls through to the OTHER bucket at worst.
var clientRules = []struct {
	substr    string
	canonical string
}{
	{"PEARSON", "PEARSON"},
	{"VUE", "PEARSON"},
	{"PSI", "PSI"},
	{"PROMETRIC", "PROMETRIC"},
	{"ITTS", "ITTS"},
}

// CanonicalClient normalizes a free-text client name into its canonical
// identity. Total: every input maps to exactly one bucket.
func CanonicalClient(name string) string {
	upper := strings.ToUpper(name)
	for _, rule := range clientRules {
		if strings.Contains(upper, rule.substr) {
			return rule.canonical
		}
	}
	return fallbackClient
}

// WeekOfMonth returns the 1-based week number of a date within its own
// month: ceil((dayOfMonth + weekdayOfFirst) / 7) with a Sunday-based
// weekday index. This is a deliberate "weeks since month start" scheme,
// not an ISO week number.
func WeekOfMonth(date time.Time) int {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	return (date.Day() + int(first.Weekday()) + 6) / 7
}

// weekBounds returns the Sunday and Saturday of the calendar week
// containing the date, used as display bounds for weekly rows.
func weekBounds(date time.Time) (time.Time, time.Time) {
	start := date.AddDate(0, 0, -int(date.Weekday()))
	return start, start.AddDate(0, 0, 6)
}

// AggregateByClient groups a session snapshot by canonical client and
// accumulates candidate and session totals, a per-branch breakdown, and
// a month-local weekly breakdown per client. Clients come back sorted
// by total candidates descending, each weekly breakdown ascending by
// week number. No candidate is lost: aggregate totals always sum to the
// snapshot's candidate total.
func AggregateByClient(sessions []models.Session) []models.ClientAggregate {
	byClient := make(map[string]*models.ClientAggregate)
	weeksByClient := make(map[string]map[int]*models.WeekCandidates)
	order := make([]string, 0)

	for _, s := range sessions {
		client := CanonicalClient(s.ClientName)
		agg, ok := byClient[client]
		if !ok {
			agg = &models.ClientAggregate{
				Client:   client,
				Branches: make(map[string]*models.BranchTally),
			}
			byClient[client] = agg
			weeksByClient[client] = make(map[int]*models.WeekCandidates)
			order = append(order, client)
		}

		agg.TotalCandidates += s.Candidates
		agg.SessionCount++

		branch := s.Branch
		if branch == "" {
			branch = FallbackBranch
		}
		tally, ok := agg.Branches[branch]
		if !ok {
			tally = &models.BranchTally{Weekly: make(map[int]int)}
			agg.Branches[branch] = tally
		}
		tally.Candidates += s.Candidates
		tally.Sessions++

		week := WeekOfMonth(s.Date)
		tally.Weekly[week] += s.Candidates

		entry, ok := weeksByClient[client][week]
		if !ok {
			start, end := weekBounds(s.Date)
			entry = &models.WeekCandidates{Week: week, WeekStart: start, WeekEnd: end}
			weeksByClient[client][week] = entry
		}
		entry.Candidates += s.Candidates
	}

	aggregates := make([]models.ClientAggregate, 0, len(order))
	for _, client := range order {
		agg := byClient[client]
		weeks := weeksByClient[client]
		agg.Weekly = make([]models.WeekCandidates, 0, len(weeks))
		for _, entry := range weeks {
			agg.Weekly = append(agg.Weekly, *entry)
		}
		sort.Slice(agg.Weekly, func(i, j int) bool {
			return agg.Weekly[i].Week < agg.Weekly[j].Week
		})
		aggregates = append(aggregates, *agg)
	}

	sort.SliceStable(aggregates, func(i, j int) bool {
		return aggregates[i].TotalCandidates > aggregates[j].TotalCandidates
	})

	return aggregates
}
