package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"session-analyzer/models"
)

// weekColumns is the fixed number of week columns in the tabular
// export. Months that spill into a sixth week keep those candidates in
// the totals column only.
const weekColumns = 5

// FileName derives the export file name for a rendered analysis, e.g.
// "calicut_March2025.csv".
func FileName(context string, month time.Time, ext string) string {
	return fmt.Sprintf("%s_%s%d.%s", context, month.Month(), month.Year(), ext)
}

// FormatCSV returns the tabular export: one row per (client, branch)
// pair with week 1-5 candidate columns and a trailing TOTAL row.
func FormatCSV(analysis models.Analysis) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{"Client", "Branch", "Total Candidates", "Sessions"}
	for w := 1; w <= weekColumns; w++ {
		header = append(header, fmt.Sprintf("Week %d", w))
	}
	writer.Write(header)

	totalCandidates := 0
	totalSessions := 0
	weekTotals := make([]int, weekColumns+1)

	for _, agg := range analysis.Aggregates {
		for _, branch := range sortedBranches(agg.Branches) {
			tally := agg.Branches[branch]
			row := []string{
				agg.Client,
				branch,
				fmt.Sprintf("%d", tally.Candidates),
				fmt.Sprintf("%d", tally.Sessions),
			}
			for w := 1; w <= weekColumns; w++ {
				row = append(row, fmt.Sprintf("%d", tally.Weekly[w]))
				weekTotals[w] += tally.Weekly[w]
			}
			writer.Write(row)

			totalCandidates += tally.Candidates
			totalSessions += tally.Sessions
		}
	}

	totals := []string{
		"TOTAL",
		"",
		fmt.Sprintf("%d", totalCandidates),
		fmt.Sprintf("%d", totalSessions),
	}
	for w := 1; w <= weekColumns; w++ {
		totals = append(totals, fmt.Sprintf("%d", weekTotals[w]))
	}
	writer.Write(totals)

	writer.Flush()
	return sb.String()
}

// FormatText returns the narrative report for clipboard copy and .txt
// download.
func FormatText(analysis models.Analysis) string {
	var sb strings.Builder

	heavy := strings.Repeat("═", 62)
	light := strings.Repeat("─", 62)

	sb.WriteString(heavy + "\n")
	title := "EXAM SESSION VOLUME REPORT"
	if analysis.Context != "" {
		title += " - " + analysis.Context
	}
	sb.WriteString("  " + title + "\n")
	sb.WriteString(heavy + "\n\n")

	sb.WriteString("EXECUTIVE SUMMARY\n")
	sb.WriteString(light + "\n")
	sb.WriteString(fmt.Sprintf("  Total candidates : %d\n", analysis.TotalCandidates))
	sb.WriteString(fmt.Sprintf("  Total sessions   : %d\n", analysis.TotalSessions))
	sb.WriteString(fmt.Sprintf("  Overlap alerts   : %d\n\n", len(analysis.Reports)))

	sb.WriteString("CLIENT BREAKDOWN\n")
	sb.WriteString(light + "\n")
	for _, agg := range analysis.Aggregates {
		sb.WriteString(fmt.Sprintf("  %s - %d candidate(s) in %d session(s)\n",
			agg.Client, agg.TotalCandidates, agg.SessionCount))
		for _, branch := range sortedBranches(agg.Branches) {
			tally := agg.Branches[branch]
			sb.WriteString(fmt.Sprintf("    %-10s %d candidate(s), %d session(s)\n",
				branch+":", tally.Candidates, tally.Sessions))
		}
		for _, week := range agg.Weekly {
			sb.WriteString(fmt.Sprintf("    Week %d (%s - %s): %d candidate(s)\n",
				week.Week,
				week.WeekStart.Format("Jan 02"),
				week.WeekEnd.Format("Jan 02"),
				week.Candidates))
		}
	}
	sb.WriteString("\n")

	sb.WriteString("BRANCH TOTALS\n")
	sb.WriteString(light + "\n")
	branchTotals := make(map[string]int)
	for _, agg := range analysis.Aggregates {
		for branch, tally := range agg.Branches {
			branchTotals[branch] += tally.Candidates
		}
	}
	for _, branch := range sortedKeys(branchTotals) {
		sb.WriteString(fmt.Sprintf("  %-10s %d candidate(s)\n", branch+":", branchTotals[branch]))
	}
	sb.WriteString("\n")

	sb.WriteString("WEEK TOTALS\n")
	sb.WriteString(light + "\n")
	weekTotals := make(map[int]int)
	weekLabels := make(map[int]string)
	for _, agg := range analysis.Aggregates {
		for _, week := range agg.Weekly {
			weekTotals[week.Week] += week.Candidates
			if _, ok := weekLabels[week.Week]; !ok {
				weekLabels[week.Week] = fmt.Sprintf("%s - %s",
					week.WeekStart.Format("Jan 02"), week.WeekEnd.Format("Jan 02"))
			}
		}
	}
	weeks := make([]int, 0, len(weekTotals))
	for w := range weekTotals {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	for _, w := range weeks {
		sb.WriteString(fmt.Sprintf("  Week %d (%s): %d candidate(s)\n", w, weekLabels[w], weekTotals[w]))
	}

	if len(analysis.Reports) > 0 {
		sb.WriteString("\nOVERLAP ALERTS\n")
		sb.WriteString(light + "\n")
		for _, rep := range analysis.Reports {
			sb.WriteString(fmt.Sprintf("  %s: %.1fh overlap, %d/%d candidates (excess %d)\n",
				rep.Date.Format("2006-01-02"),
				rep.OverlapHours,
				rep.TotalCandidates,
				rep.Capacity,
				rep.ExcessCandidates))
			for _, s := range rep.Suggestions {
				sb.WriteString("    • " + s + "\n")
			}
		}
	}

	sb.WriteString(heavy + "\n")
	return sb.String()
}

// FormatJSON returns the JSON representation of the analysis.
func FormatJSON(analysis models.Analysis) string {
	jsonBytes, _ := json.MarshalIndent(prepareJSON(analysis), "", "  ")
	return string(jsonBytes)
}

// jsonAnalysis and friends shape the analysis for JSON consumers.
type jsonAnalysis struct {
	Context         string          `json:"context,omitempty"`
	TotalCandidates int             `json:"total_candidates"`
	TotalSessions   int             `json:"total_sessions"`
	Capacity        int             `json:"capacity"`
	OverlapReports  []jsonOverlap   `json:"overlap_reports"`
	Clients         []jsonAggregate `json:"clients"`
}

type jsonOverlap struct {
	Date             string   `json:"date"`
	OverlapHours     float64  `json:"overlap_hours"`
	TotalCandidates  int      `json:"total_candidates"`
	Capacity         int      `json:"capacity"`
	ExcessCandidates int      `json:"excess_candidates"`
	Sessions         []string `json:"sessions"`
	Suggestions      []string `json:"suggestions"`
}

type jsonAggregate struct {
	Client          string               `json:"client"`
	TotalCandidates int                  `json:"total_candidates"`
	SessionCount    int                  `json:"session_count"`
	Branches        map[string]jsonTally `json:"branches"`
	Weekly          []jsonWeek           `json:"weekly"`
}

type jsonTally struct {
	Candidates int `json:"candidates"`
	Sessions   int `json:"sessions"`
}

type jsonWeek struct {
	Week       int    `json:"week"`
	WeekStart  string `json:"week_start"`
	WeekEnd    string `json:"week_end"`
	Candidates int    `json:"candidates"`
}

func prepareJSON(analysis models.Analysis) jsonAnalysis {
	out := jsonAnalysis{
		Context:         analysis.Context,
		TotalCandidates: analysis.TotalCandidates,
		TotalSessions:   analysis.TotalSessions,
		Capacity:        analysis.Capacity,
		OverlapReports:  make([]jsonOverlap, 0, len(analysis.Reports)),
		Clients:         make([]jsonAggregate, 0, len(analysis.Aggregates)),
	}

	for _, rep := range analysis.Reports {
		sessions := make([]string, 0, len(rep.Sessions))
		for _, s := range rep.Sessions {
			sessions = append(sessions, fmt.Sprintf("%s %s-%s (%d candidates)",
				s.ExamName, s.Start.Format("15:04"), s.End.Format("15:04"), s.Candidates))
		}
		out.OverlapReports = append(out.OverlapReports, jsonOverlap{
			Date:             rep.Date.Format("2006-01-02"),
			OverlapHours:     rep.OverlapHours,
			TotalCandidates:  rep.TotalCandidates,
			Capacity:         rep.Capacity,
			ExcessCandidates: rep.ExcessCandidates,
			Sessions:         sessions,
			Suggestions:      rep.Suggestions,
		})
	}

	for _, agg := range analysis.Aggregates {
		branches := make(map[string]jsonTally, len(agg.Branches))
		for branch, tally := range agg.Branches {
			branches[branch] = jsonTally{Candidates: tally.Candidates, Sessions: tally.Sessions}
		}
		weekly := make([]jsonWeek, 0, len(agg.Weekly))
		for _, week := range agg.Weekly {
			weekly = append(weekly, jsonWeek{
				Week:       week.Week,
				WeekStart:  week.WeekStart.Format("2006-01-02"),
				WeekEnd:    week.WeekEnd.Format("2006-01-02"),
				Candidates: week.Candidates,
			})
		}
		out.Clients = append(out.Clients, jsonAggregate{
			Client:          agg.Client,
			TotalCandidates: agg.TotalCandidates,
			SessionCount:    agg.SessionCount,
			Branches:        branches,
			Weekly:          weekly,
		})
	}

	return out
}

// sortedBranches returns a client's branch names in sorted order.
func sortedBranches(branches map[string]*models.BranchTally) []string {
	names := make([]string, 0, len(branches))
	for name := range branches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sortedKeys returns map keys in sorted order.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
