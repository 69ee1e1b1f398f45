package formatter_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"session-analyzer/formatter"
	"session-analyzer/models"

	"github.com/stretchr/testify/assert"
)

func day(value string) time.Time {
	d, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}

// sampleAnalysis is a March 2025 snapshot: PEARSON at calicut across
// weeks 3 and 4, PSI at cochin in week 3, one overlap alert.
func sampleAnalysis() models.Analysis {
	return models.Analysis{
		Aggregates: []models.ClientAggregate{
			{
				Client:          "PEARSON",
				TotalCandidates: 90,
				SessionCount:    2,
				Branches: map[string]*models.BranchTally{
					"calicut": {Candidates: 90, Sessions: 2, Weekly: map[int]int{3: 50, 4: 40}},
				},
				Weekly: []models.WeekCandidates{
					{Week: 3, WeekStart: day("2025-03-09"), WeekEnd: day("2025-03-15"), Candidates: 50},
					{Week: 4, WeekStart: day("2025-03-16"), WeekEnd: day("2025-03-22"), Candidates: 40},
				},
			},
			{
				Client:          "PSI",
				TotalCandidates: 30,
				SessionCount:    1,
				Branches: map[string]*models.BranchTally{
					"cochin": {Candidates: 30, Sessions: 1, Weekly: map[int]int{3: 30}},
				},
				Weekly: []models.WeekCandidates{
					{Week: 3, WeekStart: day("2025-03-09"), WeekEnd: day("2025-03-15"), Candidates: 30},
				},
			},
		},
		Reports: []models.OverlapReport{
			{
				Date:             day("2025-03-10"),
				OverlapHours:     1.0,
				TotalCandidates:  90,
				Capacity:         80,
				ExcessCandidates: 10,
				Suggestions: []string{
					"Start early check-in for AWS SAA: process 5 candidate(s) before the scheduled start",
				},
			},
		},
		TotalCandidates: 120,
		TotalSessions:   3,
		Capacity:        80,
		Context:         "calicut March 2025",
	}
}

func TestFormatCSV(t *testing.T) {
	got := formatter.FormatCSV(sampleAnalysis())
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")

	assert.Equal(t, "Client,Branch,Total Candidates,Sessions,Week 1,Week 2,Week 3,Week 4,Week 5", lines[0])
	assert.Equal(t, "PEARSON,calicut,90,2,0,0,50,40,0", lines[1])
	assert.Equal(t, "PSI,cochin,30,1,0,0,30,0,0", lines[2])
	assert.Equal(t, "TOTAL,,120,3,0,0,80,40,0", lines[3])
	assert.Len(t, lines, 4)
}

func TestFormatCSV_WeekSixExcludedFromColumns(t *testing.T) {
	analysis := models.Analysis{
		Aggregates: []models.ClientAggregate{
			{
				Client:          "PEARSON",
				TotalCandidates: 20,
				SessionCount:    1,
				Branches: map[string]*models.BranchTally{
					"calicut": {Candidates: 20, Sessions: 1, Weekly: map[int]int{6: 20}},
				},
				Weekly: []models.WeekCandidates{
					{Week: 6, WeekStart: day("2025-03-30"), WeekEnd: day("2025-04-05"), Candidates: 20},
				},
			},
		},
		TotalCandidates: 20,
		TotalSessions:   1,
	}

	got := formatter.FormatCSV(analysis)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")

	// The total column still carries the candidates; week 6 has no
	// column of its own.
	assert.Equal(t, "PEARSON,calicut,20,1,0,0,0,0,0", lines[1])
	assert.Equal(t, "TOTAL,,20,1,0,0,0,0,0", lines[2])
}

func TestFormatCSV_MultiBranchClient(t *testing.T) {
	analysis := models.Analysis{
		Aggregates: []models.ClientAggregate{
			{
				Client:          "PSI",
				TotalCandidates: 50,
				SessionCount:    2,
				Branches: map[string]*models.BranchTally{
					"cochin":  {Candidates: 20, Sessions: 1, Weekly: map[int]int{1: 20}},
					"calicut": {Candidates: 30, Sessions: 1, Weekly: map[int]int{2: 30}},
				},
			},
		},
		TotalCandidates: 50,
		TotalSessions:   2,
	}

	got := formatter.FormatCSV(analysis)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")

	// One row per (client, branch), branches in sorted order.
	assert.Equal(t, "PSI,calicut,30,1,0,30,0,0,0", lines[1])
	assert.Equal(t, "PSI,cochin,20,1,20,0,0,0,0", lines[2])
	assert.Equal(t, "TOTAL,,50,2,20,30,0,0,0", lines[3])
}

func TestFormatText(t *testing.T) {
	tests := map[string]struct {
		analysis    models.Analysis
		contains    []string
		notContains []string
	}{
		"FullReport": {
			analysis: sampleAnalysis(),
			contains: []string{
				"EXAM SESSION VOLUME REPORT - calicut March 2025",
				"EXECUTIVE SUMMARY",
				"Total candidates : 120",
				"Total sessions   : 3",
				"Overlap alerts   : 1",
				"PEARSON - 90 candidate(s) in 2 session(s)",
				"calicut:",
				"Week 3 (Mar 09 - Mar 15): 50 candidate(s)",
				"Week 4 (Mar 16 - Mar 22): 40 candidate(s)",
				"BRANCH TOTALS",
				"WEEK TOTALS",
				"Week 3 (Mar 09 - Mar 15): 80 candidate(s)",
				"OVERLAP ALERTS",
				"2025-03-10: 1.0h overlap, 90/80 candidates (excess 10)",
				"Start early check-in for AWS SAA: process 5 candidate(s) before the scheduled start",
			},
		},
		"NoOverlaps": {
			analysis: func() models.Analysis {
				a := sampleAnalysis()
				a.Reports = nil
				return a
			}(),
			contains: []string{
				"Overlap alerts   : 0",
			},
			notContains: []string{
				"OVERLAP ALERTS",
			},
		},
		"EmptySnapshot": {
			analysis: models.Analysis{Context: "global March 2025"},
			contains: []string{
				"Total candidates : 0",
				"Total sessions   : 0",
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := formatter.FormatText(tt.analysis)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}

func TestFormatJSON(t *testing.T) {
	got := formatter.FormatJSON(sampleAnalysis())

	var decoded struct {
		Context         string `json:"context"`
		TotalCandidates int    `json:"total_candidates"`
		TotalSessions   int    `json:"total_sessions"`
		Capacity        int    `json:"capacity"`
		OverlapReports  []struct {
			Date             string  `json:"date"`
			OverlapHours     float64 `json:"overlap_hours"`
			ExcessCandidates int     `json:"excess_candidates"`
		} `json:"overlap_reports"`
		Clients []struct {
			Client          string `json:"client"`
			TotalCandidates int    `json:"total_candidates"`
		} `json:"clients"`
	}
	assert.NoError(t, json.Unmarshal([]byte(got), &decoded))

	assert.Equal(t, "calicut March 2025", decoded.Context)
	assert.Equal(t, 120, decoded.TotalCandidates)
	assert.Equal(t, 3, decoded.TotalSessions)
	assert.Equal(t, 80, decoded.Capacity)
	assert.Len(t, decoded.OverlapReports, 1)
	assert.Equal(t, "2025-03-10", decoded.OverlapReports[0].Date)
	assert.Equal(t, 1.0, decoded.OverlapReports[0].OverlapHours)
	assert.Equal(t, 10, decoded.OverlapReports[0].ExcessCandidates)
	assert.Len(t, decoded.Clients, 2)
	assert.Equal(t, "PEARSON", decoded.Clients[0].Client)
}

func TestFileName(t *testing.T) {
	month := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "calicut_March2025.csv", formatter.FileName("calicut", month, "csv"))
	assert.Equal(t, "global_March2025.txt", formatter.FileName("global", month, "txt"))
}
