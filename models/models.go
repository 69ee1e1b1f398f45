package models

import "time"

// Session represents one scheduled exam sitting at a testing center.
// It is shared across packages as the unit of analysis.
type Session struct {
	ID         string
	Date       time.Time // civil date, midnight UTC
	Start      time.Time // time-of-day anchored to Date
	End        time.Time // time-of-day anchored to Date, after Start
	ClientName string
	ExamName   string
	Candidates int
	// Branch is the physical center identifier. Empty means a legacy
	// record with no assignment; the aggregator falls back to the
	// default branch, capacity resolution is the caller's job.
	Branch string
}

// OverlapReport describes one day on which at least two session windows
// intersect, with the capacity pressure for that day.
type OverlapReport struct {
	Date time.Time
	// Sessions holds every session scheduled that day, sorted by start
	// time, not only the overlapping pairs.
	Sessions         []Session
	OverlapHours     float64 // summed pairwise overlap, one decimal
	TotalCandidates  int
	Capacity         int
	ExcessCandidates int
	Suggestions      []string
}

// ClientAggregate holds candidate and session totals for one canonical
// client across the analyzed snapshot.
type ClientAggregate struct {
	Client          string
	TotalCandidates int
	SessionCount    int
	Branches        map[string]*BranchTally
	// Weekly is ordered ascending by week number and sums to
	// TotalCandidates.
	Weekly []WeekCandidates
}

// BranchTally tracks one client's volume at a single branch.
type BranchTally struct {
	Candidates int
	Sessions   int
	// Weekly maps month-local week number to candidates, so exports can
	// break a branch row down by week without revisiting sessions.
	Weekly map[int]int
}

// WeekCandidates is one entry of a client's weekly breakdown. Week
// numbers are local to the session's month, 1-based.
type WeekCandidates struct {
	Week       int
	WeekStart  time.Time // Sunday of the containing calendar week
	WeekEnd    time.Time // Saturday of the containing calendar week
	Candidates int
}

// Analysis bundles the outputs of one analysis pass over a snapshot.
type Analysis struct {
	Reports         []OverlapReport
	Aggregates      []ClientAggregate
	TotalCandidates int
	TotalSessions   int
	Capacity        int
	// Context labels the snapshot (e.g. branch and month) for export
	// headers and file naming.
	Context string
}
