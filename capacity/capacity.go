// Package capacity resolves a branch identifier to the number of
// candidates the physical center can seat concurrently.
package capacity

// Default is the seat count used for unknown branches and for the
// "global" pseudo-branch. It matches the upper bound the data-entry
// layer enforces on candidate counts.
const Default = 80

// seats maps known branch identifiers to their concurrent seat count.
// The values describe simultaneous occupancy during a single time
// window, not per-day throughput.
var seats = map[string]int{
	"calicut": 80,
	"cochin":  60,
	"kannur":  50,
}

// Resolve returns the concurrent seat capacity for a branch. Unknown,
// empty, or "global" identifiers resolve to Default; resolution never
// fails.
func Resolve(branch string) int {
	if c, ok := seats[branch]; ok {
		return c
	}
	return Default
}
