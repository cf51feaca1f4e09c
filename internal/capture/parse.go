package capture

import (
	"math"
	"strconv"
	"strings"
)

// ParseCandidates reads tab-separated candidate lines of the form
//
//	index <TAB> x <TAB> y <TAB> w <TAB> h [<TAB> title]
//
// as emitted by platform window-listing helpers. Malformed lines,
// non-positive indices and degenerate sizes are skipped, not errors: a
// half-usable listing is still better than none.
func ParseCandidates(raw string) []Candidate {
	var items []Candidate
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		parts := strings.Split(trimmed, "\t")
		if len(parts) < 5 {
			continue
		}
		index, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil || index <= 0 {
			continue
		}
		nums := make([]int, 4)
		ok := true
		for i := 0; i < 4; i++ {
			f, err := strconv.ParseFloat(strings.TrimSpace(parts[i+1]), 64)
			if err != nil {
				ok = false
				break
			}
			nums[i] = int(math.Round(f))
		}
		if !ok || nums[2] <= 0 || nums[3] <= 0 {
			continue
		}
		c := Candidate{Index: index, X: nums[0], Y: nums[1], W: nums[2], H: nums[3]}
		if len(parts) > 5 {
			c.Title = strings.TrimSpace(parts[5])
		}
		items = append(items, c)
	}
	return items
}
