package review

import (
	"fmt"
	"sort"
	"strings"

	"github.com/techn4r/ai-code-reviewer/internal/diff"
)

// ExtractContext slices the regions of fullContent that the hunks
// touch, padded by contextLines on both sides. Overlapping regions are
// merged, and each region is introduced by a line-range marker so the
// provider knows where the excerpt sits in the file.
func ExtractContext(fullContent string, hunks []diff.Hunk, contextLines int) string {
	lines := strings.Split(fullContent, "\n")

	ranges := make([][2]int, 0, len(hunks))
	for _, h := range hunks {
		start := h.NewStart - contextLines - 1
		if start < 0 {
			start = 0
		}
		end := h.NewStart + h.NewCount + contextLines
		if end > len(lines) {
			end = len(lines)
		}
		// A hunk starting past the end of the file would leave
		// start > end after clipping.
		if start >= end {
			continue
		}
		ranges = append(ranges, [2]int{start, end})
	}

	var parts []string
	for _, r := range mergeRanges(ranges) {
		parts = append(parts, fmt.Sprintf("... (lines %d-%d) ...", r[0]+1, r[1]))
		parts = append(parts, lines[r[0]:r[1]]...)
	}
	return strings.Join(parts, "\n")
}

// mergeRanges sorts half-open [start, end) ranges and coalesces any
// that touch or overlap.
func mergeRanges(ranges [][2]int) [][2]int {
	if len(ranges) == 0 {
		return nil
	}

	sorted := make([][2]int, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i][0] < sorted[j][0] })

	merged := [][2]int{sorted[0]}
	for _, r := range sorted[1:] {
		last := &merged[len(merged)-1]
		if r[0] <= last[1] {
			if r[1] > last[1] {
				last[1] = r[1]
			}
		} else {
			merged = append(merged, r)
		}
	}
	return merged
}
