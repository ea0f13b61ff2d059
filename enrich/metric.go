package enrich

import (
	"fmt"

	"github.com/epistats/regionenrich/interval"
)

// Metric is an integer-valued comparison between two interval multisets.
// The numeric result may depend on argument order (OverlapCount does);
// Opts.LoiFirst controls the orientation used by the driver.
type Metric int

const (
	// OverlapCount counts the intervals of the first set that intersect at
	// least one interval of the second set.
	OverlapCount Metric = iota
	// IntersectionCount counts the disjoint blocks of the basepair
	// intersection of the two (merged) sets.
	IntersectionCount
)

func (m Metric) String() string {
	switch m {
	case OverlapCount:
		return "overlap"
	case IntersectionCount:
		return "intersection"
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

// ParseMetric converts a metric name from the command line.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "overlap":
		return OverlapCount, nil
	case "intersection":
		return IntersectionCount, nil
	}
	return 0, fmt.Errorf("enrich: unknown metric %q (want overlap or intersection)", s)
}

// compute evaluates the metric on (a, b).  Results are nonnegative and
// bounded by the interval counts of the arguments.
func (m Metric) compute(a, b interval.Set) int {
	switch m {
	case OverlapCount:
		// Merging b does not change whether a given interval of a overlaps
		// it, and a merged union supports binary-search overlap queries.
		bm := b.Merged()
		n := 0
		for _, chrom := range a.Chroms() {
			ranges := a.Ranges(chrom)
			for i := 0; i < len(ranges); i += 2 {
				if bm.OverlapsRange(chrom, ranges[i], ranges[i+1]) {
					n++
				}
			}
		}
		return n
	case IntersectionCount:
		return a.Merged().Intersect(b.Merged()).IntervalCount()
	}
	panic(m)
}
