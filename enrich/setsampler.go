package enrich

import (
	"fmt"
	"math/rand"

	"github.com/epistats/regionenrich/interval"
)

// ExhaustedError reports that RegionSetMaxRetries whole-set attempts failed.
// This is fatal for the run: it means the background cannot physically
// support the requested sampling (e.g. too few covered positions for the
// required region weights), and under-sampling would silently bias the
// statistics.
type ExhaustedError struct {
	SetAttempts   int
	RegionRetries int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("enrich: sampling exhausted: no placement found after %d set attempts of %d region retries each",
		e.SetAttempts, e.RegionRetries)
}

// sampleSet draws one full randomized replacement for the input weights.
// Each region is retried up to SingleRegionMaxRetries times; the first
// failure past that bound abandons the whole set attempt, and the set is
// redrawn from scratch up to RegionSetMaxRetries times.  Restarting the
// entire set (instead of only the failing region) preserves the joint
// distribution of independent placements conditioned on non-overlap; region-
// level restarts would bias accepted sets toward easier-to-place
// configurations.
//
// On success it returns the drawn entries (in input order) and the 1-based
// number of set attempts that were needed.
func sampleSet(weights []int, bg *Background, opts *Opts, rng *rand.Rand) ([]interval.Entry, int, error) {
	for attempt := 1; attempt <= opts.RegionSetMaxRetries; attempt++ {
		var mask *setMask
		if !opts.WithReplacement {
			mask = newSetMask()
		}
		entries := make([]interval.Entry, 0, len(weights))
		ok := true
		for _, weight := range weights {
			placed := false
			for retry := 0; retry < opts.SingleRegionMaxRetries; retry++ {
				if e, accepted := sampleOne(weight, bg, mask, opts.EndShift, rng); accepted {
					entries = append(entries, e)
					placed = true
					break
				}
			}
			if !placed {
				ok = false
				break
			}
		}
		if ok {
			return entries, attempt, nil
		}
	}
	return nil, 0, &ExhaustedError{
		SetAttempts:   opts.RegionSetMaxRetries,
		RegionRetries: opts.SingleRegionMaxRetries,
	}
}
