package enrich

import (
	"fmt"
	"runtime"

	"github.com/epistats/regionenrich/interval"
)

// Opts collects the tunables of one enrichment run.
type Opts struct {
	// Simulations is the number of randomized region sets to draw.
	Simulations int
	// ChunkSize bounds how many simulated sets are held in memory at once.
	// It never usefully exceeds Simulations; zero means one chunk covering
	// all simulations.
	ChunkSize int
	// RegionSetMaxRetries is how many times a whole randomized set is redrawn
	// after any of its regions exhausts its retries.  Exhausting this bound
	// aborts the run: the background cannot physically support the requested
	// sampling.
	RegionSetMaxRetries int
	// SingleRegionMaxRetries is how many candidates are drawn for one region
	// before the enclosing set attempt is abandoned.
	SingleRegionMaxRetries int
	// WithReplacement permits overlaps among the regions of one simulated
	// set.  Default is without replacement: a per-chromosome mask rejects
	// colliding candidates.
	WithReplacement bool
	// Parallelism is the worker count for the simulation and metric loops.
	// Zero means runtime.NumCPU().
	Parallelism int
	// EndShift is how far a coverage-weighted region extends past its last
	// covered position (see coverage.DefaultEndShift).
	EndShift interval.PosType
	// Metric selects the integer-valued comparison between a simulated set
	// and a locus-of-interest set.
	Metric Metric
	// LoiFirst computes metric(loi, simulated) instead of
	// metric(simulated, loi).  Only OverlapCount is orientation-sensitive.
	LoiFirst bool
	// Hypothesis selects the tail(s) of the permutation test.
	Hypothesis Hypothesis
	// Filter, when nonempty, truncates every simulated set against this
	// union before the metric step.
	Filter interval.Union
	// Seed, when nonzero, makes draws reproducible: the RNG of simulation #i
	// is seeded from Seed and i, independent of Parallelism.  Zero seeds
	// from the wall clock.
	Seed int64
}

// DefaultOpts sets the default values of Opts.
var DefaultOpts = Opts{
	Simulations:            100000,
	ChunkSize:              50000,
	RegionSetMaxRetries:    1000,
	SingleRegionMaxRetries: 100,
	EndShift:               2,
	Metric:                 OverlapCount,
	Hypothesis:             Greater,
}

// normalize fills derived defaults and validates the caller-controlled
// fields.  It is called once before any simulation starts.
func (o *Opts) normalize() error {
	if o.Simulations <= 0 {
		return fmt.Errorf("enrich: Simulations must be positive, got %d", o.Simulations)
	}
	if o.ChunkSize < 0 {
		return fmt.Errorf("enrich: ChunkSize must be nonnegative, got %d", o.ChunkSize)
	}
	if o.ChunkSize == 0 || o.ChunkSize > o.Simulations {
		o.ChunkSize = o.Simulations
	}
	if o.RegionSetMaxRetries <= 0 || o.SingleRegionMaxRetries <= 0 {
		return fmt.Errorf("enrich: retry bounds must be positive, got set=%d single=%d",
			o.RegionSetMaxRetries, o.SingleRegionMaxRetries)
	}
	if o.Parallelism <= 0 {
		o.Parallelism = runtime.NumCPU()
	}
	if o.EndShift <= 0 {
		o.EndShift = 2
	}
	return nil
}
