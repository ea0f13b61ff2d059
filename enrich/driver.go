// Package enrich implements permutation-based interval enrichment testing:
// randomized region sets with matched weights are drawn from a constrained
// background, a comparison metric is accumulated against each tested set,
// and the counters are converted to permutation p-values with
// Benjamini-Hochberg correction.
package enrich

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"

	"github.com/epistats/regionenrich/interval"
)

// LoiInfo describes one tested locus-of-interest set.
type LoiInfo struct {
	// Label identifies the set in the output (typically the source file
	// basename).
	Label string
	// Regions is the merged interval union of the set, after any caller-side
	// filtering.
	Regions interval.Union
	// Loaded is the interval count after filtering; Records is the raw
	// record count of the source file.
	Loaded, Records int
}

// Result is the finalized statistics row for one tested label.
type Result struct {
	Label string
	// Loaded and Records are copied from the LoiInfo for the output table.
	Loaded, Records int
	Observed        int
	Simulations     int64
	CountAbove  int64
	CountBelow  int64
	PValue      float64
	QValue      float64
	// SampledMean, SampledMedian and SampledSD describe the simulated metric
	// distribution, derived from its histogram.
	SampledMean   float64
	SampledMedian float64
	SampledSD     float64
}

// RunDiagnostics carries non-statistical bookkeeping of a run.
type RunDiagnostics struct {
	// SetAttempts[k] counts the simulations whose successful region set
	// needed k+1 whole-set attempts.
	SetAttempts []int64
}

// MetricOverflowError reports a metric value outside the histogram's integer
// index range.  It signals a latent integer-width assumption violation and is
// never silently truncated.
type MetricOverflowError struct {
	Label string
	Value int
}

func (e *MetricOverflowError) Error() string {
	return fmt.Sprintf("enrich: metric value %d for %s exceeds the representable histogram range", e.Value, e.Label)
}

// simulated is the transient per-simulation object: the randomized set plus
// its attempt count.  It is discarded as soon as its chunk's metrics are
// accumulated.
type simulated struct {
	set      interval.Set
	attempts int
}

// RunEnrichmentTest runs the full permutation test: opts.Simulations
// randomized region sets are drawn from the background in chunks of
// opts.ChunkSize, the metric between every simulated set and every tested
// set is accumulated into per-label histograms, and the final counters are
// converted into add-one p-values with Benjamini-Hochberg q-values across
// all labels.  Results are returned in lois order.
//
// Sampling exhaustion, metric overflow and any internal accounting mismatch
// abort the run with an error; a permutation test is only meaningful with
// the full configured sample size.
func RunEnrichmentTest(ctx context.Context, input []interval.Entry, lois []LoiInfo, bg *Background, opts Opts) ([]Result, RunDiagnostics, error) {
	if err := opts.normalize(); err != nil {
		return nil, RunDiagnostics{}, err
	}
	if len(input) == 0 {
		return nil, RunDiagnostics{}, fmt.Errorf("enrich: empty input region set")
	}
	if len(lois) == 0 {
		return nil, RunDiagnostics{}, fmt.Errorf("enrich: no loci of interest to test")
	}
	if err := bg.Validate(input); err != nil {
		return nil, RunDiagnostics{}, err
	}
	weights := make([]int, len(input))
	for i, e := range input {
		weights[i] = bg.Weight(e)
	}

	// The observed metric is computed once per label on the real input set.
	inputSet := interval.Set(interval.NewSorted(input))
	observed := make([]int, len(lois))
	for i := range lois {
		a, b := orient(inputSet, lois[i].Regions, opts.LoiFirst)
		v := opts.Metric.compute(a, b)
		if v > math.MaxInt32 {
			return nil, RunDiagnostics{}, &MetricOverflowError{Label: lois[i].Label, Value: v}
		}
		observed[i] = v
	}

	baseSeed := opts.Seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}

	accum := make([]*TestedRegionStats, len(lois))
	for i := range accum {
		accum[i] = newTestedRegionStats()
	}
	diag := RunDiagnostics{SetAttempts: make([]int64, opts.RegionSetMaxRetries)}

	// Chunks are strictly sequential so peak memory stays bounded by
	// ChunkSize simulated sets; only the draws and the per-label metric
	// accumulation inside one chunk run in parallel.
	for chunkStart := 0; chunkStart < opts.Simulations; chunkStart += opts.ChunkSize {
		if err := ctx.Err(); err != nil {
			return nil, RunDiagnostics{}, err
		}
		chunkLen := opts.Simulations - chunkStart
		if chunkLen > opts.ChunkSize {
			chunkLen = opts.ChunkSize
		}
		sims, err := drawChunk(chunkStart, chunkLen, weights, bg, &opts, baseSeed)
		if err != nil {
			return nil, RunDiagnostics{}, err
		}
		for i := range sims {
			diag.SetAttempts[sims[i].attempts-1]++
		}

		// Per-label accumulation into chunk-local partials, merged into the
		// run-wide accumulator by the label's own task.  Histogram updates
		// are the hottest inner-loop operation; no shared mutable state is
		// touched across labels.
		err = traverse.Each(len(lois), func(li int) error {
			partial := newTestedRegionStats()
			for i := range sims {
				a, b := orient(sims[i].set, lois[li].Regions, opts.LoiFirst)
				v := opts.Metric.compute(a, b)
				if v > math.MaxInt32 {
					return &MetricOverflowError{Label: lois[li].Label, Value: v}
				}
				partial.Observe(v, observed[li])
			}
			accum[li].Merge(partial)
			return nil
		})
		if err != nil {
			return nil, RunDiagnostics{}, err
		}
		log.Printf("enrich: %d/%d simulations done", chunkStart+chunkLen, opts.Simulations)
	}

	// Every draw must land in every label's histogram exactly once.
	for i := range lois {
		if got := accum[i].Hist.Sum(); got != int64(opts.Simulations) || accum[i].Simulations != int64(opts.Simulations) {
			return nil, RunDiagnostics{}, fmt.Errorf(
				"enrich: internal consistency check failed for %s: histogram holds %d of %d simulations",
				lois[i].Label, got, opts.Simulations)
		}
	}

	pValues := make([]float64, len(lois))
	for i := range lois {
		pValues[i] = permutationPValue(accum[i].CountAbove, accum[i].CountBelow, accum[i].Simulations, opts.Hypothesis)
	}
	qValues := AdjustBH(pValues)

	results := make([]Result, len(lois))
	for i := range lois {
		mean, stddev, median := accum[i].Hist.summarize()
		results[i] = Result{
			Label:         lois[i].Label,
			Loaded:        lois[i].Loaded,
			Records:       lois[i].Records,
			Observed:      observed[i],
			Simulations:   accum[i].Simulations,
			CountAbove:    accum[i].CountAbove,
			CountBelow:    accum[i].CountBelow,
			PValue:        pValues[i],
			QValue:        qValues[i],
			SampledMean:   mean,
			SampledMedian: median,
			SampledSD:     stddev,
		}
	}
	return results, diag, nil
}

// SimulationResult is one randomized region set, handed to the consumer of
// SampleRegionSets and then discarded.
type SimulationResult struct {
	Set interval.Set
	// Attempts is the 1-based number of whole-set attempts that were needed.
	Attempts int
}

// SampleRegionSets draws opts.Simulations randomized replacements for the
// input regions and feeds them to fn one at a time, in chunks of
// opts.ChunkSize, without ever buffering more than one chunk.  fn is called
// sequentially; a non-nil error from fn aborts the run.
func SampleRegionSets(ctx context.Context, input []interval.Entry, bg *Background, opts Opts, fn func(SimulationResult) error) error {
	if err := opts.normalize(); err != nil {
		return err
	}
	if len(input) == 0 {
		return fmt.Errorf("enrich: empty input region set")
	}
	if err := bg.Validate(input); err != nil {
		return err
	}
	weights := make([]int, len(input))
	for i, e := range input {
		weights[i] = bg.Weight(e)
	}
	baseSeed := opts.Seed
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}
	for chunkStart := 0; chunkStart < opts.Simulations; chunkStart += opts.ChunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunkLen := opts.Simulations - chunkStart
		if chunkLen > opts.ChunkSize {
			chunkLen = opts.ChunkSize
		}
		sims, err := drawChunk(chunkStart, chunkLen, weights, bg, &opts, baseSeed)
		if err != nil {
			return err
		}
		for i := range sims {
			if err := fn(SimulationResult{Set: sims[i].set, Attempts: sims[i].attempts}); err != nil {
				return err
			}
		}
	}
	return nil
}

// drawChunk fills one chunk of simulated sets in parallel.  Draws within a
// chunk are fully independent: each gets its own RNG, seeded from the run
// seed and the global simulation index, so a fixed Opts.Seed reproduces
// draws regardless of Parallelism.  No ordering is guaranteed on which
// worker produces which slot.
func drawChunk(chunkStart, chunkLen int, weights []int, bg *Background, opts *Opts, baseSeed int64) ([]simulated, error) {
	sims := make([]simulated, chunkLen)
	err := traverse.Each(opts.Parallelism, func(jobIdx int) error {
		startIdx := (jobIdx * chunkLen) / opts.Parallelism
		endIdx := ((jobIdx + 1) * chunkLen) / opts.Parallelism
		for i := startIdx; i < endIdx; i++ {
			rng := rand.New(rand.NewSource(mixSeed(baseSeed, int64(chunkStart+i))))
			entries, attempts, err := sampleSet(weights, bg, opts, rng)
			if err != nil {
				return err
			}
			set, err := newSimulatedSet(entries, opts)
			if err != nil {
				return err
			}
			sims[i] = simulated{set: set, attempts: attempts}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sims, nil
}

// newSimulatedSet wraps drawn entries as an interval multiset: merged when
// sampling without replacement (the mask guarantees the entries are
// non-overlapping), order-preserving otherwise.  The optional sub-range
// filter truncates the set before the metric step.
func newSimulatedSet(entries []interval.Entry, opts *Opts) (interval.Set, error) {
	hasFilter := len(opts.Filter.Chroms()) > 0
	if opts.WithReplacement {
		set := interval.NewSorted(entries)
		if hasFilter {
			set = set.ClipTo(opts.Filter)
		}
		return set, nil
	}
	sorted := interval.NewSorted(entries) // reuses its (chrom, start) ordering
	u, err := interval.NewUnionFromEntries(interval.Entries(sorted))
	if err != nil {
		return nil, err
	}
	if hasFilter {
		u = u.Intersect(opts.Filter)
	}
	return u, nil
}

func orient(sim interval.Set, loi interval.Union, loiFirst bool) (interval.Set, interval.Set) {
	if loiFirst {
		return loi, sim
	}
	return sim, loi
}

// mixSeed derives a well-spread per-simulation seed from the run seed and
// the simulation index (splitmix64 finalizer).
func mixSeed(base, idx int64) int64 {
	z := uint64(base) + uint64(idx)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z = z ^ (z >> 31)
	return int64(z)
}
