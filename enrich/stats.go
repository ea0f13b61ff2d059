package enrich

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Histogram maps an integer metric value to its occurrence count across
// simulations.  It is the only record kept of the simulated metric
// distribution: with 10^5-10^6 simulations across thousands of tested sets,
// retaining raw samples is infeasible, and the histogram is a sufficient
// statistic for the mean, standard deviation and median reported per label.
type Histogram map[int]int64

// Add increments the count of value v.
func (h Histogram) Add(v int) { h[v]++ }

// Merge folds o into h.
func (h Histogram) Merge(o Histogram) {
	for v, n := range o {
		h[v] += n
	}
}

// Sum returns the total occurrence count.
func (h Histogram) Sum() int64 {
	var total int64
	for _, n := range h {
		total += n
	}
	return total
}

// summarize returns the histogram-derived mean, sample standard deviation
// (Bessel's n-1 correction) and median.  Values are exact for mean and
// stddev; the median is bounded by the histogram's integer granularity.
func (h Histogram) summarize() (mean, stddev, median float64) {
	if len(h) == 0 {
		return 0, 0, 0
	}
	values := make([]int, 0, len(h))
	for v := range h {
		values = append(values, v)
	}
	sort.Ints(values)
	xs := make([]float64, len(values))
	ws := make([]float64, len(values))
	for i, v := range values {
		xs[i] = float64(v)
		ws[i] = float64(h[v])
	}
	mean = stat.Mean(xs, ws)
	// With integer count weights, gonum's weighted sample variance divides
	// by sum(w)-1, i.e. n-1.
	stddev = stat.StdDev(xs, ws)
	median = stat.Quantile(0.5, stat.Empirical, xs, ws)
	return mean, stddev, median
}

// TestedRegionStats accumulates per-label counters across simulation chunks.
// Instances are chunk-local partials on the workers and are folded into the
// run-wide accumulator with Merge; the accumulator is consumed exactly once,
// after the final chunk, to produce the output row for its label.
type TestedRegionStats struct {
	// Simulations is the number of simulated sets seen so far.
	Simulations int64
	// CountAbove is the number of simulated metric values >= the observed
	// value; CountBelow counts <=.  A simulated value equal to the observed
	// one increments both.
	CountAbove, CountBelow int64
	// Hist is the metric-value histogram.
	Hist Histogram
}

func newTestedRegionStats() *TestedRegionStats {
	return &TestedRegionStats{Hist: Histogram{}}
}

// Observe records one simulated metric value against the observed value.
func (s *TestedRegionStats) Observe(simulated, observed int) {
	s.Simulations++
	if simulated >= observed {
		s.CountAbove++
	}
	if simulated <= observed {
		s.CountBelow++
	}
	s.Hist.Add(simulated)
}

// Merge folds a partial accumulator into s.
func (s *TestedRegionStats) Merge(o *TestedRegionStats) {
	s.Simulations += o.Simulations
	s.CountAbove += o.CountAbove
	s.CountBelow += o.CountBelow
	s.Hist.Merge(o.Hist)
}
