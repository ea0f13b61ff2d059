package enrich

import (
	"math"
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestHistogram(t *testing.T) {
	h := Histogram{}
	h.Add(3)
	h.Add(3)
	h.Add(7)
	o := Histogram{3: 1, 9: 4}
	h.Merge(o)
	expect.EQ(t, h, Histogram{3: 3, 7: 1, 9: 4})
	expect.EQ(t, h.Sum(), int64(8))
	expect.EQ(t, Histogram{}.Sum(), int64(0))
}

func TestHistogramSummarize(t *testing.T) {
	// Samples: 1, 1, 2, 4.  Mean 2, sample variance (1+1+0+4)/3 = 2,
	// median is the 0.5-quantile of the empirical distribution.
	h := Histogram{1: 2, 2: 1, 4: 1}
	mean, stddev, median := h.summarize()
	expect.EQ(t, mean, 2.0)
	expect.True(t, math.Abs(stddev-math.Sqrt2) < 1e-12, "stddev=%v", stddev)
	expect.EQ(t, median, 1.0)

	mean, stddev, median = Histogram{}.summarize()
	expect.EQ(t, mean, 0.0)
	expect.EQ(t, stddev, 0.0)
	expect.EQ(t, median, 0.0)

	// A single repeated value has zero spread.
	mean, stddev, median = Histogram{5: 100}.summarize()
	expect.EQ(t, mean, 5.0)
	expect.EQ(t, stddev, 0.0)
	expect.EQ(t, median, 5.0)
}

func TestTestedRegionStats(t *testing.T) {
	s := newTestedRegionStats()
	s.Observe(2, 5) // below
	s.Observe(5, 5) // tie counts in both tails
	s.Observe(9, 5) // above
	expect.EQ(t, s.Simulations, int64(3))
	expect.EQ(t, s.CountAbove, int64(2))
	expect.EQ(t, s.CountBelow, int64(2))
	expect.EQ(t, s.Hist.Sum(), int64(3))

	o := newTestedRegionStats()
	o.Observe(9, 5)
	s.Merge(o)
	expect.EQ(t, s.Simulations, int64(4))
	expect.EQ(t, s.CountAbove, int64(3))
	expect.EQ(t, s.CountBelow, int64(2))
	expect.EQ(t, s.Hist, Histogram{2: 1, 5: 1, 9: 2})
}
