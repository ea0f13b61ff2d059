package enrich

import (
	"math/rand"
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"

	"github.com/epistats/regionenrich/coverage"
	"github.com/epistats/regionenrich/interval"
)

func mustGenome(t *testing.T, names []string, lengths []interval.PosType) *interval.Genome {
	g := interval.NewGenome()
	for i, name := range names {
		assert.NoError(t, g.Add(name, lengths[i]))
	}
	return g
}

func mustUniformBackground(t *testing.T, genome *interval.Genome, allowed ...interval.Entry) *Background {
	u, err := interval.NewUnionFromEntries(allowed)
	assert.NoError(t, err)
	bg, err := NewUniformBackground(u, genome)
	assert.NoError(t, err)
	return bg
}

func mustWeightedBackground(t *testing.T, genome *interval.Genome, offsets map[string][]interval.PosType) *Background {
	b := coverage.NewBuilder(genome)
	for _, chrom := range genome.Names() {
		assert.NoError(t, b.Add(chrom, offsets[chrom]))
	}
	idx, err := b.Build()
	assert.NoError(t, err)
	return NewWeightedBackground(idx)
}

func TestSampleOneUniform(t *testing.T) {
	genome := mustGenome(t, []string{"chr1", "chr2"}, []interval.PosType{1000, 1000})
	bg := mustUniformBackground(t, genome,
		interval.Entry{Chrom: "chr1", Start0: 100, End: 200},
		interval.Entry{Chrom: "chr2", Start0: 0, End: 50})
	rng := rand.New(rand.NewSource(1))
	accepted := 0
	for n := 0; n < 2000; n++ {
		e, ok := sampleOne(20, bg, nil, 2, rng)
		if !ok {
			continue
		}
		accepted++
		expect.EQ(t, e.Span(), 20)
		expect.True(t, bg.uniform.union.ContainsRange(e.Chrom, e.Start0, e.End),
			"candidate %s escapes the background", e)
	}
	expect.True(t, accepted > 1000)
}

func TestSampleOneWeighted(t *testing.T) {
	genome := mustGenome(t, []string{"chr1"}, []interval.PosType{1000})
	offsets := map[string][]interval.PosType{
		"chr1": {10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	}
	bg := mustWeightedBackground(t, genome, offsets)
	rng := rand.New(rand.NewSource(2))
	accepted := 0
	for n := 0; n < 2000; n++ {
		e, ok := sampleOne(3, bg, nil, 2, rng)
		if !ok {
			continue
		}
		accepted++
		expect.EQ(t, bg.weighted.CountIn(e.Chrom, e.Start0, e.End), 3,
			"candidate %s does not span 3 covered positions", e)
	}
	expect.True(t, accepted > 1000)
}

func TestSampleOneMaskRejectsOverlap(t *testing.T) {
	genome := mustGenome(t, []string{"chr1"}, []interval.PosType{100})
	// A background barely wider than the candidate: every accepted draw
	// lands in [0, 60), and a second 50bp draw must always collide.
	bg := mustUniformBackground(t, genome, interval.Entry{Chrom: "chr1", Start0: 0, End: 60})
	rng := rand.New(rand.NewSource(3))
	mask := newSetMask()
	var first interval.Entry
	for {
		if e, ok := sampleOne(50, bg, mask, 2, rng); ok {
			first = e
			break
		}
	}
	expect.EQ(t, first.Span(), 50)
	for n := 0; n < 100; n++ {
		_, ok := sampleOne(50, bg, mask, 2, rng)
		expect.False(t, ok)
	}
}

func TestSampleSetNonOverlapping(t *testing.T) {
	genome := mustGenome(t, []string{"chr1"}, []interval.PosType{500})
	bg := mustUniformBackground(t, genome, interval.Entry{Chrom: "chr1", Start0: 0, End: 500})
	opts := DefaultOpts
	assert.NoError(t, opts.normalize())
	rng := rand.New(rand.NewSource(4))
	for n := 0; n < 200; n++ {
		entries, attempt, err := sampleSet([]int{40, 40, 40, 40}, bg, &opts, rng)
		assert.NoError(t, err)
		expect.True(t, attempt >= 1)
		expect.EQ(t, len(entries), 4)
		for i := range entries {
			for j := i + 1; j < len(entries); j++ {
				a, b := entries[i], entries[j]
				overlap := a.Chrom == b.Chrom && a.Start0 < b.End && b.Start0 < a.End
				expect.False(t, overlap, "entries %s and %s overlap", a, b)
			}
		}
	}
}

func TestSampleSetExhaustion(t *testing.T) {
	genome := mustGenome(t, []string{"chr1"}, []interval.PosType{100})
	// Two non-overlapping 40bp regions cannot fit in 60bp.
	bg := mustUniformBackground(t, genome, interval.Entry{Chrom: "chr1", Start0: 0, End: 60})
	opts := DefaultOpts
	opts.RegionSetMaxRetries = 3
	opts.SingleRegionMaxRetries = 3
	assert.NoError(t, opts.normalize())
	rng := rand.New(rand.NewSource(5))
	_, _, err := sampleSet([]int{40, 40}, bg, &opts, rng)
	assert.True(t, err != nil)
	exhausted, ok := err.(*ExhaustedError)
	assert.True(t, ok)
	expect.EQ(t, exhausted.SetAttempts, 3)
	expect.EQ(t, exhausted.RegionRetries, 3)
}

func TestSampleSetWithReplacementAllowsOverlap(t *testing.T) {
	genome := mustGenome(t, []string{"chr1"}, []interval.PosType{100})
	// The mask-free mode must succeed even when non-overlapping placement is
	// impossible.
	bg := mustUniformBackground(t, genome, interval.Entry{Chrom: "chr1", Start0: 0, End: 60})
	opts := DefaultOpts
	opts.WithReplacement = true
	assert.NoError(t, opts.normalize())
	rng := rand.New(rand.NewSource(6))
	entries, _, err := sampleSet([]int{40, 40}, bg, &opts, rng)
	assert.NoError(t, err)
	expect.EQ(t, len(entries), 2)
}
