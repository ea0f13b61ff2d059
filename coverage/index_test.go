package coverage

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epistats/regionenrich/interval"
)

func testGenome(t *testing.T, names []string, lengths []interval.PosType) *interval.Genome {
	g := interval.NewGenome()
	for i, name := range names {
		require.NoError(t, g.Add(name, lengths[i]))
	}
	return g
}

func TestBuilderValidation(t *testing.T) {
	g := testGenome(t, []string{"chrA"}, []interval.PosType{100})
	b := NewBuilder(g)
	assert.Error(t, b.Add("chrZ", []interval.PosType{1}))
	assert.Error(t, b.Add("chrA", []interval.PosType{-1}))
	assert.Error(t, b.Add("chrA", []interval.PosType{100}))
	assert.Error(t, b.Add("chrA", []interval.PosType{5, 5}))
	assert.Error(t, b.Add("chrA", []interval.PosType{9, 3}))
	assert.NoError(t, b.Add("chrA", []interval.PosType{3, 9}))
	assert.Error(t, b.Add("chrA", []interval.PosType{50})) // duplicate

	// A builder with only empty chromosomes cannot build.
	b2 := NewBuilder(g)
	assert.NoError(t, b2.Add("chrA", nil))
	_, err := b2.Build()
	assert.Error(t, err)
}

func TestDrawSkipsZeroCoverageChromosomes(t *testing.T) {
	g := testGenome(t,
		[]string{"chrA", "chrB", "chrC"},
		[]interval.PosType{1000, 1000, 1000})
	b := NewBuilder(g)
	// Added out of genome order on purpose; the draw table follows the
	// genome order regardless.
	require.NoError(t, b.Add("chrC", []interval.PosType{7, 8, 9}))
	require.NoError(t, b.Add("chrA", []interval.PosType{10, 20, 30, 40, 50}))
	require.NoError(t, b.Add("chrB", nil))
	idx, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, int64(8), idx.Total())
	assert.Equal(t, 2, idx.NumChroms())
	assert.Equal(t, "chrA", idx.Chrom(0))
	assert.Equal(t, "chrC", idx.Chrom(1))

	counts := map[string]int{}
	rng := rand.New(rand.NewSource(1))
	for n := 0; n < 10000; n++ {
		ci, local := idx.Draw(rng.Int63n(idx.Total()))
		chrom := idx.Chrom(ci)
		assert.NotEqual(t, "chrB", chrom)
		assert.True(t, local >= 0)
		switch chrom {
		case "chrA":
			assert.True(t, local < 5)
		case "chrC":
			assert.True(t, local < 3)
		}
		counts[chrom]++
	}
	assert.Equal(t, 0, counts["chrB"])
	// 5:3 weighting, 10000 draws: both chromosomes must be well represented.
	assert.True(t, counts["chrA"] > 5000)
	assert.True(t, counts["chrC"] > 2500)
}

func TestRegion(t *testing.T) {
	g := testGenome(t, []string{"chrA"}, []interval.PosType{62})
	b := NewBuilder(g)
	require.NoError(t, b.Add("chrA", []interval.PosType{10, 20, 21, 40, 60}))
	idx, err := b.Build()
	require.NoError(t, err)

	// Plain case: end is last offset + shift.
	e, ok := idx.Region(0, 0, 1, 2)
	require.True(t, ok)
	assert.Equal(t, interval.Entry{Chrom: "chrA", Start0: 10, End: 12}, e)

	// Next covered offset is closer than the shifted end: clamp to it so the
	// region spans exactly count covered positions.
	e, ok = idx.Region(0, 1, 1, 2)
	require.True(t, ok)
	assert.Equal(t, interval.Entry{Chrom: "chrA", Start0: 20, End: 21}, e)

	// Multi-position region.
	e, ok = idx.Region(0, 1, 3, 2)
	require.True(t, ok)
	assert.Equal(t, interval.Entry{Chrom: "chrA", Start0: 20, End: 42}, e)
	assert.Equal(t, 3, idx.CountIn(e.Chrom, e.Start0, e.End))

	// Shifted end spills past the chromosome.
	_, ok = idx.Region(0, 4, 1, 3)
	assert.False(t, ok)

	// Not enough offsets left.
	_, ok = idx.Region(0, 3, 3, 2)
	assert.False(t, ok)
	_, ok = idx.Region(0, -1, 1, 2)
	assert.False(t, ok)
	_, ok = idx.Region(0, 0, 0, 2)
	assert.False(t, ok)
}

func TestCountIn(t *testing.T) {
	g := testGenome(t, []string{"chrA"}, []interval.PosType{100})
	b := NewBuilder(g)
	require.NoError(t, b.Add("chrA", []interval.PosType{10, 20, 30, 40}))
	idx, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 4, idx.CountIn("chrA", 0, 100))
	assert.Equal(t, 1, idx.CountIn("chrA", 10, 11))
	assert.Equal(t, 0, idx.CountIn("chrA", 11, 20))
	assert.Equal(t, 3, idx.CountIn("chrA", 20, 41))
	assert.Equal(t, 0, idx.CountIn("chrA", 41, 100))
	assert.Equal(t, 0, idx.CountIn("chrZ", 0, 100))
}
