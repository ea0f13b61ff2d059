package enrich

import (
	"fmt"

	"github.com/epistats/regionenrich/coverage"
	"github.com/epistats/regionenrich/interval"
)

// Background is the universe of positions randomized replacement regions are
// drawn from.  It is built once per run and is read-only afterwards, so one
// Background may be shared by all simulation workers.
//
// Exactly one of the two modes is active:
//   - uniform: candidates are placed uniformly by basepair inside the allowed
//     interval union, and a region's required weight is its basepair length;
//   - weighted: candidates are placed proportionally to covered-position
//     density via a coverage.Index, and a region's required weight is its
//     covered-position count.
type Background struct {
	uniform  *uniformBackground
	weighted *coverage.Index
}

type uniformBlock struct {
	chrom      string
	start, end interval.PosType
}

type uniformBackground struct {
	blocks []uniformBlock
	// prefix[j] is the cumulative basepair count through block j.
	prefix []int64
	total  int64
	union  interval.Union
}

// NewUniformBackground builds a uniform-basepair background from an allowed
// interval union.  An empty union means the whole genome is allowed.
func NewUniformBackground(allowed interval.Union, genome *interval.Genome) (*Background, error) {
	if len(allowed.Chroms()) == 0 {
		full := make([]interval.Entry, 0, len(genome.Names()))
		for _, chrom := range genome.Names() {
			length, _ := genome.Length(chrom)
			full = append(full, interval.Entry{Chrom: chrom, Start0: 0, End: length})
		}
		var err error
		if allowed, err = interval.NewUnionFromEntries(full); err != nil {
			return nil, err
		}
	}
	u := &uniformBackground{union: allowed}
	for _, chrom := range allowed.Chroms() {
		length, found := genome.Length(chrom)
		if !found {
			return nil, fmt.Errorf("enrich: background chromosome %s not in genome", chrom)
		}
		endpoints := allowed.Ranges(chrom)
		for i := 0; i < len(endpoints); i += 2 {
			if endpoints[i+1] > length {
				return nil, fmt.Errorf("enrich: background interval %s:%d-%d exceeds chromosome length %d",
					chrom, endpoints[i], endpoints[i+1], length)
			}
			u.blocks = append(u.blocks, uniformBlock{chrom: chrom, start: endpoints[i], end: endpoints[i+1]})
			u.total += int64(endpoints[i+1] - endpoints[i])
			u.prefix = append(u.prefix, u.total)
		}
	}
	if u.total == 0 {
		return nil, fmt.Errorf("enrich: uniform background covers no positions")
	}
	return &Background{uniform: u}, nil
}

// NewWeightedBackground builds a coverage-weighted background from a frozen
// coverage index.
func NewWeightedBackground(idx *coverage.Index) *Background {
	return &Background{weighted: idx}
}

// Weighted reports whether the background is coverage-weighted.
func (b *Background) Weighted() bool { return b.weighted != nil }

// Weight returns the required weight of an input region under this
// background: its basepair length (uniform) or its covered-position count
// (weighted).
func (b *Background) Weight(e interval.Entry) int {
	if b.weighted != nil {
		return b.weighted.CountIn(e.Chrom, e.Start0, e.End)
	}
	return e.Span()
}

// Validate checks that the background can in principle place a replacement
// for every input region: uniform backgrounds must contain each input region
// in one allowed block, and weighted backgrounds must cover at least one
// position of each input region.  Failing inputs are a configuration error
// reported before any simulation starts.
func (b *Background) Validate(input []interval.Entry) error {
	for _, e := range input {
		if b.weighted != nil {
			if b.weighted.CountIn(e.Chrom, e.Start0, e.End) == 0 {
				return fmt.Errorf("enrich: background covers no positions of input region %s", e)
			}
			continue
		}
		if !b.uniform.union.ContainsRange(e.Chrom, e.Start0, e.End) {
			return fmt.Errorf("enrich: background does not include input region %s", e)
		}
	}
	return nil
}
