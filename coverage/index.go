// Package coverage implements a read-only index over per-chromosome covered
// positions (e.g. cytosine offsets from a methylation coverage table).  The
// index supports drawing a chromosome-and-offset candidate weighted by
// coverage density in O(log #chromosomes) per draw, and constructing a
// candidate region spanning a required number of covered positions.
package coverage

import (
	"fmt"
	"sort"

	"github.com/epistats/regionenrich/interval"
)

// DefaultEndShift is how far a constructed region extends past its last
// covered position: one base past the last covered position plus one, so two
// regions whose covered-position runs abut do not produce zero-width or
// exactly-touching ranges whenever the next covered offset allows it.
const DefaultEndShift = 2

type chromCoverage struct {
	name    string
	length  interval.PosType
	offsets []interval.PosType
}

// Builder accumulates per-chromosome covered positions.  The growable state
// is private to the builder; Build freezes it into an immutable Index.
type Builder struct {
	genome *interval.Genome
	chroms []chromCoverage
	seen   map[string]bool
}

// NewBuilder returns a builder validating offsets against the given genome.
func NewBuilder(genome *interval.Genome) *Builder {
	return &Builder{genome: genome, seen: map[string]bool{}}
}

// Add registers the covered offsets of one chromosome.  Offsets must be
// strictly increasing and inside the chromosome; chromosomes may be added in
// any order but only once.  Chromosomes with no covered positions may be
// skipped entirely or added with an empty slice; either way they are excluded
// from the draw table.
func (b *Builder) Add(chrom string, offsets []interval.PosType) error {
	length, found := b.genome.Length(chrom)
	if !found {
		return fmt.Errorf("coverage: unknown chromosome %s", chrom)
	}
	if b.seen[chrom] {
		return fmt.Errorf("coverage: duplicate chromosome %s", chrom)
	}
	b.seen[chrom] = true
	for i, off := range offsets {
		if off < 0 || off >= length {
			return fmt.Errorf("coverage: offset %d out of range for chromosome %s (length %d)", off, chrom, length)
		}
		if i > 0 && off <= offsets[i-1] {
			return fmt.Errorf("coverage: offsets for chromosome %s are not strictly increasing at %d", chrom, off)
		}
	}
	if len(offsets) == 0 {
		return nil
	}
	frozen := make([]interval.PosType, len(offsets))
	copy(frozen, offsets)
	b.chroms = append(b.chroms, chromCoverage{name: chrom, length: length, offsets: frozen})
	return nil
}

// Build freezes the builder into an Index.  Chromosome order in the
// prefix-sum table follows the genome's natural order, so draws are
// reproducible for a fixed seed regardless of the order Add was called in.
func (b *Builder) Build() (*Index, error) {
	idx := &Index{byName: map[string]int{}}
	for _, chrom := range b.genome.Names() {
		for _, cc := range b.chroms {
			if cc.name != chrom {
				continue
			}
			// Zero-coverage chromosomes never reach here; including them
			// would duplicate a boundary value in the prefix-sum array and
			// corrupt the binary search.
			idx.byName[cc.name] = len(idx.chroms)
			idx.chroms = append(idx.chroms, cc)
			idx.prefix = append(idx.prefix, idx.total+int64(len(cc.offsets)))
			idx.total += int64(len(cc.offsets))
		}
	}
	if idx.total == 0 {
		return nil, fmt.Errorf("coverage: index has no covered positions")
	}
	return idx, nil
}

// Index is an immutable coverage table.  All methods are safe for concurrent
// use.
type Index struct {
	chroms []chromCoverage
	byName map[string]int
	// prefix[j] is the cumulative covered-position count through chromosome
	// j.  Only chromosomes with at least one covered position appear.
	prefix []int64
	total  int64
}

// Total returns the number of covered positions across all chromosomes.
func (x *Index) Total() int64 { return x.total }

// NumChroms returns the number of chromosomes with at least one covered
// position.
func (x *Index) NumChroms() int { return len(x.chroms) }

// Chrom returns the name of chromosome #ci in draw-table order.
func (x *Index) Chrom(ci int) string { return x.chroms[ci].name }

// Draw maps a uniformly random integer r in [0, Total()) to a chromosome
// index and a local index into that chromosome's covered-offset array.
func (x *Index) Draw(r int64) (ci int, local int) {
	ci = sort.Search(len(x.prefix), func(j int) bool { return x.prefix[j] > r })
	local = int(r)
	if ci > 0 {
		local = int(r - x.prefix[ci-1])
	}
	return ci, local
}

// Region constructs the candidate region spanning count covered positions
// starting from local offset index i on chromosome #ci.  The region ends
// endShift bases past its last covered position, clamped to the next covered
// offset (when one exists closer than the shifted end) and bounded by the
// chromosome length.  It reports false when the offset array or the
// chromosome cannot accommodate the region.
func (x *Index) Region(ci, i, count int, endShift interval.PosType) (interval.Entry, bool) {
	cc := &x.chroms[ci]
	if count <= 0 || i < 0 || i+count-1 >= len(cc.offsets) {
		return interval.Entry{}, false
	}
	start := cc.offsets[i]
	end := cc.offsets[i+count-1] + endShift
	if next := i + count; next < len(cc.offsets) && cc.offsets[next] < end {
		end = cc.offsets[next]
	}
	if end > cc.length {
		return interval.Entry{}, false
	}
	if end <= start {
		return interval.Entry{}, false
	}
	return interval.Entry{Chrom: cc.name, Start0: start, End: end}, true
}

// CountIn returns the number of covered positions inside [start, end) on the
// named chromosome.
func (x *Index) CountIn(chrom string, start, end interval.PosType) int {
	ci, found := x.byName[chrom]
	if !found {
		return 0
	}
	offsets := x.chroms[ci].offsets
	lo := sort.Search(len(offsets), func(i int) bool { return offsets[i] >= start })
	hi := sort.Search(len(offsets), func(i int) bool { return offsets[i] >= end })
	return hi - lo
}
