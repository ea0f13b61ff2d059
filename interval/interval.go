package interval

import (
	"fmt"
	"math"
	"sort"
)

// PosType is the type used to represent interval coordinates.  int32 is wide
// enough for every chromosome in current reference genomes.
type PosType int32

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt32

// searchPosTypes returns the index of x in a[], or the position where x would
// be inserted if x isn't in a (this could be len(a)).  It's exactly the same
// as sort.SearchInts(), except for PosType.
func searchPosTypes(a []PosType, x PosType) int {
	return sort.Search(len(a), func(i int) bool { return a[i] >= x })
}

// Entry represents a single genomic interval with 0-based, half-open
// coordinates.  Strand is normalized away: the engine samples and measures on
// a fixed reference strand.
type Entry struct {
	Chrom  string
	Start0 PosType
	End    PosType
}

// Span returns the basepair length of the interval.
func (e Entry) Span() int { return int(e.End - e.Start0) }

func (e Entry) String() string {
	return fmt.Sprintf("%s:%d-%d", e.Chrom, e.Start0, e.End)
}

// sortEntries orders entries by (chromosome, start, end).  Chromosomes are
// compared lexicographically; the multiset types only require that entries
// for one chromosome are not split by another chromosome's entries.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Chrom != entries[j].Chrom {
			return entries[i].Chrom < entries[j].Chrom
		}
		if entries[i].Start0 != entries[j].Start0 {
			return entries[i].Start0 < entries[j].Start0
		}
		return entries[i].End < entries[j].End
	})
}

// Set is the read interface shared by Union and Sorted.  Ranges returns a
// flattened start/end pair sequence: the interval #k starts at element [2k]
// and ends at element [2k+1], in ascending start order.
type Set interface {
	// Chroms returns chromosome names in their construction order.
	Chroms() []string
	// Ranges returns the flattened interval sequence for one chromosome, or
	// nil if the chromosome is absent.  The returned slice must not be
	// modified.
	Ranges(chrom string) []PosType
	// IntervalCount returns the total number of intervals in the set.
	IntervalCount() int
	// Merged returns the set with overlapping intervals coalesced.
	Merged() Union
}

// Entries flattens a Set back into a slice of Entry values, in Set order.
func Entries(s Set) []Entry {
	out := make([]Entry, 0, s.IntervalCount())
	for _, chrom := range s.Chroms() {
		ranges := s.Ranges(chrom)
		for i := 0; i < len(ranges); i += 2 {
			out = append(out, Entry{Chrom: chrom, Start0: ranges[i], End: ranges[i+1]})
		}
	}
	return out
}
