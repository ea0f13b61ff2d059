package interval

// Sorted is an order-preserving interval multiset: within each chromosome,
// intervals are stored in ascending start order, but overlaps between them
// are retained.  This is the natural shape for a simulated region set drawn
// with replacement, where two draws may legitimately cover the same
// positions.
type Sorted struct {
	nameMap map[string][]PosType
	names   []string
}

// NewSorted builds a Sorted multiset from entries in any order.  Empty
// entries are dropped.
func NewSorted(entries []Entry) Sorted {
	sorted := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.End > e.Start0 {
			sorted = append(sorted, e)
		}
	}
	sortEntries(sorted)
	s := Sorted{nameMap: map[string][]PosType{}}
	for _, e := range sorted {
		if _, found := s.nameMap[e.Chrom]; !found {
			s.names = append(s.names, e.Chrom)
		}
		s.nameMap[e.Chrom] = append(s.nameMap[e.Chrom], e.Start0, e.End)
	}
	return s
}

// Chroms implements Set.
func (s Sorted) Chroms() []string { return s.names }

// Ranges implements Set.
func (s Sorted) Ranges(chrom string) []PosType { return s.nameMap[chrom] }

// IntervalCount implements Set.
func (s Sorted) IntervalCount() int {
	n := 0
	for _, ranges := range s.nameMap {
		n += len(ranges) / 2
	}
	return n
}

// Merged implements Set, coalescing overlapping intervals into a Union.
func (s Sorted) Merged() Union {
	u, err := NewUnionFromEntries(Entries(s))
	if err != nil {
		// Ranges are validated at construction; a sorted multiset always
		// merges cleanly.
		panic(err)
	}
	return u
}

// ClipTo truncates every interval against the filter union, splitting
// intervals that straddle filter boundaries.  Interval multiplicity is
// preserved for the surviving pieces.
func (s Sorted) ClipTo(filter Union) Sorted {
	var clipped []Entry
	for _, chrom := range s.names {
		ranges := s.nameMap[chrom]
		endpoints := filter.Ranges(chrom)
		if endpoints == nil {
			continue
		}
		for i := 0; i < len(ranges); i += 2 {
			start, end := ranges[i], ranges[i+1]
			// Walk the filter intervals that intersect [start, end).
			idx := searchPosTypes(endpoints, start+1)
			idx &^= 1 // beginning of the containing or next filter interval
			for ; idx < len(endpoints) && endpoints[idx] < end; idx += 2 {
				lo, hi := endpoints[idx], endpoints[idx+1]
				if lo < start {
					lo = start
				}
				if hi > end {
					hi = end
				}
				if lo < hi {
					clipped = append(clipped, Entry{Chrom: chrom, Start0: lo, End: hi})
				}
			}
		}
	}
	return NewSorted(clipped)
}
