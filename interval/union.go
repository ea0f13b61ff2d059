package interval

import (
	"fmt"
)

// Union is a merging interval multiset: a collection of per-chromosome
// length-2N endpoint sequences, where the (0-based) start position of
// interval #k is in element [2k] and the end position is in element [2k+1],
// with the intervals disjoint and stored in increasing order.  Advantages of
// this representation over a length-N sequence of {start, end} structs
// include simpler complement code and reuse of standard []int32-style binary
// search.
//
// Unlike a cached-cursor design, all queries are stateless, so one Union may
// be shared by any number of goroutines.
type Union struct {
	// nameMap is a chromosome-keyed map with disjoint-interval-set values.
	nameMap map[string][]PosType
	// names records chromosome insertion order for deterministic iteration.
	names []string
}

func newUnion() Union {
	return Union{nameMap: map[string][]PosType{}}
}

// Chroms implements Set.
func (u Union) Chroms() []string { return u.names }

// Ranges implements Set.  For a Union the flattened interval sequence is the
// endpoint sequence itself.
func (u Union) Ranges(chrom string) []PosType { return u.nameMap[chrom] }

// Merged implements Set; a Union is already merged.
func (u Union) Merged() Union { return u }

// IntervalCount implements Set.
func (u Union) IntervalCount() int {
	n := 0
	for _, endpoints := range u.nameMap {
		n += len(endpoints) / 2
	}
	return n
}

// CoveredBases returns the total number of positions covered by the union.
func (u Union) CoveredBases() int64 {
	var total int64
	for _, endpoints := range u.nameMap {
		for i := 0; i < len(endpoints); i += 2 {
			total += int64(endpoints[i+1] - endpoints[i])
		}
	}
	return total
}

// ContainsPos checks whether the (0-based) interval [pos, pos+1) is contained
// within the union.
func (u Union) ContainsPos(chrom string, pos PosType) bool {
	endpoints := u.nameMap[chrom]
	if endpoints == nil {
		return false
	}
	return searchPosTypes(endpoints, pos+1)&1 == 1
}

// ContainsRange checks whether [start, end) lies entirely inside one merged
// interval of the union.
func (u Union) ContainsRange(chrom string, start, end PosType) bool {
	endpoints := u.nameMap[chrom]
	if endpoints == nil {
		return false
	}
	idx := searchPosTypes(endpoints, start+1)
	if idx&1 != 1 {
		return false
	}
	return end <= endpoints[idx]
}

// OverlapsRange checks whether [start, end) intersects any interval of the
// union.
func (u Union) OverlapsRange(chrom string, start, end PosType) bool {
	endpoints := u.nameMap[chrom]
	if endpoints == nil || end <= start {
		return false
	}
	idx := searchPosTypes(endpoints, start+1)
	if idx&1 == 1 {
		return true
	}
	return idx != len(endpoints) && endpoints[idx] < end
}

// Intersect returns the union of positions covered by both u and o.
func (u Union) Intersect(o Union) Union {
	out := newUnion()
	for _, chrom := range u.names {
		a := u.nameMap[chrom]
		b := o.nameMap[chrom]
		if b == nil {
			continue
		}
		var merged []PosType
		ai, bi := 0, 0
		for ai < len(a) && bi < len(b) {
			start := a[ai]
			if b[bi] > start {
				start = b[bi]
			}
			end := a[ai+1]
			if b[bi+1] < end {
				end = b[bi+1]
			}
			if start < end {
				merged = append(merged, start, end)
			}
			// Advance whichever interval ends first.
			if a[ai+1] < b[bi+1] {
				ai += 2
			} else {
				bi += 2
			}
		}
		if merged != nil {
			out.nameMap[chrom] = merged
			out.names = append(out.names, chrom)
		}
	}
	return out
}

// Complement returns the positions of the genome not covered by the union.
// Every chromosome of the genome is included; chromosomes absent from the
// union are returned in full.
func (u Union) Complement(genome *Genome) Union {
	out := newUnion()
	for _, chrom := range genome.Names() {
		length, _ := genome.Length(chrom)
		endpoints := u.nameMap[chrom]
		var gaps []PosType
		prev := PosType(0)
		for i := 0; i < len(endpoints); i += 2 {
			if endpoints[i] > prev {
				gaps = append(gaps, prev, endpoints[i])
			}
			prev = endpoints[i+1]
		}
		if prev < length {
			gaps = append(gaps, prev, length)
		}
		if gaps != nil {
			out.nameMap[chrom] = gaps
			out.names = append(out.names, chrom)
		}
	}
	return out
}

// Subtract returns the positions covered by u but not by o.
func (u Union) Subtract(o Union, genome *Genome) Union {
	return u.Intersect(o.Complement(genome))
}

// NewUnionFromEntries initializes a Union from entries sorted by
// (chromosome, start), merging touching/overlapping intervals and eliminating
// empty ones.  Out-of-order input is an error; entries for one chromosome
// must not be split by another chromosome's entries.
func NewUnionFromEntries(entries []Entry) (Union, error) {
	u := newUnion()
	prevChrom := ""
	var prevStart, prevEnd PosType
	var endpoints []PosType
	flush := func() {
		if prevEnd != -1 {
			endpoints = append(endpoints, prevStart, prevEnd)
		}
		u.nameMap[prevChrom] = endpoints
		u.names = append(u.names, prevChrom)
	}
	for _, entry := range entries {
		if entry.Start0 < 0 {
			return Union{}, fmt.Errorf("interval.NewUnionFromEntries: negative start coordinate")
		}
		if entry.End < entry.Start0 || entry.End >= PosTypeMax {
			return Union{}, fmt.Errorf("interval.NewUnionFromEntries: invalid coordinate pair [%d, %d)", entry.Start0, entry.End)
		}
		if entry.Chrom != prevChrom {
			if prevChrom != "" {
				flush()
			}
			prevChrom = entry.Chrom
			if _, found := u.nameMap[prevChrom]; found {
				return Union{}, fmt.Errorf("interval.NewUnionFromEntries: unsorted input (split chromosome %s)", entry.Chrom)
			}
			endpoints = nil
			if entry.End == entry.Start0 {
				// Distinguish 'mentioned' chromosomes without any covered
				// bases from unmentioned ones.
				prevStart, prevEnd = -1, -1
				continue
			}
			prevStart, prevEnd = entry.Start0, entry.End
			continue
		}
		if entry.End == entry.Start0 {
			continue
		}
		if entry.Start0 > prevEnd {
			// New interval doesn't touch the previous one, so the previous
			// one is final.
			if prevEnd != -1 {
				endpoints = append(endpoints, prevStart, prevEnd)
			}
			prevStart, prevEnd = entry.Start0, entry.End
		} else {
			if entry.Start0 < prevStart {
				return Union{}, fmt.Errorf("interval.NewUnionFromEntries: unsorted input")
			}
			if entry.End > prevEnd {
				prevEnd = entry.End
			}
		}
	}
	if prevChrom != "" {
		flush()
	}
	return u, nil
}
