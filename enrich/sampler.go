package enrich

import (
	"math/rand"
	"sort"

	biointerval "github.com/biogo/store/interval"

	"github.com/epistats/regionenrich/interval"
)

// maskRange adapts a half-open candidate range to the biogo interval-tree
// interface used for without-replacement masking.
type maskRange struct {
	start, end interval.PosType
	id         uintptr
}

func (r maskRange) Overlap(b biointerval.IntRange) bool {
	return int(r.end) > b.Start && int(r.start) < b.End
}
func (r maskRange) ID() uintptr { return r.id }
func (r maskRange) Range() biointerval.IntRange {
	return biointerval.IntRange{Start: int(r.start), End: int(r.end)}
}

// setMask is the per-chromosome arena of already-accepted ranges for one
// simulated set.  A fresh mask is allocated for every set attempt; masks are
// never reused across sets.
type setMask struct {
	trees  map[string]*biointerval.IntTree
	nextID uintptr
}

func newSetMask() *setMask {
	return &setMask{trees: map[string]*biointerval.IntTree{}}
}

func (m *setMask) overlaps(e interval.Entry) bool {
	tree := m.trees[e.Chrom]
	if tree == nil {
		return false
	}
	q := maskRange{start: e.Start0, end: e.End, id: m.nextID}
	hit := false
	tree.DoMatching(func(biointerval.IntInterface) bool {
		hit = true
		return true
	}, q)
	return hit
}

func (m *setMask) add(e interval.Entry) {
	tree := m.trees[e.Chrom]
	if tree == nil {
		tree = &biointerval.IntTree{}
		m.trees[e.Chrom] = tree
	}
	// Insert cannot fail for distinct IDs; the error return only reports ID
	// collisions.
	_ = tree.Insert(maskRange{start: e.Start0, end: e.End, id: m.nextID}, false)
	m.nextID++
}

// sampleOne draws one candidate replacement region of the required weight
// from the background.  A nil mask permits overlaps (with-replacement mode);
// otherwise candidates colliding with previously accepted ranges are
// rejected, and an accepted candidate's range is added to the mask.  The
// second return is false whenever the caller should retry: an out-of-bounds
// construction or a mask collision.
func sampleOne(weight int, bg *Background, mask *setMask, endShift interval.PosType, rng *rand.Rand) (interval.Entry, bool) {
	var candidate interval.Entry
	if bg.weighted != nil {
		ci, local := bg.weighted.Draw(rng.Int63n(bg.weighted.Total()))
		var ok bool
		if candidate, ok = bg.weighted.Region(ci, local, weight, endShift); !ok {
			return interval.Entry{}, false
		}
	} else {
		u := bg.uniform
		r := rng.Int63n(u.total)
		j := sort.Search(len(u.prefix), func(i int) bool { return u.prefix[i] > r })
		off := r
		if j > 0 {
			off = r - u.prefix[j-1]
		}
		block := u.blocks[j]
		start := block.start + interval.PosType(off)
		end := start + interval.PosType(weight)
		if end > block.end {
			// The candidate spills out of its block.  Rejecting (rather than
			// clamping) keeps accepted placements uniform over all valid
			// start positions.
			return interval.Entry{}, false
		}
		candidate = interval.Entry{Chrom: block.chrom, Start0: start, End: end}
	}
	if mask != nil {
		if mask.overlaps(candidate) {
			return interval.Entry{}, false
		}
		mask.add(candidate)
	}
	return candidate, true
}
