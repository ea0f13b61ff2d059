package interval

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestNewSorted(t *testing.T) {
	s := NewSorted([]Entry{
		{"chr2", 5, 15},
		{"chr1", 30, 40},
		{"chr1", 10, 25},
		{"chr1", 20, 35}, // overlap preserved
		{"chr1", 7, 7},   // empty, dropped
	})
	expect.EQ(t, s.Chroms(), []string{"chr1", "chr2"})
	expect.EQ(t, s.Ranges("chr1"), []PosType{10, 25, 20, 35, 30, 40})
	expect.EQ(t, s.IntervalCount(), 4)
}

func TestSortedMerged(t *testing.T) {
	s := NewSorted([]Entry{
		{"chr1", 10, 25},
		{"chr1", 20, 35},
		{"chr1", 50, 60},
	})
	u := s.Merged()
	expect.EQ(t, u.Ranges("chr1"), []PosType{10, 35, 50, 60})
	expect.EQ(t, u.IntervalCount(), 2)
}

func TestSortedClipTo(t *testing.T) {
	filter := mustUnion(t, Entry{"chr1", 15, 30}, Entry{"chr1", 40, 50})
	s := NewSorted([]Entry{
		{"chr1", 10, 45}, // straddles both filter intervals: split
		{"chr1", 20, 25}, // fully inside
		{"chr1", 31, 39}, // in the gap: dropped
		{"chr2", 0, 10},  // chromosome absent from filter: dropped
	})
	clipped := s.ClipTo(filter)
	expect.EQ(t, clipped.Ranges("chr1"), []PosType{15, 30, 20, 25, 40, 45})
	expect.EQ(t, clipped.IntervalCount(), 3)
	expect.EQ(t, len(clipped.Ranges("chr2")), 0)
}
