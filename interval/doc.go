/*Package interval implements genomic interval-multiset operations for sets of
  0-based, half-open [start, end) coordinates, in two flavors:

  - Union: overlapping intervals are merged, so within a chromosome the
    positions are disjoint and queries reduce to binary search over a sorted
    endpoint sequence.
  - Sorted: overlapping intervals are preserved; only start-ordering within a
    chromosome is guaranteed.

  It assumes every position fits in a PosType, which is currently defined as
  int32 since that's what BAM-derived coordinates are limited to.

  All types are immutable after construction and safe for concurrent reads.
*/
package interval
