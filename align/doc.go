// Package align drives barcode clusters of paired reads through a phased
// paired-end search, and falls back to single-end alignment of each mate when
// a pair cannot be placed jointly.
//
// A ClusterAligner owns an array of ProgressTrackers, one per read pair in the
// largest expected barcode cluster. Each call to Align runs three stages over
// the trackers of one cluster:
//
//   1. joint seed search, followed by extension toward a cluster-wide target
//      locus chosen by a LocusPolicy;
//   2. secondary enumeration and finalization of the paired result;
//   3. single-end fallback for candidate chimeric pairs.
//
// Secondary results are written into caller-owned buffers. When a buffer is
// too small, Align reports which kind overflowed and sets the tracker's count
// to capacity+1; the caller grows the buffer and calls Align again on the same
// cluster. AlignUntilComplete implements that loop.
package align
