// Package seedaligner is a seed-and-extend read aligner over a genome.Index.
// An Aligner implements both align.PairPhaser and align.SingleAligner.
//
// Each mate is seeded with the non-overlapping k-mers of its forward and
// reverse-complement sequences. Seed hits become candidate start locations,
// kept per mate and strand in llrb trees ordered by location, so finding the
// mate of a candidate is a range query over the allowed spacing. Candidates
// are scored with a bounded edit distance through the cluster's shared
// editdist.Cache.
package seedaligner
