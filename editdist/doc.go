// Package editdist computes bounded edit distances between reads and
// reference text, and provides the per-worker scoring cache shared by every
// phase engine of a cluster aligner.
package editdist
