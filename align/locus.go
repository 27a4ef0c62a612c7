package align

import (
	"sort"

	"github.com/grailbio/base/errors"
)

// LocusPolicy picks the cluster-wide target locus that directs the extension
// step of every pair still in joint search. Reads of one barcode come from a
// few long molecules, so a locus shared by many pairs of the cluster is a
// good place to look for pairs whose own seeds are weak.
type LocusPolicy interface {
	// TargetLocus returns the target for the given in-progress loci, or
	// InvalidGenomeLocation to let every pair extend toward its own locus.
	// loci may contain InvalidGenomeLocation entries and must not be
	// modified.
	TargetLocus(loci []GenomeLocation) GenomeLocation
}

// NoBias never picks a target: each pair extends toward its own locus.
type NoBias struct{}

// TargetLocus implements LocusPolicy.
func (NoBias) TargetLocus([]GenomeLocation) GenomeLocation { return InvalidGenomeLocation }

// MedianLocus targets the median of the valid loci.
type MedianLocus struct {
	sorted []GenomeLocation
}

// TargetLocus implements LocusPolicy.
func (m *MedianLocus) TargetLocus(loci []GenomeLocation) GenomeLocation {
	m.sorted = sortedValidLoci(m.sorted, loci)
	if len(m.sorted) == 0 {
		return InvalidGenomeLocation
	}
	return m.sorted[(len(m.sorted)-1)/2]
}

// DensestWindow targets the middle of the window of at most MaxSpan bases
// that contains the most loci, provided it contains at least MinPairs of
// them. This approximates the position of the barcode's dominant molecule.
type DensestWindow struct {
	MaxSpan  uint64
	MinPairs int

	sorted []GenomeLocation
}

// TargetLocus implements LocusPolicy.
func (d *DensestWindow) TargetLocus(loci []GenomeLocation) GenomeLocation {
	d.sorted = sortedValidLoci(d.sorted, loci)
	s := d.sorted
	bestStart, bestLen := 0, 0
	start := 0
	for end := range s {
		for uint64(s[end]-s[start]) > d.MaxSpan {
			start++
		}
		if n := end - start + 1; n > bestLen {
			bestStart, bestLen = start, n
		}
	}
	if bestLen == 0 || bestLen < d.MinPairs {
		return InvalidGenomeLocation
	}
	return s[bestStart+(bestLen-1)/2]
}

func sortedValidLoci(dst, loci []GenomeLocation) []GenomeLocation {
	dst = dst[:0]
	for _, l := range loci {
		if l != InvalidGenomeLocation {
			dst = append(dst, l)
		}
	}
	sort.Slice(dst, func(i, j int) bool { return dst[i] < dst[j] })
	return dst
}

// NewLocusPolicy returns the policy with the given name: "none", "median" or
// "densest". The densest-window policy is parameterized by
// opts.MaxClusterSpan and opts.MinPairsPerCluster.
func NewLocusPolicy(name string, opts Opts) (LocusPolicy, error) {
	switch name {
	case "", "none":
		return NoBias{}, nil
	case "median":
		return &MedianLocus{}, nil
	case "densest":
		return &DensestWindow{MaxSpan: opts.MaxClusterSpan, MinPairs: opts.MinPairsPerCluster}, nil
	}
	return nil, errors.E(errors.Invalid, "unknown locus policy:", name)
}
