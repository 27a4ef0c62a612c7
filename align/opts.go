package align

// Opts configures a ClusterAligner. It is fixed for the lifetime of the
// aligner.
type Opts struct {
	// MinReadLength is the shortest read that takes part in any search.
	// Shorter reads are reported NotFound.
	MinReadLength int
	// ForceSpacing requires mates to be placed with the configured spacing and
	// orientation. When set, a pair finalized by the paired search is never
	// sent to the single-end fallback.
	ForceSpacing bool
	// MaxBarcodeSize is the largest cluster a single Align call accepts. It
	// sizes the tracker array.
	MaxBarcodeSize int
	// MinPairsPerCluster and MaxClusterSpan parameterize the DensestWindow
	// locus policy: a target locus is used only when at least
	// MinPairsPerCluster pairs lie within MaxClusterSpan bases.
	MinPairsPerCluster int
	MaxClusterSpan     uint64
	// InitialSecondaryCapacity and InitialSingleSecondaryCapacity are the
	// initial secondary buffer sizes of newly allocated trackers.
	InitialSecondaryCapacity       int
	InitialSingleSecondaryCapacity int
	// CacheEntries bounds the shared edit-distance cache.
	CacheEntries int
}

// DefaultOpts sets the default values of Opts.
var DefaultOpts = Opts{
	MinReadLength:                  50,
	ForceSpacing:                   false,
	MaxBarcodeSize:                 1024,
	MinPairsPerCluster:             3,
	MaxClusterSpan:                 100000,
	InitialSecondaryCapacity:       16,
	InitialSingleSecondaryCapacity: 16,
	CacheEntries:                   1 << 16,
}

// Params are the per-call limits of Align.
type Params struct {
	// MaxEditDistanceForSecondary is the edit distance ceiling, relative to
	// the best alignment, for reporting a secondary alignment.
	MaxEditDistanceForSecondary int
	// MaxSecondaryToReturn caps the number of secondary alignments reported
	// per pair (or per read, in the fallback).
	MaxSecondaryToReturn int
}

// ChimericMAPQDivisor divides the mapping quality of mates placed by the
// single-end fallback.
const ChimericMAPQDivisor = 3
