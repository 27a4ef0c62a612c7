package seedaligner

// Opts configures an Aligner.
type Opts struct {
	// MinSpacing and MaxSpacing bound the distance between the start
	// locations of two mates placed as a pair.
	MinSpacing int
	MaxSpacing int
	// MaxK is the largest edit distance of a reported alignment.
	MaxK int
	// MaxCandidates caps the candidate pairs scored per read pair. The
	// paired search stops early when a pair has more.
	MaxCandidates int
}

// DefaultOpts sets the default values of Opts.
var DefaultOpts = Opts{
	MinSpacing:    0,
	MaxSpacing:    1000,
	MaxK:          8,
	MaxCandidates: 4096,
}

// MaxMAPQ is the mapping quality of an unambiguous alignment.
const MaxMAPQ = 70
