package align

import (
	"fmt"
)

// Stats counts what a ClusterAligner did.
type Stats struct {
	// AlignCalls is the number of Align calls, including retries.
	AlignCalls int
	// Clusters is the number of Align calls that returned Complete.
	Clusters int
	// Pairs is the number of pairs in completed clusters.
	Pairs int
	// Undersized counts pairs whose mates were both too short to align.
	Undersized int
	// Joint counts pairs placed by the paired search.
	Joint int
	// ForcedSpacing counts pairs resolved by the paired search under forced
	// spacing.
	ForcedSpacing int
	// Fallback counts pairs resolved by the single-end fallback.
	Fallback int
	// EarlyStops counts pairs whose paired search stopped in the seed phase.
	EarlyStops int
	// PairOverflows and SingleOverflows count buffer overflows.
	PairOverflows   int
	SingleOverflows int
}

// Merge adds the field values of the two Stats objects and creates new Stats.
func (s Stats) Merge(o Stats) Stats {
	s.AlignCalls += o.AlignCalls
	s.Clusters += o.Clusters
	s.Pairs += o.Pairs
	s.Undersized += o.Undersized
	s.Joint += o.Joint
	s.ForcedSpacing += o.ForcedSpacing
	s.Fallback += o.Fallback
	s.EarlyStops += o.EarlyStops
	s.PairOverflows += o.PairOverflows
	s.SingleOverflows += o.SingleOverflows
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("clusters=%d pairs=%d calls=%d undersized=%d joint=%d forced=%d fallback=%d earlystop=%d overflow(pair=%d single=%d)",
		s.Clusters, s.Pairs, s.AlignCalls, s.Undersized, s.Joint, s.ForcedSpacing, s.Fallback, s.EarlyStops,
		s.PairOverflows, s.SingleOverflows)
}
