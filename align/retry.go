package align

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// AlignUntilComplete calls Align on the cluster, doubling the overflowed
// buffer of every unresolved tracker between calls, until the cluster is
// complete. It returns the number of Align calls made. Running out of
// maxRetries retries means the buffer growth policy cannot satisfy the
// cluster, and is reported as an error.
func (ca *ClusterAligner) AlignUntilComplete(pairs []ReadPair, p Params, maxRetries int) (int, error) {
	trackers := ca.trackers[:len(pairs)]
	for calls := 1; ; calls++ {
		o := ca.Align(pairs, p)
		if o == Complete {
			return calls, nil
		}
		if calls > maxRetries {
			return calls, errors.E(errors.Precondition,
				fmt.Sprintf("align: cluster of %d pairs still reports %v after %d calls", len(pairs), o, calls))
		}
		GrowForOutcome(trackers, o)
	}
}
