package platform

import (
	"time"
)

var epoch = time.Now()

// TimeInMillis returns milliseconds since an arbitrary fixed point in the
// process lifetime. It is monotonic.
func TimeInMillis() int64 {
	return int64(time.Since(epoch) / time.Millisecond)
}

// TimeInNanos returns nanoseconds since the same fixed point as
// TimeInMillis. It is monotonic.
func TimeInNanos() int64 {
	return int64(time.Since(epoch))
}
