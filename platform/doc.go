// Package platform provides the low-level capabilities the aligner depends
// on: clocks, single-shot signaling, atomic counters, OS threads with CPU
// affinity, large sequential files and read-only memory-mapped files. The
// semantics are the same on every host; features a host lacks degrade to a
// no-op or a portable fallback.
//
// Mutual exclusion is sync.Mutex and is not wrapped here.
package platform
