package platform

import (
	"runtime"

	"github.com/grailbio/base/log"
)

// NumProcessors returns the number of logical CPUs usable by the process.
func NumProcessors() int {
	return runtime.NumCPU()
}

// StartThread runs fn on a new goroutine that is locked to its own OS thread
// for its lifetime, so BindThreadToProcessor inside fn pins fn.
func StartThread(fn func()) {
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		fn()
	}()
}

// StartBoundThread is StartThread with fn pinned to processor cpu. Failure to
// pin is logged and otherwise ignored.
func StartBoundThread(cpu int, fn func()) {
	StartThread(func() {
		if err := BindThreadToProcessor(cpu); err != nil {
			log.Error.Printf("bind thread to cpu %d: %v", cpu, err)
		}
		fn()
	})
}
