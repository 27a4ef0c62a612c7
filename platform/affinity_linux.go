// +build linux

package platform

import (
	"github.com/grailbio/base/errors"
	"golang.org/x/sys/unix"
)

// BindThreadToProcessor pins the calling OS thread to the given processor,
// modulo the number of processors. The caller must hold the thread with
// runtime.LockOSThread.
func BindThreadToProcessor(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu % NumProcessors())
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return errors.E(err, "sched_setaffinity")
	}
	return nil
}
