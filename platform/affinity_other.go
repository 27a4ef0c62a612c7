// +build !linux

package platform

// BindThreadToProcessor is a no-op on hosts without thread affinity.
func BindThreadToProcessor(cpu int) error {
	return nil
}
