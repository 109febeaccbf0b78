package container

import "sync/atomic"

var current atomic.Pointer[Container]

// SetCurrent makes c the process-wide container returned by Current. Nothing
// in this package reads it implicitly; it exists for code that has no other
// way to reach the application (e.g. values rebuilt from storage).
func SetCurrent(c *Container) {
	current.Store(c)
}

// Current returns the container set by SetCurrent, or nil.
func Current() *Container {
	return current.Load()
}

// FlushCurrent flushes the current container and clears the reference.
func FlushCurrent() {
	if c := current.Swap(nil); c != nil {
		c.Flush()
	}
}
