package addressscanner

import "errors"

// Locator supplies the memory region that address records are resolved
// against, normally the primary module of a process. Callers must locate
// again whenever the module layout may have changed; nothing here caches.
type Locator interface {
	LocatePrimaryModule() (Region, error)
}

// LocatorFunc adapts a function to the Locator interface.
type LocatorFunc func() (Region, error)

// LocatePrimaryModule calls f.
func (f LocatorFunc) LocatePrimaryModule() (Region, error) {
	return f()
}

// Static returns a locator that always yields data loaded at base.
func Static(base Address, data []byte) Locator {
	region := NewRegion(base, data)
	return LocatorFunc(func() (Region, error) {
		return region, nil
	})
}

// CurrentProcess returns a locator for the primary module of the running
// process. The region is a view of live memory, not a copy.
func CurrentProcess() Locator {
	return LocatorFunc(locateCurrentModule)
}

// ProcessModule returns a locator that snapshots the primary module of the
// process pid on every call.
func ProcessModule(pid uint32) Locator {
	return LocatorFunc(func() (Region, error) {
		return snapshotProcessModule(pid)
	})
}

var errNoModules = errors.New("process has no loaded modules")
