//go:build !windows && !linux

package addressscanner

func locateCurrentModule() (Region, error) {
	return Region{}, ErrUnsupportedPlatform
}

func snapshotProcessModule(pid uint32) (Region, error) {
	return Region{}, ErrUnsupportedPlatform
}
