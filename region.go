package addressscanner

// Region is a read-only view of a contiguous block of memory starting at
// Base. The caller guarantees the memory behind the view stays mapped and
// readable while it is scanned; the region never owns it.
type Region struct {
	Base Address
	data []byte
}

// NewRegion returns a region describing data as if it were loaded at base.
func NewRegion(base Address, data []byte) Region {
	return Region{Base: base, data: data}
}

// Size returns the number of bytes in the region.
func (r Region) Size() int {
	return len(r.data)
}

// End returns the first address past the region.
func (r Region) End() Address {
	return r.Base + Address(len(r.data))
}

// At returns the byte at offset from Base. ok is false when offset lies
// outside the region.
func (r Region) At(offset int) (b byte, ok bool) {
	if offset < 0 || offset >= len(r.data) {
		return 0, false
	}
	return r.data[offset], true
}

// Contains reports whether addr lies inside the region.
func (r Region) Contains(addr Address) bool {
	return addr >= r.Base && addr < r.End()
}

// Bytes returns the underlying view. The slice aliases the scanned memory
// and must not be modified.
func (r Region) Bytes() []byte {
	return r.data
}
