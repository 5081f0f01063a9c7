package addressscanner

// Index returns the offset of the first occurrence of the pattern in data,
// or -1 if there is none.
func (p *Pattern) Index(data []byte) int {
	return p.indexFrom(data, 0)
}

// FindAll returns the offsets of every occurrence of the pattern in data in
// ascending order. Overlapping occurrences are all reported.
func (p *Pattern) FindAll(data []byte) []int {
	var matches []int
	for i := p.indexFrom(data, 0); i >= 0; i = p.indexFrom(data, i+1) {
		matches = append(matches, i)
	}
	return matches
}

// indexFrom runs a Horspool search starting at offset start. Shifts come
// from the byte under the last window position; wildcard positions cap
// the shift (see buildSkipTable), so no starting offset the naive search
// would report is ever skipped.
func (p *Pattern) indexFrom(data []byte, start int) int {
	n := len(p.patternBytes)
	if n == 0 || n > len(data) {
		return -1
	}

	last := len(data) - n
	for i := start; i <= last; {
		if p.matchesAt(data, i) {
			return i
		}
		i += p.skip[data[i+n-1]]
	}

	return -1
}

// matchesAt checks if the pattern matches at the given position. Positions
// are compared from the end, where the skip byte was taken from.
func (p *Pattern) matchesAt(data []byte, pos int) bool {
	for j := len(p.patternBytes) - 1; j >= 0; j-- {
		if p.wildcardMask[j] {
			continue
		}
		if data[pos+j] != p.patternBytes[j] {
			return false
		}
	}
	return true
}

// ScanFirst returns the lowest address in region where the pattern
// matches, or ErrNotFound.
func ScanFirst(region Region, p *Pattern) (Address, error) {
	i := p.Index(region.data)
	if i < 0 {
		return 0, ErrNotFound
	}
	return region.Base + Address(i), nil
}

// ScanAll returns every address in region where the pattern matches, in
// ascending order. An empty result is reported as ErrNotFound.
func ScanAll(region Region, p *Pattern) ([]Address, error) {
	offsets := p.FindAll(region.data)
	if len(offsets) == 0 {
		return nil, ErrNotFound
	}

	addresses := make([]Address, len(offsets))
	for i, offset := range offsets {
		addresses[i] = region.Base + Address(offset)
	}
	return addresses, nil
}
