package addressscanner

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// mapping is one line of a Linux /proc/<pid>/maps file.
type mapping struct {
	Start Address
	End   Address
	Perms string
	Path  string
}

func (m mapping) readable() bool {
	return len(m.Perms) > 0 && m.Perms[0] == 'r'
}

// parseMaps reads the /proc/<pid>/maps format:
//
//	55d0c0a00000-55d0c0a02000 r--p 00000000 08:01 1049 /usr/bin/cat
func parseMaps(r io.Reader) ([]mapping, error) {
	var mappings []mapping

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 5 {
			continue
		}

		bounds := strings.SplitN(fields[0], "-", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("malformed address range: %s", fields[0])
		}
		start, err := strconv.ParseUint(bounds[0], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed start address %s: %w", bounds[0], err)
		}
		end, err := strconv.ParseUint(bounds[1], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed end address %s: %w", bounds[1], err)
		}

		m := mapping{
			Start: Address(start),
			End:   Address(end),
			Perms: fields[1],
		}
		if len(fields) >= 6 {
			m.Path = strings.Join(fields[5:], " ")
		}
		mappings = append(mappings, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read memory maps: %w", err)
	}

	return mappings, nil
}

// moduleSpan returns the contiguous readable run of mappings backed by
// path, starting at the lowest one. Gaps and unreadable segments end the
// run so the span can always be read in one piece.
func moduleSpan(mappings []mapping, path string) (Address, Address, error) {
	var start, end Address
	found := false

	for _, m := range mappings {
		if m.Path != path {
			continue
		}
		if !found {
			if !m.readable() {
				continue
			}
			start, end = m.Start, m.End
			found = true
			continue
		}
		if m.Start != end || !m.readable() {
			break
		}
		end = m.End
	}

	if !found {
		return 0, 0, fmt.Errorf("no readable mapping for %s", path)
	}
	return start, end, nil
}
