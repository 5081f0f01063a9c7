package addressscanner

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Scanner walks the memory of a specific process
type Scanner struct {
	pid uint32
}

// NewScanner creates a new memory scanner for the specified process ID.
// Reading another process needs ptrace access to it.
func NewScanner(pid uint32) (*Scanner, error) {
	if _, err := os.Stat(fmt.Sprintf("/proc/%d", pid)); err != nil {
		return nil, fmt.Errorf("failed to open process: %w", err)
	}
	return &Scanner{pid: pid}, nil
}

// Close releases the scanner. It holds no handle on Linux.
func (s *Scanner) Close() error {
	return nil
}

// GetPID returns the process ID that this scanner is attached to
func (s *Scanner) GetPID() uint32 {
	return s.pid
}

// Scan scans every readable mapping of the process memory for the signature
func (s *Scanner) Scan(ctx context.Context, opts ScanOptions) error {
	pattern, err := compileScanOptions(opts)
	if err != nil {
		return fmt.Errorf("invalid scan options: %w", err)
	}

	f, err := os.Open(fmt.Sprintf("/proc/%d/maps", s.pid))
	if err != nil {
		return fmt.Errorf("failed to open memory maps: %w", err)
	}
	mappings, err := parseMaps(f)
	f.Close()
	if err != nil {
		return err
	}

	minAddr, maxAddr := opts.addressBounds()
	for _, m := range mappings {
		// Check if context was cancelled
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// [vvar] and friends fault on read even when marked readable
		if !m.readable() || m.Path == "[vvar]" || m.Path == "[vvar_vclock]" {
			continue
		}

		offset, length, ok := clampRange(m.Start, m.End-m.Start, minAddr, maxAddr)
		if !ok {
			continue
		}

		readStart := m.Start + offset
		buffer := make([]byte, length)
		n, err := readProcessMemory(int(s.pid), readStart, buffer)
		if err != nil && n == 0 {
			continue
		}

		err = scanBuffer(ctx, readStart, buffer[:n], pattern, opts.Handler)
		if errors.Is(err, errStopWalk) {
			return nil
		}
		if err != nil {
			return err
		}
	}

	return nil
}
