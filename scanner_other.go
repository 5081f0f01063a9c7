//go:build !windows && !linux

package addressscanner

import "context"

// Scanner walks the memory of a specific process
type Scanner struct {
	pid uint32
}

// NewScanner is not supported on this platform.
func NewScanner(pid uint32) (*Scanner, error) {
	return nil, ErrUnsupportedPlatform
}

// Close releases the scanner.
func (s *Scanner) Close() error {
	return nil
}

// GetPID returns the process ID that this scanner is attached to
func (s *Scanner) GetPID() uint32 {
	return s.pid
}

// Scan is not supported on this platform.
func (s *Scanner) Scan(ctx context.Context, opts ScanOptions) error {
	return ErrUnsupportedPlatform
}
