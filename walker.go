package addressscanner

import (
	"context"
	"errors"
)

// errStopWalk is returned by scanBuffer when the handler asked to stop.
var errStopWalk = errors.New("scan stopped by handler")

// clampRange limits [base, base+size) to [minAddr, maxAddr) and returns the
// offset into the region and the number of bytes to read.
func clampRange(base, size, minAddr, maxAddr Address) (offset, length Address, ok bool) {
	start := base
	if start < minAddr {
		start = minAddr
	}
	end := base + size
	if end > maxAddr {
		end = maxAddr
	}
	if end <= start {
		return 0, 0, false
	}
	return start - base, end - start, true
}

// scanBuffer reports every match of pattern in buffer, which was read from
// base, to handler.
func scanBuffer(ctx context.Context, base Address, buffer []byte, pattern *Pattern, handler MatchHandler) error {
	for _, offset := range pattern.FindAll(buffer) {
		// Check if context was cancelled
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		matchedData := make([]byte, pattern.Len())
		copy(matchedData, buffer[offset:offset+pattern.Len()])

		match := Match{
			Address: base + Address(offset),
			Data:    matchedData,
		}

		// Call handler and stop if requested
		if !handler(match) {
			return errStopWalk
		}
	}

	return nil
}

// addressBounds returns the scan bounds, treating a zero MaxAddress as
// "no upper bound".
func (opts ScanOptions) addressBounds() (Address, Address) {
	if opts.MaxAddress == 0 {
		return opts.MinAddress, ^Address(0)
	}
	return opts.MinAddress, opts.MaxAddress
}

func compileScanOptions(opts ScanOptions) (*Pattern, error) {
	if opts.Handler == nil {
		return nil, errors.New("scan options have no handler")
	}
	return Compile(opts.Signature)
}
