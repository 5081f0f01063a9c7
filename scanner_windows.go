package addressscanner

import (
	"context"
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Scanner walks the memory of a specific process
type Scanner struct {
	pid           uint32
	processHandle windows.Handle
}

// NewScanner creates a new memory scanner for the specified process ID
func NewScanner(pid uint32) (*Scanner, error) {
	hProcess, err := windows.OpenProcess(
		windows.PROCESS_VM_READ|windows.PROCESS_QUERY_INFORMATION,
		false,
		pid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open process: %w", err)
	}

	return &Scanner{
		pid:           pid,
		processHandle: hProcess,
	}, nil
}

// Close closes the process handle
func (s *Scanner) Close() error {
	if s.processHandle != 0 {
		windows.CloseHandle(s.processHandle)
		s.processHandle = 0
	}
	return nil
}

// GetPID returns the process ID that this scanner is attached to
func (s *Scanner) GetPID() uint32 {
	return s.pid
}

// Scan scans every readable region of the process memory for the signature
func (s *Scanner) Scan(ctx context.Context, opts ScanOptions) error {
	pattern, err := compileScanOptions(opts)
	if err != nil {
		return fmt.Errorf("invalid scan options: %w", err)
	}

	minAddr, maxAddr := opts.addressBounds()

	var mbi windows.MemoryBasicInformation
	address := uint64(minAddr)
	maxAddress := uint64(maxAddr)

	for address < maxAddress {
		// Check if context was cancelled
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err = windows.VirtualQueryEx(s.processHandle, uintptr(address), &mbi, unsafe.Sizeof(mbi))
		if err != nil {
			break
		}

		baseAddr := uint64(mbi.BaseAddress)
		regionSize := uint64(mbi.RegionSize)

		// Check if this memory region is readable
		if s.isReadableRegion(&mbi) {
			err := s.scanRegion(ctx, Address(baseAddr), Address(regionSize), minAddr, maxAddr, pattern, opts.Handler)
			if errors.Is(err, errStopWalk) {
				return nil
			}
			if err != nil {
				return err
			}
		}

		// Move to next region
		address = baseAddr + regionSize
		if regionSize == 0 {
			address++
		}
	}

	return nil
}

// isReadableRegion checks if a memory region is readable
func (s *Scanner) isReadableRegion(mbi *windows.MemoryBasicInformation) bool {
	isReadable := mbi.Protect&(windows.PAGE_READONLY|windows.PAGE_READWRITE|
		windows.PAGE_EXECUTE_READ|windows.PAGE_EXECUTE_READWRITE) != 0
	isGuarded := mbi.Protect&windows.PAGE_GUARD != 0
	isCommitted := mbi.State == windows.MEM_COMMIT

	return isReadable && !isGuarded && isCommitted
}

// scanRegion reads a specific memory region and reports its matches
func (s *Scanner) scanRegion(ctx context.Context, baseAddr, regionSize, minAddr, maxAddr Address,
	pattern *Pattern, handler MatchHandler) error {

	offset, readLength, ok := clampRange(baseAddr, regionSize, minAddr, maxAddr)
	if !ok {
		return nil
	}

	readStart := baseAddr + offset
	buffer := make([]byte, readLength)
	var bytesRead uintptr

	// Read memory region
	err := windows.ReadProcessMemory(s.processHandle, uintptr(readStart), &buffer[0],
		uintptr(readLength), &bytesRead)
	if err != nil || bytesRead == 0 {
		return nil
	}

	return scanBuffer(ctx, readStart, buffer[:bytesRead], pattern, handler)
}
