package addressscanner

import (
	"fmt"
	"strings"
)

// Address represents a memory address
type Address uint64

// String returns the hexadecimal representation of the address
func (a Address) String() string {
	return fmt.Sprintf("0x%X", uint64(a))
}

// Add applies a signed byte offset. The arithmetic wraps like the
// target's pointer arithmetic would.
func (a Address) Add(offset int64) Address {
	return Address(uint64(a) + uint64(offset))
}

// Match represents a single match found by the region walker
type Match struct {
	Address Address
	Data    []byte
}

// Content returns the data as a UTF-8 string, replacing invalid UTF-8 sequences
func (m Match) Content() string {
	return strings.ToValidUTF8(string(m.Data), "")
}

// Hex returns the matched bytes in signature form
func (m Match) Hex() string {
	parts := make([]string, len(m.Data))
	for i, b := range m.Data {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

// MatchHandler is called for each memory match found during scanning.
// Return false to stop the scan, true to continue.
type MatchHandler func(match Match) bool

// ScanOptions contains configuration options for walking a process's memory
type ScanOptions struct {
	// Signature to search for (AOB format)
	Signature string
	// Minimum address to start scanning from (inclusive)
	MinAddress Address
	// Maximum address to scan to (exclusive)
	MaxAddress Address
	// Handler called for each match found
	Handler MatchHandler
}
