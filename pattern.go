package addressscanner

import (
	"fmt"
	"strconv"
	"strings"
)

// StringToPattern converts a search string to an AOB (Array of Bytes) signature.
// Wildcard characters (?) are converted to "??". The signature is padded with
// wildcards to the specified length.
func StringToPattern(searchStr string, minLength int) string {
	if searchStr == "" {
		return ""
	}

	var builder strings.Builder
	bytes := []byte(searchStr)
	patternLength := len(bytes)
	if minLength > patternLength {
		patternLength = minLength
	}

	for i := 0; i < patternLength; i++ {
		if i > 0 {
			builder.WriteString(" ")
		}

		if i < len(bytes) && bytes[i] != '?' {
			builder.WriteString(fmt.Sprintf("%02X", bytes[i]))
		} else {
			builder.WriteString("??")
		}
	}

	return builder.String()
}

// Pattern is a compiled signature. Each position is either an exact byte
// or a wildcard matching any byte. A Pattern is immutable and safe to
// share between goroutines.
type Pattern struct {
	patternBytes []byte
	wildcardMask []bool
	// skip is the Horspool shift for each possible byte under the
	// window's last position.
	skip [256]int
}

// Compile parses a whitespace separated signature such as
// "48 8B 05 ?? ?? ?? ?? 48 8B D9". Each token is two hex digits or one
// of the wildcards "*", "**", "?" and "??".
func Compile(signature string) (*Pattern, error) {
	parts := strings.Fields(signature)
	if len(parts) == 0 {
		return nil, ErrEmptySignature
	}

	patternBytes := make([]byte, len(parts))
	wildcardMask := make([]bool, len(parts))

	for i, part := range parts {
		if isWildcardToken(part) {
			wildcardMask[i] = true
			continue
		}

		b, ok := parseHexByte(part)
		if !ok {
			return nil, &InvalidTokenError{Token: part, Position: i}
		}
		patternBytes[i] = b
	}

	p := &Pattern{
		patternBytes: patternBytes,
		wildcardMask: wildcardMask,
	}
	p.buildSkipTable()

	return p, nil
}

// MustCompile is like Compile but panics if the signature is malformed.
// It simplifies package level declarations of known signatures.
func MustCompile(signature string) *Pattern {
	p, err := Compile(signature)
	if err != nil {
		panic(fmt.Sprintf("addressscanner: Compile(%q): %v", signature, err))
	}
	return p
}

func isWildcardToken(token string) bool {
	switch token {
	case "*", "**", "?", "??":
		return true
	}
	return false
}

func parseHexByte(token string) (byte, bool) {
	if len(token) != 2 {
		return 0, false
	}
	v, err := strconv.ParseUint(token, 16, 8)
	if err != nil {
		return 0, false
	}
	return byte(v), true
}

func (p *Pattern) buildSkipTable() {
	n := len(p.patternBytes)

	// A wildcard accepts every byte, so no shift may jump past the
	// rightmost wildcard before the last position.
	maxShift := n
	for i := n - 2; i >= 0; i-- {
		if p.wildcardMask[i] {
			maxShift = n - 1 - i
			break
		}
	}

	for b := range p.skip {
		p.skip[b] = maxShift
	}
	for i := n - maxShift; i < n-1; i++ {
		if !p.wildcardMask[i] {
			p.skip[p.patternBytes[i]] = n - 1 - i
		}
	}
}

// Len returns the number of positions in the pattern.
func (p *Pattern) Len() int {
	return len(p.patternBytes)
}

// IsWildcard reports whether position i matches any byte.
func (p *Pattern) IsWildcard(i int) bool {
	return p.wildcardMask[i]
}

// Byte returns the exact byte expected at position i. It is zero for
// wildcard positions.
func (p *Pattern) Byte(i int) byte {
	return p.patternBytes[i]
}

// String renders the pattern in canonical form: upper case hex bytes and
// "?" for wildcards, separated by single spaces.
func (p *Pattern) String() string {
	var builder strings.Builder
	for i, b := range p.patternBytes {
		if i > 0 {
			builder.WriteByte(' ')
		}
		if p.wildcardMask[i] {
			builder.WriteByte('?')
		} else {
			builder.WriteString(fmt.Sprintf("%02X", b))
		}
	}
	return builder.String()
}

// Equal reports whether both patterns match exactly the same inputs.
func (p *Pattern) Equal(other *Pattern) bool {
	if p.Len() != other.Len() {
		return false
	}
	for i := range p.patternBytes {
		if p.wildcardMask[i] != other.wildcardMask[i] {
			return false
		}
		if !p.wildcardMask[i] && p.patternBytes[i] != other.patternBytes[i] {
			return false
		}
	}
	return true
}

// anchor returns the longest run of exact bytes in the pattern and its
// position. It returns nil for an all-wildcard pattern.
func (p *Pattern) anchor() ([]byte, int) {
	bestStart, bestLen := 0, 0
	start := -1
	for i := 0; i <= len(p.patternBytes); i++ {
		if i < len(p.patternBytes) && !p.wildcardMask[i] {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start > bestLen {
			bestStart, bestLen = start, i-start
		}
		start = -1
	}
	if bestLen == 0 {
		return nil, 0
	}
	return p.patternBytes[bestStart : bestStart+bestLen], bestStart
}
