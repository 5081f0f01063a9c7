package addressscanner

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a pattern has no match in the scanned region.
	ErrNotFound = errors.New("pattern not found")

	// ErrMultipleMatches is returned by uniqueness-checked resolution when
	// more than one candidate address was found.
	ErrMultipleMatches = errors.New("more than one pattern found, expected exactly one")

	// ErrInvalidToken is matched by every *InvalidTokenError.
	ErrInvalidToken = errors.New("invalid signature token")

	// ErrEmptySignature is returned when a signature contains no tokens.
	ErrEmptySignature = errors.New("empty signature")

	// ErrUnsupportedPlatform is returned by locators that have no
	// implementation for the running operating system.
	ErrUnsupportedPlatform = errors.New("module locator not supported on this platform")

	// ErrDuplicateRecord is returned when a record name is registered twice.
	ErrDuplicateRecord = errors.New("duplicate address record")
)

// InvalidTokenError reports a signature token that is neither a two digit
// hex byte nor a wildcard.
type InvalidTokenError struct {
	Token    string
	Position int
}

func (e *InvalidTokenError) Error() string {
	return fmt.Sprintf("invalid signature token %q at position %d", e.Token, e.Position)
}

func (e *InvalidTokenError) Is(target error) bool {
	return target == ErrInvalidToken
}

// MultipleMatchesError carries the number of candidates found by a
// uniqueness-checked resolution.
type MultipleMatchesError struct {
	Count int
}

func (e *MultipleMatchesError) Error() string {
	return fmt.Sprintf("%s (found %d)", ErrMultipleMatches, e.Count)
}

func (e *MultipleMatchesError) Is(target error) bool {
	return target == ErrMultipleMatches
}

// LocatorError wraps a failure of the module locator.
type LocatorError struct {
	Err error
}

func (e *LocatorError) Error() string {
	return fmt.Sprintf("failed to locate module: %v", e.Err)
}

func (e *LocatorError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err means the pattern had no match.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
