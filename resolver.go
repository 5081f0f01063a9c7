package addressscanner

import (
	"fmt"
	"strings"
)

// Policy selects how a record treats more than one match.
type Policy int

const (
	// PolicyFirst takes the lowest matching address. It is the default.
	PolicyFirst Policy = iota
	// PolicyUnique requires exactly one match and fails with
	// ErrMultipleMatches otherwise. It guards against a signature that
	// later starts matching a second location.
	PolicyUnique
)

func (p Policy) String() string {
	switch p {
	case PolicyFirst:
		return "first"
	case PolicyUnique:
		return "unique"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

func (p Policy) valid() bool {
	return p == PolicyFirst || p == PolicyUnique
}

// ParsePolicy parses "first" or "unique". An empty string selects PolicyFirst.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return PolicyFirst, nil
	case "unique":
		return PolicyUnique, nil
	}
	return 0, fmt.Errorf("unknown policy %q (want first or unique)", s)
}

// AddressRecord binds a named logical target to a signature and a signed
// byte offset applied to the match address.
type AddressRecord struct {
	Name    string
	Pattern string
	Offset  int64
	Policy  Policy
}

// Resolver turns address records into addresses inside the region supplied
// by its locator. It holds no state besides the locator and resolves from
// scratch on every call.
type Resolver struct {
	locator Locator
}

// NewResolver creates a resolver scanning the regions returned by locator.
func NewResolver(locator Locator) *Resolver {
	return &Resolver{locator: locator}
}

// Resolve resolves rec according to rec.Policy.
func (r *Resolver) Resolve(rec AddressRecord) (Address, error) {
	return r.resolve(rec, rec.Policy)
}

// ResolveFirst compiles the record's signature, locates the module, and
// returns the first match plus the record's offset. Later matches are
// ignored.
func (r *Resolver) ResolveFirst(rec AddressRecord) (Address, error) {
	return r.resolve(rec, PolicyFirst)
}

// ResolveUnique is ResolveFirst with a uniqueness check: the signature must
// match exactly once in the module.
func (r *Resolver) ResolveUnique(rec AddressRecord) (Address, error) {
	return r.resolve(rec, PolicyUnique)
}

func (r *Resolver) resolve(rec AddressRecord, policy Policy) (Address, error) {
	pattern, err := Compile(rec.Pattern)
	if err != nil {
		return 0, err
	}

	region, err := r.locate()
	if err != nil {
		return 0, err
	}

	return ResolveIn(region, pattern, rec.Offset, policy)
}

func (r *Resolver) locate() (Region, error) {
	region, err := r.locator.LocatePrimaryModule()
	if err != nil {
		return Region{}, &LocatorError{Err: err}
	}
	return region, nil
}

// ResolveIn scans an already located region and applies offset to the
// match selected by policy.
func ResolveIn(region Region, pattern *Pattern, offset int64, policy Policy) (Address, error) {
	switch policy {
	case PolicyFirst:
		addr, err := ScanFirst(region, pattern)
		if err != nil {
			return 0, err
		}
		return addr.Add(offset), nil
	case PolicyUnique:
		addrs, err := ScanAll(region, pattern)
		if err != nil {
			return 0, err
		}
		if len(addrs) > 1 {
			return 0, &MultipleMatchesError{Count: len(addrs)}
		}
		return addrs[0].Add(offset), nil
	}
	return 0, fmt.Errorf("unknown policy %v", policy)
}
