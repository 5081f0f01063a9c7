package addressscanner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Provider exposes one resolved address record without revealing how it is
// found.
type Provider interface {
	// GetAddress resolves the record. Every call scans again.
	GetAddress() (Address, error)

	// Name returns the record name, used in diagnostics.
	Name() string
}

// recordProvider is the Provider built for each registered record.
type recordProvider struct {
	record   AddressRecord
	pattern  *Pattern
	resolver *Resolver
}

// NewProvider validates rec and returns a provider resolving it through
// resolver. A malformed signature is reported here rather than on first use.
func NewProvider(resolver *Resolver, rec AddressRecord) (Provider, error) {
	return newRecordProvider(resolver, rec)
}

func newRecordProvider(resolver *Resolver, rec AddressRecord) (*recordProvider, error) {
	if rec.Name == "" {
		return nil, errors.New("address record has no name")
	}
	if !rec.Policy.valid() {
		return nil, fmt.Errorf("record %s: unknown policy %v", rec.Name, rec.Policy)
	}

	pattern, err := Compile(rec.Pattern)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", rec.Name, err)
	}

	return &recordProvider{
		record:   rec,
		pattern:  pattern,
		resolver: resolver,
	}, nil
}

func (p *recordProvider) GetAddress() (Address, error) {
	region, err := p.resolver.locate()
	if err != nil {
		return 0, err
	}
	return ResolveIn(region, p.pattern, p.record.Offset, p.record.Policy)
}

func (p *recordProvider) Name() string {
	return p.record.Name
}

// Resolution is the outcome of resolving one record in a batch.
type Resolution struct {
	Name    string
	Address Address
	Err     error
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used by ResolveAll.
func WithLogger(logger zerolog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Registry holds the address records of a program, keyed by name, and
// hands out one provider per record.
type Registry struct {
	resolver *Resolver
	logger   zerolog.Logger

	mu        sync.RWMutex
	providers map[string]*recordProvider
	order     []*recordProvider
}

// NewRegistry creates an empty registry resolving through resolver.
func NewRegistry(resolver *Resolver, opts ...RegistryOption) *Registry {
	r := &Registry{
		resolver:  resolver,
		logger:    zerolog.Nop(),
		providers: make(map[string]*recordProvider),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register validates rec and adds it to the registry.
func (r *Registry) Register(rec AddressRecord) (Provider, error) {
	p, err := newRecordProvider(r.resolver, rec)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[rec.Name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRecord, rec.Name)
	}
	r.providers[rec.Name] = p
	r.order = append(r.order, p)

	return p, nil
}

// MustRegister is like Register but panics on error. It is meant for
// records declared in package level variables.
func (r *Registry) MustRegister(rec AddressRecord) Provider {
	p, err := r.Register(rec)
	if err != nil {
		panic(err)
	}
	return p
}

// Lookup returns the provider registered under name.
func (r *Registry) Lookup(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, false
	}
	return p, true
}

// Providers returns every provider in registration order.
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, len(r.order))
	for i, p := range r.order {
		out[i] = p
	}
	return out
}

// Len returns the number of registered records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// ResolveAll resolves every record against a single snapshot of the
// module. Records whose longest exact byte run does not occur in the
// module are reported as ErrNotFound without a full scan. The context is
// checked between records; once it is done the remaining records fail
// with its error.
func (r *Registry) ResolveAll(ctx context.Context) []Resolution {
	r.mu.RLock()
	providers := make([]*recordProvider, len(r.order))
	copy(providers, r.order)
	r.mu.RUnlock()

	results := make([]Resolution, len(providers))
	for i, p := range providers {
		results[i].Name = p.record.Name
	}

	region, err := r.resolver.locate()
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to locate module")
		for i := range results {
			results[i].Err = err
		}
		return results
	}

	r.logger.Debug().
		Str("base", region.Base.String()).
		Int("size", region.Size()).
		Int("records", len(providers)).
		Msg("resolving address records")

	patterns := make([]*Pattern, len(providers))
	for i, p := range providers {
		patterns[i] = p.pattern
	}
	candidates := newAnchorPrefilter(patterns).candidates(region.Bytes())

	for i, p := range providers {
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		if !candidates[i] {
			results[i].Err = ErrNotFound
		} else {
			results[i].Address, results[i].Err = ResolveIn(region, p.pattern, p.record.Offset, p.record.Policy)
		}

		if results[i].Err != nil {
			r.logger.Warn().
				Err(results[i].Err).
				Str("record", p.record.Name).
				Bool("prefiltered", !candidates[i]).
				Msg("failed to resolve address record")
			continue
		}
		r.logger.Debug().
			Str("record", p.record.Name).
			Str("policy", p.record.Policy.String()).
			Str("address", results[i].Address.String()).
			Msg("resolved address record")
	}

	return results
}
