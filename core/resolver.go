package core

import (
	"errors"
	"fmt"
)

// Resolver turns a configured name into a live object, such as a record
// processor or a formatter. It is supplied by the caller; the core never
// looks names up in global state.
type Resolver interface {
	Resolve(name string) (any, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(name string) (any, error)

// Resolve calls f(name).
func (f ResolverFunc) Resolve(name string) (any, error) {
	return f(name)
}

// MapResolver resolves names from a fixed map.
type MapResolver map[string]any

// Resolve returns the value stored under name.
func (m MapResolver) Resolve(name string) (any, error) {
	v, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotResolved, name)
	}
	return v, nil
}

// ChainResolver tries each resolver in order and returns the first hit.
// Errors other than ErrNotResolved stop the search.
type ChainResolver []Resolver

// Resolve implements Resolver.
func (c ChainResolver) Resolve(name string) (any, error) {
	for _, r := range c {
		if r == nil {
			continue
		}
		v, err := r.Resolve(name)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrNotResolved) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotResolved, name)
}
