package di

import "sync"

// ScopeFactory wraps a binding with a lifetime policy.
type ScopeFactory func(Binding) Binding

// TransientScope passes every request to the inner binding.
func TransientScope(inner Binding) Binding { return inner }

// SingletonScope keeps the first successfully built instance. Concurrent
// first requests are serialized, so at most one instance is ever built.
func SingletonScope(inner Binding) Binding {
	return &singletonBinding{inner: inner, guarded: true}
}

// UnguardedSingletonScope is SingletonScope without the lock. It is only safe
// when a context is used from a single goroutine; concurrent first requests
// may each build an instance.
func UnguardedSingletonScope(inner Binding) Binding {
	return &singletonBinding{inner: inner}
}

type singletonBinding struct {
	inner   Binding
	guarded bool

	mu        sync.Mutex
	instance  any
	populated bool
}

// Get returns the cached instance, building it on first use. A failed build
// leaves the binding empty so the next request tries again.
//
// The lock is held while building. Any loop of Provider calls made during
// construction that comes back to a guarded singleton still being built
// deadlocks, whether it targets the same key or passes through other guarded
// singletons. Static validation does not see such loops since Provider edges
// are deferred.
func (s *singletonBinding) Get(r Resolver) (any, error) {
	if s.guarded {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	if s.populated {
		return s.instance, nil
	}
	v, err := s.inner.Get(r)
	if err != nil {
		return nil, err
	}
	s.instance, s.populated = v, true
	return v, nil
}

func (s *singletonBinding) Dependencies() []Ref { return s.inner.Dependencies() }

// Pool returns a scope that hands out size lazily built instances in
// round-robin order. Sizes below one are treated as one.
func Pool(size int) ScopeFactory {
	if size < 1 {
		size = 1
	}
	return func(inner Binding) Binding {
		return &pooledBinding{inner: inner, slots: make([]any, size), filled: make([]bool, size)}
	}
}

type pooledBinding struct {
	inner Binding

	mu     sync.Mutex
	next   int
	slots  []any
	filled []bool
}

func (p *pooledBinding) Get(r Resolver) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.next
	if !p.filled[i] {
		v, err := p.inner.Get(r)
		if err != nil {
			return nil, err
		}
		p.slots[i], p.filled[i] = v, true
	}
	p.next = (i + 1) % len(p.slots)
	return p.slots[i], nil
}

func (p *pooledBinding) Dependencies() []Ref { return p.inner.Dependencies() }
