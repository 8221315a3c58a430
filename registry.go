package pwhash

import (
	"fmt"
	"sync"
)

// Registry is a thread-safe scheme registry and dispatcher.
//
// Register one or more named [Handler] implementations, nominate a default
// scheme, and then call [Registry.Make] / [Registry.Check] through the
// Registry for day-to-day hashing operations. Check auto-detects the scheme
// of a stored hash, which is what lets hashes from many formats coexist in
// one credential store.
//
// Detection walks handlers in registration order and stops at the first
// whose Identify accepts the string, so register precise {token} schemes
// first and loose or catch-all schemes (des_crypt, plaintext) last.
//
// # Thread safety
//
// All Registry methods are safe for concurrent use by multiple goroutines.
// A [sync.RWMutex] serialises writes (Register, SetDefault) while allowing
// concurrent reads.
type Registry struct {
	mu       sync.RWMutex
	handlers map[SchemeName]Handler
	order    []SchemeName
	def      SchemeName
}

// NewRegistry creates an empty Registry with the given default scheme name.
// Handlers must be registered with [Registry.Register] before any hashing
// operation is invoked through the Registry.
//
// Use [NewDefaultRegistry] for the batteries-included variant that
// registers every built-in scheme.
func NewRegistry(defaultScheme SchemeName) *Registry {
	return &Registry{
		handlers: make(map[SchemeName]Handler),
		def:      defaultScheme,
	}
}

// NewDefaultRegistry creates a Registry with every built-in scheme
// registered under its canonical name, in auto-detection priority order,
// with FSHP as the default for new hashes.
//
// The {CRYPT} envelope schemes are lazy [PrefixWrapper] instances bound to
// this registry, resolving their base handlers by name at first use.
func NewDefaultRegistry() (*Registry, error) {
	fshpH, err := NewFSHPHandler(DefaultFSHPOptions())
	if err != nil {
		return nil, fmt.Errorf("pwhash: failed to create default fshp handler: %w", err)
	}
	sshaH, err := NewLDAPSaltedSHA1Handler(DefaultSaltedDigestOptions())
	if err != nil {
		return nil, fmt.Errorf("pwhash: failed to create default ssha handler: %w", err)
	}
	smd5H, err := NewLDAPSaltedMD5Handler(DefaultSaltedDigestOptions())
	if err != nil {
		return nil, fmt.Errorf("pwhash: failed to create default smd5 handler: %w", err)
	}
	bcryptH, err := NewBcryptHandler(DefaultBcryptOptions())
	if err != nil {
		return nil, fmt.Errorf("pwhash: failed to create default bcrypt handler: %w", err)
	}

	r := NewRegistry(SchemeFSHP)
	_ = r.Register(fshpH)
	_ = r.Register(sshaH)
	_ = r.Register(smd5H)
	_ = r.Register(NewLDAPSHA1Handler())
	_ = r.Register(NewLDAPMD5Handler())
	if err := registerLDAPCryptSchemes(r); err != nil {
		return nil, err
	}
	_ = r.Register(bcryptH)
	// des_crypt has no identifier token; keep it behind every {token} and
	// MCF scheme. Plaintext is the catch-all and must come last.
	_ = r.Register(NewDESCryptHandler())
	_ = r.Register(NewPlaintextHandler())
	return r, nil
}

// Register adds or replaces a handler under its own scheme name.
// A new name is appended to the detection order; re-registering an existing
// name keeps its position.
func (r *Registry) Register(h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	name := h.Scheme()
	if name == "" {
		return ErrEmptySchemeName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[name]; !ok {
		r.order = append(r.order, name)
	}
	r.handlers[name] = h
	return nil
}

// Handler returns the [Handler] registered under name, or
// [ErrSchemeNotFound] if no such scheme has been registered.
func (r *Registry) Handler(name SchemeName) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSchemeNotFound, name)
	}
	return h, nil
}

// Has reports whether a scheme with the given name is registered.
func (r *Registry) Has(name SchemeName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[name]
	return ok
}

// Schemes returns the registered scheme names in detection order.
func (r *Registry) Schemes() []SchemeName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SchemeName, len(r.order))
	copy(out, r.order)
	return out
}

// SetDefault changes the scheme used by [Registry.Make]. The named scheme
// must already be registered.
func (r *Registry) SetDefault(name SchemeName) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[name]; !ok {
		return fmt.Errorf("%w: %q is not registered; call Register first",
			ErrSchemeNotFound, name)
	}
	r.def = name
	return nil
}

// Default returns the name of the currently configured default scheme.
func (r *Registry) Default() SchemeName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.def
}

// Identify returns the first registered handler, in detection order, whose
// Identify accepts hash. The second return value is false when no scheme
// claims the string.
//
// The handler list is snapshotted before probing: lazy {CRYPT} wrappers
// resolve their base handlers through this registry, and calling back into
// it under the read lock would risk a recursive-RLock deadlock.
func (r *Registry) Identify(hash string) (Handler, bool) {
	r.mu.RLock()
	ordered := make([]Handler, 0, len(r.order))
	for _, name := range r.order {
		ordered = append(ordered, r.handlers[name])
	}
	r.mu.RUnlock()
	for _, h := range ordered {
		if h.Identify(hash) {
			return h, true
		}
	}
	return nil, false
}

// Make hashes secret using the default scheme.
func (r *Registry) Make(secret string) (string, error) {
	h, err := r.resolveDefault()
	if err != nil {
		return "", err
	}
	return h.Make(secret)
}

// MakeWith hashes secret using the default scheme and the explicit
// settings carried by rec.
func (r *Registry) MakeWith(secret string, rec Record) (string, error) {
	h, err := r.resolveDefault()
	if err != nil {
		return "", err
	}
	return h.MakeWith(secret, rec)
}

// Check verifies secret against hash, auto-detecting the scheme that
// produced it. Returns [ErrSchemeNotFound] when no registered scheme
// identifies the hash.
func (r *Registry) Check(secret, hash string) (bool, error) {
	h, ok := r.Identify(hash)
	if !ok {
		return false, fmt.Errorf("%w: no scheme identifies hash", ErrSchemeNotFound)
	}
	return h.Check(secret, hash)
}

func (r *Registry) resolveDefault() (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[r.def]
	if !ok {
		return nil, fmt.Errorf("%w: default scheme %q has not been registered",
			ErrSchemeNotFound, r.def)
	}
	return h, nil
}
