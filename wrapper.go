package pwhash

import (
	"fmt"
	"strings"
	"sync"
)

// PrefixWrapper exposes an existing handler under a new scheme name by
// prepending a fixed literal prefix to its canonical string — the {CRYPT}
// envelope family ({CRYPT}abJnggxhB/yWI and friends). The wrapper holds no
// format fields of its own; everything past the prefix is delegated
// verbatim to the wrapped handler.
//
// The wrapped handler may be bound lazily: [NewLazyPrefixWrapper] takes a
// resolver that is invoked once, at first use. Lazy binding lets many
// wrappers share a base-scheme family without caring about construction
// order.
//
// # Thread safety
//
// PrefixWrapper is safe for concurrent use; the lazy resolve is guarded by
// a [sync.Once].
type PrefixWrapper struct {
	scheme  SchemeName
	prefix  string
	resolve func() (Handler, error)

	once    sync.Once
	wrapped Handler
	err     error
}

// NewPrefixWrapper wraps an already-constructed handler.
func NewPrefixWrapper(scheme SchemeName, prefix string, wrapped Handler) (*PrefixWrapper, error) {
	if wrapped == nil {
		return nil, ErrNilHandler
	}
	return NewLazyPrefixWrapper(scheme, prefix, func() (Handler, error) {
		return wrapped, nil
	})
}

// NewLazyPrefixWrapper wraps the handler returned by resolve, which is
// called once at first use.
func NewLazyPrefixWrapper(scheme SchemeName, prefix string, resolve func() (Handler, error)) (*PrefixWrapper, error) {
	if scheme == "" {
		return nil, ErrEmptySchemeName
	}
	if prefix == "" {
		return nil, fmt.Errorf("%w: wrapper prefix must not be empty", ErrInvalidSetting)
	}
	if resolve == nil {
		return nil, ErrNilHandler
	}
	return &PrefixWrapper{scheme: scheme, prefix: prefix, resolve: resolve}, nil
}

// Scheme returns the wrapper's own scheme name.
func (w *PrefixWrapper) Scheme() SchemeName { return w.scheme }

// Prefix returns the literal envelope prefix.
func (w *PrefixWrapper) Prefix() string { return w.prefix }

// handler resolves the wrapped handler, once.
func (w *PrefixWrapper) handler() (Handler, error) {
	w.once.Do(func() {
		w.wrapped, w.err = w.resolve()
		if w.err == nil && w.wrapped == nil {
			w.err = ErrNilHandler
		}
	})
	return w.wrapped, w.err
}

// Identify reports whether hash starts with the prefix and the remainder
// identifies under the wrapped handler. A wrapper whose handler cannot be
// resolved identifies nothing.
func (w *PrefixWrapper) Identify(hash string) bool {
	rest, ok := strings.CutPrefix(hash, w.prefix)
	if !ok {
		return false
	}
	h, err := w.handler()
	if err != nil {
		return false
	}
	return h.Identify(rest)
}

// Parse strips the prefix and delegates.
func (w *PrefixWrapper) Parse(hash string) (Record, error) {
	rest, ok := strings.CutPrefix(hash, w.prefix)
	if !ok {
		return Record{}, fmt.Errorf("%w: missing %s prefix", ErrInvalidHash, w.prefix)
	}
	h, err := w.handler()
	if err != nil {
		return Record{}, err
	}
	return h.Parse(rest)
}

// Render delegates and prepends the prefix.
func (w *PrefixWrapper) Render(rec Record) (string, error) {
	h, err := w.handler()
	if err != nil {
		return "", err
	}
	s, err := h.Render(rec)
	if err != nil {
		return "", err
	}
	return w.prefix + s, nil
}

// Make delegates and prepends the prefix.
func (w *PrefixWrapper) Make(secret string) (string, error) {
	h, err := w.handler()
	if err != nil {
		return "", err
	}
	s, err := h.Make(secret)
	if err != nil {
		return "", err
	}
	return w.prefix + s, nil
}

// MakeWith delegates and prepends the prefix.
func (w *PrefixWrapper) MakeWith(secret string, rec Record) (string, error) {
	h, err := w.handler()
	if err != nil {
		return "", err
	}
	s, err := h.MakeWith(secret, rec)
	if err != nil {
		return "", err
	}
	return w.prefix + s, nil
}

// Check strips the prefix and delegates.
func (w *PrefixWrapper) Check(secret, hash string) (bool, error) {
	rest, ok := strings.CutPrefix(hash, w.prefix)
	if !ok {
		return false, fmt.Errorf("%w: missing %s prefix", ErrInvalidHash, w.prefix)
	}
	h, err := w.handler()
	if err != nil {
		return false, err
	}
	return h.Check(secret, rest)
}
