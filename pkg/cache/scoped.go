package cache

// ScopedKeyer wraps a Keyer with a prefix so callers sharing one backend
// get separate namespaces, such as per-project areas in a shared Redis.
//
// Example usage:
//
//	// Project-specific keys on the server
//	projKeyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "proj:demo:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. The prefix is prepended to
// every generated key. A nil inner keyer falls back to the default one.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PlotKey generates a prefixed key for a plot set.
func (k *ScopedKeyer) PlotKey(boardHash string, opts PlotKeyOpts) string {
	return k.prefix + k.inner.PlotKey(boardHash, opts)
}

// StackupKey generates a prefixed key for a stackup rendering.
func (k *ScopedKeyer) StackupKey(opts StackupKeyOpts) string {
	return k.prefix + k.inner.StackupKey(opts)
}
