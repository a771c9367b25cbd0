package cache

// ScopedKeyer wraps a Keyer with a prefix so several servers or payloads can
// share one backend without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "derivgraph:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// RenderKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) RenderKey(payloadHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(payloadHash, opts)
}
