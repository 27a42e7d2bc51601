package cache

// ScopedKeyer prefixes every key of an inner Keyer. It separates the
// entries of different stores or tenants that share one cache backend.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "sqlite:/var/lib/frags.db:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix. A nil inner keyer
// means the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// Prefix returns the scope prefix.
func (k *ScopedKeyer) Prefix() string { return k.prefix }

// LayoutKey returns the inner layout key with the scope prefix.
func (k *ScopedKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(inputHash, opts)
}
