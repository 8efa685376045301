package cache

// ScopedKeyer wraps a Keyer with a prefix so several taxonomy sources
// can share one backend without key collisions. The preview server uses
// one scope per served map directory.
//
// Example usage:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "saif:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
// A nil inner falls back to the default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ReportKey generates a prefixed key for a validation report.
func (k *ScopedKeyer) ReportKey(snapshotHash string, opts ReportKeyOpts) string {
	return k.prefix + k.inner.ReportKey(snapshotHash, opts)
}

// ArtifactKey generates a prefixed key for a rendered diagram.
func (k *ScopedKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(snapshotHash, opts)
}

// Ensure ScopedKeyer implements Keyer.
var _ Keyer = (*ScopedKeyer)(nil)
