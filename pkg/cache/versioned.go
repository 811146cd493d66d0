package cache

// VersionedKeyer prefixes artifact keys with the build that rendered them.
// Layout and styling change between releases, so a diagram cached by one
// build is never served by another.
//
//	keyer := NewVersionedKeyer(NewDefaultKeyer(), buildinfo.Short())
type VersionedKeyer struct {
	inner Keyer
	build string
}

// NewVersionedKeyer wraps inner, or the default keyer when inner is nil.
// An empty build falls back to "dev".
func NewVersionedKeyer(inner Keyer, build string) *VersionedKeyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if build == "" {
		build = "dev"
	}
	return &VersionedKeyer{inner: inner, build: build}
}

// Build returns the build the keys are scoped to.
func (k *VersionedKeyer) Build() string { return k.build }

// ArtifactKey implements Keyer.
func (k *VersionedKeyer) ArtifactKey(datasetHash, templateHash string, opts ArtifactKeyOpts) string {
	return k.build + ":" + k.inner.ArtifactKey(datasetHash, templateHash, opts)
}
