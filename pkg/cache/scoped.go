package cache

import "strings"

// ScopedKeyer prefixes every key of an inner [Keyer]. The CLI wraps the
// keyer with the [cache] prefix setting so deployments sharing one Redis
// stay apart.
type ScopedKeyer struct {
	Keyer
	prefix string
}

// NewScopedKeyer returns inner scoped to prefix, which gains a trailing
// ':' when it has none. A nil inner scopes the [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if prefix != "" && !strings.HasSuffix(prefix, ":") {
		prefix += ":"
	}
	return ScopedKeyer{Keyer: inner, prefix: prefix}
}

func (k ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.Keyer.HTTPKey(namespace, key)
}

func (k ScopedKeyer) GraphKey(rowsHash string, opts GraphKeyOpts) string {
	return k.prefix + k.Keyer.GraphKey(rowsHash, opts)
}

func (k ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.Keyer.LayoutKey(graphHash, opts)
}

func (k ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.Keyer.ArtifactKey(layoutHash, opts)
}
