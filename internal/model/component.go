// Package model defines the internal data structures shared by the mapping passes.
package model

// Property keys written by the mapping passes.
const (
	MapResultKey         = "MapResult"
	SourceFileCommentKey = "SourceFileComment"
)

// SourcesLocallyAvailable is the SourceFileComment value recorded when a
// matching source file was found in the local source directory.
const SourcesLocallyAvailable = "sources locally available"

type Component struct {
	Name      string    // Source package name (e.g., "openssl", "zlib")
	Version   string    // Package version, may carry a Debian epoch ("2:1.0-1")
	PURL      string    // Package URL (pkg:deb/debian/zlib@1.2.13?arch=source)
	MapResult MapResult // Classification left by an earlier pass

	// SourceFileComment is nil until a pass has determined the source
	// file state. Absence means "not determined / not locally available".
	SourceFileComment *string

	// Extra carries properties owned by other passes, keyed by name
	// without namespace. The matcher never touches it.
	Extra map[string]string
}

// Key returns a normalized key for the component used in logs and
// lookups. It uses the normalized name (lowercase, _ and . replaced with -)
// combined with the raw version, so that:
//   - "libfoo_bar@1.0" and "libfoo-bar@1.0" collapse to the same key
//   - "zlib@1:1.2.13" and "zlib@1.2.13" remain distinct keys
func (c *Component) Key() string {
	return normalizeKey(c.Name) + "@" + c.Version
}

// normalizeKey returns a normalized map key for a name string:
// lowercase, with underscores and dots replaced by hyphens.
func normalizeKey(name string) string {
	result := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		b := name[i]
		if b >= 'A' && b <= 'Z' {
			b += 32
		}
		if b == '_' || b == '.' {
			b = '-'
		}
		result = append(result, b)
	}
	return string(result)
}

// SetSourceFileComment records the source file state. Setting the same
// value twice leaves the component unchanged.
func (c *Component) SetSourceFileComment(comment string) {
	if c.SourceFileComment != nil && *c.SourceFileComment == comment {
		return
	}
	c.SourceFileComment = &comment
}

// SourceComment returns the recorded source file comment, or "" when unset.
func (c *Component) SourceComment() string {
	if c.SourceFileComment == nil {
		return ""
	}
	return *c.SourceFileComment
}
