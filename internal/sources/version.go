package sources

import "strings"

// StripEpoch removes a Debian epoch ("2:") from version. Everything up to
// the first colon is the epoch; later colons stay in the result. A version
// without a colon is returned verbatim.
func StripEpoch(version string) string {
	if _, rest, ok := strings.Cut(version, ":"); ok {
		return rest
	}
	return version
}

// Stem returns the filename prefix a source file for name/version must
// start with, e.g. "zlib_1.2.13.dfsg-1" for ("zlib", "1:1.2.13.dfsg-1").
func Stem(name, version string) string {
	return name + "_" + StripEpoch(version)
}
