package model

import "fmt"

// MapResult classifies how far an earlier pass got in resolving a
// component against the source mapping.
type MapResult int

const (
	MapResultUnset MapResult = iota
	MapResultInvalid
	MapResultFullMatchByHash
	MapResultFullMatchByID
	MapResultMatchByNameAndVersion
	MapResultMatchByName
	MapResultNoMatch
)

var mapResultNames = map[MapResult]string{
	MapResultUnset:                 "",
	MapResultInvalid:               "0-invalid",
	MapResultFullMatchByHash:       "1-full-match-by-hash",
	MapResultFullMatchByID:         "2-full-match-by-id",
	MapResultMatchByNameAndVersion: "3-match-by-name-and-version",
	MapResultMatchByName:           "5-match-by-name",
	MapResultNoMatch:               "9-no-match",
}

// String returns the property value written for the result.
func (r MapResult) String() string {
	if s, ok := mapResultNames[r]; ok {
		return s
	}
	return fmt.Sprintf("MapResult(%d)", int(r))
}

// ParseMapResult converts a stored property value back into a MapResult.
// Unknown values yield MapResultInvalid and an error.
func ParseMapResult(s string) (MapResult, error) {
	for r, name := range mapResultNames {
		if name == s {
			return r, nil
		}
	}
	return MapResultInvalid, fmt.Errorf("unknown MapResult %q", s)
}

// NeedsSource reports whether source is still outstanding for a component
// with this result: nothing matched, or only the name matched so no
// release with the requested version exists yet.
func (r MapResult) NeedsSource() bool {
	return r == MapResultNoMatch || r == MapResultMatchByName
}

// NeedsSource is the default eligibility predicate of the local source pass.
func NeedsSource(c *Component) bool {
	return c.MapResult.NeedsSource()
}
