// Package sources decides whether the source archive of a package is
// already present in a local directory.
package sources

import (
	"github.com/StinkyLord/sbom-srcmap/internal/logger"
	"github.com/StinkyLord/sbom-srcmap/internal/model"
)

// Eligible reports whether a component should be checked at all.
type Eligible func(*model.Component) bool

// Matcher annotates components whose source files exist in Dir.
type Matcher struct {
	// Dir is the local source directory. Empty disables the matcher.
	Dir string

	// Eligible selects the components to check. Nil means
	// model.NeedsSource: only components an earlier pass left unresolved.
	Eligible Eligible

	// Patterns restricts candidate files to those matching at least one
	// doublestar glob (e.g. "*.dsc"). Empty keeps every file.
	Patterns []string

	Log logger.Logger
}

// Stats summarises one Match call.
type Stats struct {
	Components int
	Eligible   int
	Annotated  int
	Files      int
}

// New creates a Matcher for dir with the default eligibility.
func New(dir string, log logger.Logger) *Matcher {
	return &Matcher{Dir: dir, Log: log}
}

// Match checks every eligible component against a single listing of Dir
// and sets SourceFileComment on those with a matching file. The slice is
// returned as given; only SourceFileComment is ever written. Nothing is
// written and no filesystem access happens when Dir is empty.
func (m *Matcher) Match(comps []*model.Component) ([]*model.Component, Stats, error) {
	stats := Stats{Components: len(comps)}
	if m.Dir == "" {
		return comps, stats, nil
	}

	idx, err := ListDir(m.Dir, m.Patterns)
	if err != nil {
		return comps, stats, err
	}
	stats.Files = idx.Len()
	m.Log.Debug().Str("dir", m.Dir).Int("files", idx.Len()).Msg("listed source directory")

	eligible := m.Eligible
	if eligible == nil {
		eligible = model.NeedsSource
	}

	for _, c := range comps {
		if !eligible(c) {
			continue
		}
		stats.Eligible++

		file, ok := idx.Lookup(Stem(c.Name, c.Version))
		if !ok {
			m.Log.Debug().Str("component", c.Key()).Msg("no local source file")
			continue
		}
		c.SetSourceFileComment(model.SourcesLocallyAvailable)
		stats.Annotated++
		m.Log.Debug().Str("component", c.Key()).Str("file", file).Msg("sources locally available")
	}

	return comps, stats, nil
}
