package pipeline

import (
	"context"

	"github.com/StinkyLord/sbom-srcmap/internal/bom"
	"github.com/StinkyLord/sbom-srcmap/internal/logger"
	"github.com/StinkyLord/sbom-srcmap/internal/sources"
)

// LocalSourcesPass marks components whose source files are already present
// in a local directory (pass 3 of the mapping).
type LocalSourcesPass struct {
	Dir      string
	Patterns []string
	Eligible sources.Eligible
	Log      logger.Logger
}

func (p *LocalSourcesPass) Name() string { return "local-sources" }

func (p *LocalSourcesPass) Run(_ context.Context, doc *bom.Document) (Stats, error) {
	if p.Dir == "" {
		return Stats{Components: len(doc.Components()), Skipped: true}, nil
	}

	m := &sources.Matcher{
		Dir:      p.Dir,
		Eligible: p.Eligible,
		Patterns: p.Patterns,
		Log:      p.Log,
	}
	_, st, err := m.Match(doc.Components())
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Components: st.Components,
		Eligible:   st.Eligible,
		Annotated:  st.Annotated,
	}, nil
}
