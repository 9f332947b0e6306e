// Package pipeline runs the mapping passes over CycloneDX documents.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/StinkyLord/sbom-srcmap/internal/bom"
	"github.com/StinkyLord/sbom-srcmap/internal/logger"
)

// Pass is the interface every mapping pass must implement.
type Pass interface {
	Name() string
	Run(ctx context.Context, doc *bom.Document) (Stats, error)
}

// Stats summarises what one pass did to a document.
type Stats struct {
	Pass       string
	Components int
	Eligible   int
	Annotated  int

	// Skipped is set when the pass had nothing to do (e.g. it is not
	// configured).
	Skipped bool
}

// Result holds the per-pass statistics of a run and which passes fired.
type Result struct {
	Stats         []Stats
	PassesRun     []string
	PassesSkipped []string
}

// Runner applies a fixed list of passes, in order, to a document.
type Runner struct {
	Passes []Pass
	Log    logger.Logger
}

// New creates a Runner.
func New(log logger.Logger, passes ...Pass) *Runner {
	return &Runner{Passes: passes, Log: log}
}

// Run executes every pass against doc and syncs the annotations back into
// the BOM. The first failing pass aborts the run; the document is not
// synced in that case.
func (r *Runner) Run(ctx context.Context, doc *bom.Document) (*Result, error) {
	res := &Result{}
	for _, p := range r.Passes {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		r.Log.Debug().Str("pass", p.Name()).Msg("running pass")
		st, err := p.Run(ctx, doc)
		if err != nil {
			return res, fmt.Errorf("pass %s: %w", p.Name(), err)
		}
		st.Pass = p.Name()
		res.Stats = append(res.Stats, st)

		if st.Skipped {
			res.PassesSkipped = append(res.PassesSkipped, p.Name())
			continue
		}
		res.PassesRun = append(res.PassesRun, p.Name())
		r.Log.Info().
			Str("pass", p.Name()).
			Int("components", st.Components).
			Int("eligible", st.Eligible).
			Int("annotated", st.Annotated).
			Msg("pass finished")
	}

	doc.Sync()
	return res, nil
}

// DocResult is the outcome of running the pipeline on one of several
// documents.
type DocResult struct {
	Index  int
	Result *Result
	Err    error
}

// RunAll runs the pipeline over independent documents concurrently. Each
// document gets its own pass invocations, so nothing is shared between
// them. Results are returned in input order.
func (r *Runner) RunAll(ctx context.Context, docs []*bom.Document) []DocResult {
	resultCh := make(chan DocResult, len(docs))
	var wg sync.WaitGroup

	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc *bom.Document) {
			defer wg.Done()
			res, err := r.Run(ctx, doc)
			resultCh <- DocResult{Index: i, Result: res, Err: err}
		}(i, doc)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	out := make([]DocResult, len(docs))
	for dr := range resultCh {
		out[dr.Index] = dr
	}
	return out
}
