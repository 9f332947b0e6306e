package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/CycloneDX/cyclonedx-go"
	"github.com/google/go-cmp/cmp"

	"github.com/StinkyLord/sbom-srcmap/internal/bom"
	"github.com/StinkyLord/sbom-srcmap/internal/cdxprop"
	"github.com/StinkyLord/sbom-srcmap/internal/logger"
	"github.com/StinkyLord/sbom-srcmap/internal/model"
	"github.com/StinkyLord/sbom-srcmap/internal/sources"
)

// makeDoc builds a document with one source package per name/version
// pair, all left unresolved by the earlier passes.
func makeDoc(pairs ...string) *bom.Document {
	b := cyclonedx.NewBOM()
	comps := []cyclonedx.Component{}
	for i := 0; i+1 < len(pairs); i += 2 {
		c := cyclonedx.Component{
			Type:       cyclonedx.ComponentTypeLibrary,
			Name:       pairs[i],
			Version:    pairs[i+1],
			PackageURL: "pkg:deb/debian/" + pairs[i] + "@" + pairs[i+1] + "?arch=source",
		}
		cdxprop.Set(&c, model.MapResultKey, model.MapResultNoMatch.String())
		comps = append(comps, c)
	}
	b.Components = &comps
	return bom.NewDocument(b, logger.Nop())
}

func sourceComment(doc *bom.Document, i int) string {
	v, _ := cdxprop.Get(&(*doc.BOM.Components)[i], model.SourceFileCommentKey)
	return v
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("test"), 0644); err != nil {
			t.Fatalf("cannot write fixture %s: %v", n, err)
		}
	}
}

func TestRunLocalSources(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "testpkg_1.0-1.dsc", "testpkg_1.0.orig.tar.gz")
	doc := makeDoc("testpkg", "2:1.0-1", "other", "3.0-1")

	r := New(logger.Nop(), &LocalSourcesPass{Dir: dir, Log: logger.Nop()})
	res, err := r.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := sourceComment(doc, 0); got != model.SourcesLocallyAvailable {
		t.Errorf("testpkg SourceFileComment = %q", got)
	}
	if got := sourceComment(doc, 1); got != "" {
		t.Errorf("other SourceFileComment = %q, want unset", got)
	}

	want := &Result{
		Stats:     []Stats{{Pass: "local-sources", Components: 2, Eligible: 2, Annotated: 1}},
		PassesRun: []string{"local-sources"},
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestRunWithoutSourceDir(t *testing.T) {
	doc := makeDoc("testpkg", "1.0-1")
	before := *(*doc.BOM.Components)[0].Properties

	r := New(logger.Nop(), &LocalSourcesPass{Log: logger.Nop()})
	res, err := r.Run(context.Background(), doc)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if diff := cmp.Diff([]string{"local-sources"}, res.PassesSkipped); diff != "" {
		t.Errorf("PassesSkipped mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(before, *(*doc.BOM.Components)[0].Properties); diff != "" {
		t.Errorf("properties changed without a source dir (-before +after):\n%s", diff)
	}
}

func TestRunUnreadableDirectory(t *testing.T) {
	doc := makeDoc("testpkg", "1.0-1")
	r := New(logger.Nop(), &LocalSourcesPass{Dir: filepath.Join(t.TempDir(), "missing"), Log: logger.Nop()})

	_, err := r.Run(context.Background(), doc)
	if !errors.Is(err, sources.ErrDirectoryUnreadable) {
		t.Fatalf("err = %v, want ErrDirectoryUnreadable", err)
	}
	if got := sourceComment(doc, 0); got != "" {
		t.Errorf("SourceFileComment = %q after failed run", got)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(logger.Nop(), &LocalSourcesPass{Dir: t.TempDir()}).Run(ctx, makeDoc("a", "1"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "testpkg_1.0-1.dsc")
	doc := makeDoc("testpkg", "1.0-1")
	r := New(logger.Nop(), &LocalSourcesPass{Dir: dir})

	for i := 0; i < 2; i++ {
		if _, err := r.Run(context.Background(), doc); err != nil {
			t.Fatalf("Run %d: %v", i+1, err)
		}
	}
	if n := len(*(*doc.BOM.Components)[0].Properties); n != 2 {
		t.Errorf("component has %d properties after two runs, want 2", n)
	}
}

func TestRunAll(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a_1.dsc", "c_3.dsc")
	docs := []*bom.Document{makeDoc("a", "1"), makeDoc("b", "2"), makeDoc("c", "1:3")}

	results := New(logger.Nop(), &LocalSourcesPass{Dir: dir}).RunAll(context.Background(), docs)

	wantAnnotated := []int{1, 0, 1}
	for i, dr := range results {
		if dr.Err != nil {
			t.Fatalf("doc %d: %v", i, dr.Err)
		}
		if dr.Index != i {
			t.Errorf("results[%d].Index = %d", i, dr.Index)
		}
		if got := dr.Result.Stats[0].Annotated; got != wantAnnotated[i] {
			t.Errorf("doc %d annotated = %d, want %d", i, got, wantAnnotated[i])
		}
	}
}
