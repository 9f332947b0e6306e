// Package bom reads and writes CycloneDX documents and exposes their
// components to the mapping passes.
package bom

import (
	"github.com/CycloneDX/cyclonedx-go"
	packageurl "github.com/package-url/packageurl-go"

	"github.com/StinkyLord/sbom-srcmap/internal/cdxprop"
	"github.com/StinkyLord/sbom-srcmap/internal/logger"
	"github.com/StinkyLord/sbom-srcmap/internal/model"
)

// Document pairs a decoded CycloneDX BOM with the model view the passes
// work on. Model components keep the document order, nested components
// following their parent.
type Document struct {
	BOM *cyclonedx.BOM

	comps  []*model.Component
	cdx    []*cyclonedx.Component
	loaded []model.MapResult
}

// NewDocument builds the model view of b.
func NewDocument(b *cyclonedx.BOM, log logger.Logger) *Document {
	d := &Document{BOM: b}
	if b != nil && b.Components != nil {
		d.collect(*b.Components, log)
	}
	return d
}

func (d *Document) collect(comps []cyclonedx.Component, log logger.Logger) {
	for i := range comps {
		c := &comps[i]
		m := toModel(c, log)
		d.comps = append(d.comps, m)
		d.cdx = append(d.cdx, c)
		d.loaded = append(d.loaded, m.MapResult)
		if c.Components != nil {
			d.collect(*c.Components, log)
		}
	}
}

// Components returns the model components. Passes may annotate them in
// place; Sync copies the annotations back into the BOM.
func (d *Document) Components() []*model.Component {
	return d.comps
}

// Sync writes pass-owned fields of every model component back into the
// CycloneDX properties. Unset fields are left untouched, never cleared,
// and MapResult is only rewritten when a pass changed it.
func (d *Document) Sync() {
	for i, m := range d.comps {
		c := d.cdx[i]
		if m.MapResult != d.loaded[i] && m.MapResult != model.MapResultUnset {
			cdxprop.Set(c, model.MapResultKey, m.MapResult.String())
		}
		if m.SourceFileComment != nil {
			cdxprop.Set(c, model.SourceFileCommentKey, *m.SourceFileComment)
		}
		for k, v := range m.Extra {
			cdxprop.Set(c, k, v)
		}
	}
}

// toModel converts a CycloneDX component. Name and version missing from
// the component are taken from its purl.
func toModel(c *cyclonedx.Component, log logger.Logger) *model.Component {
	m := &model.Component{
		Name:    c.Name,
		Version: c.Version,
		PURL:    c.PackageURL,
	}

	if c.PackageURL != "" {
		p, err := packageurl.FromString(c.PackageURL)
		if err != nil {
			log.Warn().Str("purl", c.PackageURL).Str("bom-ref", c.BOMRef).Err(err).Msg("invalid purl")
		} else {
			if m.Name == "" {
				m.Name = p.Name
			}
			if m.Version == "" {
				m.Version = p.Version
			}
		}
	}

	props := cdxprop.All(c)
	if v, ok := props[model.MapResultKey]; ok {
		r, err := model.ParseMapResult(v)
		if err != nil {
			log.Warn().Str("component", m.Key()).Err(err).Msg("ignoring MapResult")
		}
		m.MapResult = r
		delete(props, model.MapResultKey)
	}
	if v, ok := props[model.SourceFileCommentKey]; ok {
		m.SourceFileComment = &v
		delete(props, model.SourceFileCommentKey)
	}
	if len(props) > 0 {
		m.Extra = props
	}
	return m
}
