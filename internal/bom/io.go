package bom

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/CycloneDX/cyclonedx-go"
	"github.com/google/uuid"
)

// Tool metadata recorded in written documents.
const (
	ToolVendor = "StinkyLord"
	ToolName   = "sbom-srcmap"
)

// FormatFor returns the file format for path. An explicit format ("json",
// "xml") wins; otherwise the extension decides, defaulting to JSON.
func FormatFor(path, explicit string) (cyclonedx.BOMFileFormat, error) {
	switch strings.ToLower(explicit) {
	case "json", "cdx-json":
		return cyclonedx.BOMFileFormatJSON, nil
	case "xml", "cdx-xml":
		return cyclonedx.BOMFileFormatXML, nil
	case "":
	default:
		return 0, fmt.Errorf("unsupported format %q (supported: json, xml)", explicit)
	}
	if strings.HasSuffix(strings.ToLower(path), ".xml") {
		return cyclonedx.BOMFileFormatXML, nil
	}
	return cyclonedx.BOMFileFormatJSON, nil
}

// Decode reads a BOM from r.
func Decode(r io.Reader, format cyclonedx.BOMFileFormat) (*cyclonedx.BOM, error) {
	b := new(cyclonedx.BOM)
	if err := cyclonedx.NewBOMDecoder(r, format).Decode(b); err != nil {
		return nil, fmt.Errorf("failed to decode CycloneDX document: %w", err)
	}
	return b, nil
}

// Read decodes the BOM at path. If path is "-", it reads from stdin.
func Read(path, format string) (*cyclonedx.BOM, error) {
	f, err := FormatFor(path, format)
	if err != nil {
		return nil, err
	}
	if path == "-" {
		return Decode(os.Stdin, f)
	}

	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open SBOM %q: %w", path, err)
	}
	defer in.Close()
	return Decode(in, f)
}

// Encode writes b to w, pretty printed.
func Encode(w io.Writer, b *cyclonedx.BOM, format cyclonedx.BOMFileFormat) error {
	if err := cyclonedx.NewBOMEncoder(w, format).SetPretty(true).Encode(b); err != nil {
		return fmt.Errorf("failed to encode CycloneDX document: %w", err)
	}
	return nil
}

// Write stamps b with this tool and writes it to outputPath. If outputPath
// is "-", it writes to stdout.
func Write(b *cyclonedx.BOM, outputPath, format, toolVersion string) error {
	f, err := FormatFor(outputPath, format)
	if err != nil {
		return err
	}
	Stamp(b, toolVersion)

	if outputPath == "-" {
		return Encode(os.Stdout, b, f)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("cannot create %q: %w", outputPath, err)
	}
	if err := Encode(out, b, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Stamp fills a missing serial number and records this tool in the
// metadata. Stamping twice adds the tool once.
func Stamp(b *cyclonedx.BOM, toolVersion string) {
	if b.BOMFormat == "" {
		b.BOMFormat = "CycloneDX"
	}
	if b.SerialNumber == "" {
		b.SerialNumber = uuid.New().URN()
	}
	if b.Metadata == nil {
		b.Metadata = &cyclonedx.Metadata{}
	}
	if b.Metadata.Tools == nil {
		b.Metadata.Tools = &cyclonedx.ToolsChoice{}
	}
	tools := b.Metadata.Tools

	// Documents using the legacy tools array cannot also carry tool
	// components.
	if tools.Tools != nil {
		for _, t := range *tools.Tools {
			if t.Name == ToolName {
				return
			}
		}
		*tools.Tools = append(*tools.Tools, cyclonedx.Tool{
			Vendor:  ToolVendor,
			Name:    ToolName,
			Version: toolVersion,
		})
		return
	}

	if tools.Components == nil {
		tools.Components = &[]cyclonedx.Component{}
	}
	for _, c := range *tools.Components {
		if c.Name == ToolName {
			return
		}
	}
	*tools.Components = append(*tools.Components, cyclonedx.Component{
		Type:      cyclonedx.ComponentTypeApplication,
		Publisher: ToolVendor,
		Name:      ToolName,
		Version:   toolVersion,
	})
}
