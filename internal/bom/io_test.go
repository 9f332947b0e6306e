package bom

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CycloneDX/cyclonedx-go"
)

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path, explicit string
		want           cyclonedx.BOMFileFormat
		wantErr        bool
	}{
		{"bom.cdx.json", "", cyclonedx.BOMFileFormatJSON, false},
		{"bom.XML", "", cyclonedx.BOMFileFormatXML, false},
		{"-", "", cyclonedx.BOMFileFormatJSON, false},
		{"bom.json", "xml", cyclonedx.BOMFileFormatXML, false},
		{"bom.json", "spdx", 0, true},
	}
	for _, tt := range tests {
		got, err := FormatFor(tt.path, tt.explicit)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatFor(%q, %q) err = %v, wantErr %v", tt.path, tt.explicit, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("FormatFor(%q, %q) = %v, want %v", tt.path, tt.explicit, got, tt.want)
		}
	}
}

func TestStamp(t *testing.T) {
	b := cyclonedx.NewBOM()
	Stamp(b, "1.0.0-test")
	Stamp(b, "1.0.0-test")

	if !strings.HasPrefix(b.SerialNumber, "urn:uuid:") {
		t.Errorf("SerialNumber = %q, want prefix urn:uuid:", b.SerialNumber)
	}
	tools := *b.Metadata.Tools.Components
	if len(tools) != 1 || tools[0].Name != ToolName || tools[0].Version != "1.0.0-test" {
		t.Errorf("tools = %+v, want exactly one %s entry", tools, ToolName)
	}
}

func TestStampKeepsSerialAndLegacyTools(t *testing.T) {
	b := cyclonedx.NewBOM()
	b.SerialNumber = "urn:uuid:3e671687-395b-41f5-a30f-a58921a69b79"
	b.Metadata = &cyclonedx.Metadata{
		Tools: &cyclonedx.ToolsChoice{Tools: &[]cyclonedx.Tool{{Name: "mapper"}}},
	}

	Stamp(b, "1.0.0-test")

	if b.SerialNumber != "urn:uuid:3e671687-395b-41f5-a30f-a58921a69b79" {
		t.Errorf("existing serial number replaced: %q", b.SerialNumber)
	}
	if b.Metadata.Tools.Components != nil {
		t.Errorf("legacy tools list must not be mixed with tool components")
	}
	if n := len(*b.Metadata.Tools.Tools); n != 2 {
		t.Errorf("legacy tools = %d entries, want 2", n)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	b, err := Read("testdata/debian.cdx.json", "")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	for _, name := range []string{"out.cdx.json", "out.json"} {
		out := filepath.Join(t.TempDir(), name)
		if err := Write(b, out, "", "1.0.0-test"); err != nil {
			t.Fatalf("Write(%s): %v", name, err)
		}
		back, err := Read(out, "")
		if err != nil {
			t.Fatalf("Read(%s): %v", name, err)
		}
		if back.Components == nil || len(*back.Components) != 3 {
			t.Fatalf("%s: round trip lost components", name)
		}
		if got := (*back.Components)[0].Version; got != "2:1.0-1" {
			t.Errorf("%s: version = %q, want 2:1.0-1", name, got)
		}
	}
}

func TestEncodeIsPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, cyclonedx.NewBOM(), cyclonedx.BOMFileFormatJSON); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"bomFormat\"") {
		t.Errorf("expected indented JSON, got:\n%s", buf.String())
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.json"), ""); err == nil {
		t.Errorf("expected error for missing file")
	}
	if _, err := os.Stat("testdata/debian.cdx.json"); err != nil {
		t.Fatalf("fixture missing: %v", err)
	}
}
