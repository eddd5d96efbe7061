package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mgrajesh1/cyclonedx-python/internal/model"
)

// makeTestBOM builds a synthetic component list with its dependency records.
// requests depends on idna; idna has no dependencies; ghost resolved with
// partial metadata only (no hashes, no license).
func makeTestBOM() ([]*model.Component, []model.Dependency) {
	requests := &model.Component{
		Name:        "requests",
		Version:     "2.31.0",
		PURL:        "pkg:pypi/requests@2.31.0",
		Type:        "library",
		Publisher:   "Kenneth Reitz",
		Description: "Python HTTP for Humans.",
		Licenses: []model.ComponentLicense{
			{License: model.License{Name: "Apache 2.0"}},
		},
		Hashes: []model.Hash{
			{Algorithm: model.HashMD5, Value: "d41d8cd98f00b204e9800998ecf8427e"},
			{Algorithm: model.HashSHA256, Value: "942c5a758f98d790eaed1a29cb6eefc7ffb0d1cf7af05c3d2791656dbd6ad1e1"},
		},
	}
	idna := &model.Component{
		Name:    "idna",
		Version: "3.4",
		PURL:    "pkg:pypi/idna@3.4",
		Type:    "library",
	}
	ghost := &model.Component{
		Name:    "ghost",
		Version: "1.0.0",
		PURL:    "pkg:pypi/ghost@1.0.0",
		Type:    "library",
	}

	components := []*model.Component{requests, idna, ghost}
	deps := []model.Dependency{
		{Ref: requests.PURL, DependsOn: []string{idna.PURL}},
		{Ref: idna.PURL, DependsOn: []string{}},
		{Ref: ghost.PURL, DependsOn: []string{}},
	}
	return components, deps
}

// TestJSONSchema verifies that the output is valid JSON and contains the
// required CycloneDX 1.4 top-level fields.
func TestJSONSchema(t *testing.T) {
	components, deps := makeTestBOM()

	tmp := filepath.Join(t.TempDir(), "bom.json")
	opts := Options{Format: FormatJSON, ToolVersion: "1.0.0-test"}
	if err := Write(components, deps, opts, tmp); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(tmp)
	if err != nil {
		t.Fatalf("cannot read output file: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("output is not valid JSON: %v\nContent:\n%s", err, string(data))
	}

	requiredFields := []string{"bomFormat", "specVersion", "version", "serialNumber", "metadata", "components", "dependencies"}
	for _, field := range requiredFields {
		if _, ok := raw[field]; !ok {
			t.Errorf("missing required field %q in CycloneDX output", field)
		}
	}

	var bomFormat string
	if err := json.Unmarshal(raw["bomFormat"], &bomFormat); err != nil || bomFormat != "CycloneDX" {
		t.Errorf("bomFormat = %q, want %q", bomFormat, "CycloneDX")
	}
	var specVersion string
	if err := json.Unmarshal(raw["specVersion"], &specVersion); err != nil || specVersion != "1.4" {
		t.Errorf("specVersion = %q, want %q", specVersion, "1.4")
	}
	var serial string
	if err := json.Unmarshal(raw["serialNumber"], &serial); err != nil || !strings.HasPrefix(serial, "urn:uuid:") {
		t.Errorf("serialNumber = %q, want urn:uuid: prefix", serial)
	}
}

func TestJSONComponentsAndDependencies(t *testing.T) {
	components, deps := makeTestBOM()
	bom := buildJSONBOM(components, deps, Options{Format: FormatJSON, ToolVersion: "test"})

	if len(bom.Components) != 3 {
		t.Fatalf("Components = %d, want 3", len(bom.Components))
	}

	// Component order must follow the input list, not be re-sorted.
	for i, want := range []string{"requests", "idna", "ghost"} {
		if bom.Components[i].Name != want {
			t.Errorf("Components[%d].Name = %q, want %q (input order)", i, bom.Components[i].Name, want)
		}
	}

	requests := bom.Components[0]
	if requests.Publisher != "Kenneth Reitz" || requests.PURL != "pkg:pypi/requests@2.31.0" {
		t.Errorf("requests component = %+v", requests)
	}
	if len(requests.Hashes) != 2 || requests.Hashes[0].Alg != "MD5" {
		t.Errorf("requests hashes = %v, want sorted MD5+SHA-256", requests.Hashes)
	}
	if len(requests.Licenses) != 1 || requests.Licenses[0].License.Name != "Apache 2.0" {
		t.Errorf("requests licenses = %v", requests.Licenses)
	}

	// The partial component stays minimal: no empty hashes/licenses arrays.
	ghost := bom.Components[2]
	if ghost.Hashes != nil || ghost.Licenses != nil {
		t.Errorf("ghost component carries empty metadata: %+v", ghost)
	}

	if len(bom.Dependencies) != 3 {
		t.Fatalf("Dependencies = %d, want one record per component", len(bom.Dependencies))
	}
	if bom.Dependencies[0].Ref != "pkg:pypi/requests@2.31.0" ||
		len(bom.Dependencies[0].DependsOn) != 1 ||
		bom.Dependencies[0].DependsOn[0] != "pkg:pypi/idna@3.4" {
		t.Errorf("Dependencies[0] = %+v", bom.Dependencies[0])
	}
	if len(bom.Dependencies[1].DependsOn) != 0 || bom.Dependencies[1].DependsOn == nil {
		t.Errorf("Dependencies[1].DependsOn = %v, want present-but-empty", bom.Dependencies[1].DependsOn)
	}
}

// TestXMLSchema verifies the XML encoding is well-formed and carries the
// CycloneDX namespace, components and nested dependency refs.
func TestXMLSchema(t *testing.T) {
	components, deps := makeTestBOM()

	tmp := filepath.Join(t.TempDir(), "bom.xml")
	opts := Options{Format: FormatXML, ToolVersion: "1.0.0-test"}
	if err := Write(components, deps, opts, tmp); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(tmp)
	if err != nil {
		t.Fatalf("cannot read output file: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("<?xml")) {
		t.Error("XML output missing declaration header")
	}

	var parsed xmlBOM
	if err := xml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("output is not well-formed XML: %v\nContent:\n%s", err, string(data))
	}
	if parsed.XMLNS != "http://cyclonedx.org/schema/bom/1.4" {
		t.Errorf("xmlns = %q, want CycloneDX 1.4 namespace", parsed.XMLNS)
	}
	if len(parsed.Components.Component) != 3 {
		t.Errorf("components = %d, want 3", len(parsed.Components.Component))
	}
	if len(parsed.Dependencies.Dependency) != 3 {
		t.Fatalf("dependencies = %d, want 3", len(parsed.Dependencies.Dependency))
	}
	first := parsed.Dependencies.Dependency[0]
	if first.Ref != "pkg:pypi/requests@2.31.0" || len(first.DependsOn) != 1 {
		t.Errorf("dependency[0] = %+v, want requests -> idna", first)
	}
}

// TestReproducibleOutput verifies the idempotence guarantee: two writes of
// the same resolved content are byte-identical in reproducible mode.
func TestReproducibleOutput(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatXML} {
		t.Run(string(format), func(t *testing.T) {
			components, deps := makeTestBOM()
			opts := Options{Format: format, ToolVersion: "1.0.0-test", Reproducible: true}

			dir := t.TempDir()
			first := filepath.Join(dir, "first")
			second := filepath.Join(dir, "second")
			if err := Write(components, deps, opts, first); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if err := Write(components, deps, opts, second); err != nil {
				t.Fatalf("Write failed: %v", err)
			}

			a, _ := os.ReadFile(first)
			b, _ := os.ReadFile(second)
			if !bytes.Equal(a, b) {
				t.Error("reproducible runs differ byte-for-byte")
			}
			if strings.Contains(string(a), "timestamp") {
				t.Error("reproducible output must omit the timestamp")
			}
		})
	}
}

func TestRandomSerialNumbersDiffer(t *testing.T) {
	components, deps := makeTestBOM()
	a := serialNumber(components, deps, false)
	b := serialNumber(components, deps, false)
	if a == b {
		t.Error("random serial numbers collided, want fresh UUID per run")
	}
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	components, deps := makeTestBOM()
	err := Write(components, deps, Options{Format: "yaml"}, filepath.Join(t.TempDir(), "bom"))
	if err == nil {
		t.Error("Write() with unsupported format: want error")
	}
}
