// Package output provides SBOM serializers.
package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mgrajesh1/cyclonedx-python/internal/model"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// Options configure the BOM assembler.
type Options struct {
	Format      Format
	ToolVersion string

	// Reproducible derives the serial number from the BOM content and omits
	// the timestamp, so two runs over the same inputs produce byte-identical
	// documents. The default is a random serial plus the current time.
	Reproducible bool
}

// ---- CycloneDX 1.4 JSON schema types ----

type cdxBOM struct {
	BOMFormat    string          `json:"bomFormat"`
	SpecVersion  string          `json:"specVersion"`
	Version      int             `json:"version"`
	SerialNumber string          `json:"serialNumber"`
	Metadata     cdxMetadata     `json:"metadata"`
	Components   []cdxComponent  `json:"components"`
	Dependencies []cdxDependency `json:"dependencies"`
}

type cdxMetadata struct {
	Timestamp string    `json:"timestamp,omitempty"`
	Tools     []cdxTool `json:"tools"`
}

type cdxTool struct {
	Vendor  string `json:"vendor"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

type cdxComponent struct {
	Type        string             `json:"type"`
	Name        string             `json:"name"`
	Version     string             `json:"version"`
	Publisher   string             `json:"publisher,omitempty"`
	Description string             `json:"description,omitempty"`
	Hashes      []cdxHash          `json:"hashes,omitempty"`
	Licenses    []cdxLicenseChoice `json:"licenses,omitempty"`
	PURL        string             `json:"purl,omitempty"`
}

type cdxHash struct {
	Alg     string `json:"alg"`
	Content string `json:"content"`
}

type cdxLicenseChoice struct {
	License cdxLicense `json:"license"`
}

type cdxLicense struct {
	Name string `json:"name"`
}

// cdxDependency represents one node in the CycloneDX dependency graph.
// "ref" is the purl of the component; "dependsOn" lists the purls of its
// direct dependencies.
type cdxDependency struct {
	Ref       string   `json:"ref"`
	DependsOn []string `json:"dependsOn"`
}

// ---- CycloneDX 1.4 XML schema types ----

type xmlBOM struct {
	XMLName      xml.Name        `xml:"bom"`
	XMLNS        string          `xml:"xmlns,attr"`
	Version      int             `xml:"version,attr"`
	SerialNumber string          `xml:"serialNumber,attr"`
	Metadata     xmlMetadata     `xml:"metadata"`
	Components   xmlComponents   `xml:"components"`
	Dependencies xmlDependencies `xml:"dependencies"`
}

type xmlMetadata struct {
	Timestamp string    `xml:"timestamp,omitempty"`
	Tools     []xmlTool `xml:"tools>tool"`
}

type xmlTool struct {
	Vendor  string `xml:"vendor"`
	Name    string `xml:"name"`
	Version string `xml:"version"`
}

type xmlComponents struct {
	Component []xmlComponent `xml:"component"`
}

type xmlComponent struct {
	Type        string       `xml:"type,attr"`
	Publisher   string       `xml:"publisher,omitempty"`
	Name        string       `xml:"name"`
	Version     string       `xml:"version"`
	Description string       `xml:"description,omitempty"`
	Hashes      *xmlHashes   `xml:"hashes,omitempty"`
	Licenses    *xmlLicenses `xml:"licenses,omitempty"`
	PURL        string       `xml:"purl,omitempty"`
}

type xmlHashes struct {
	Hash []xmlHash `xml:"hash"`
}

type xmlHash struct {
	Alg     string `xml:"alg,attr"`
	Content string `xml:",chardata"`
}

type xmlLicenses struct {
	License []xmlLicense `xml:"license"`
}

type xmlLicense struct {
	Name string `xml:"name"`
}

type xmlDependencies struct {
	Dependency []xmlDependency `xml:"dependency"`
}

// xmlDependency nests one <dependency ref=""/> child per edge target.
type xmlDependency struct {
	Ref       string             `xml:"ref,attr"`
	DependsOn []xmlDependencyRef `xml:"dependency"`
}

type xmlDependencyRef struct {
	Ref string `xml:"ref,attr"`
}

// Write serializes the resolved component list and dependency records as a
// CycloneDX 1.4 BOM and writes it to outputPath. If outputPath is "-", it
// writes to stdout. Component order is preserved as given: it follows the
// manifest's first-seen requirement order and is observable in the output.
func Write(components []*model.Component, deps []model.Dependency, opts Options, outputPath string) error {
	var data []byte
	var err error

	switch opts.Format {
	case FormatJSON:
		bom := buildJSONBOM(components, deps, opts)
		data, err = json.MarshalIndent(bom, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal CycloneDX JSON: %w", err)
		}
	case FormatXML:
		bom := buildXMLBOM(components, deps, opts)
		data, err = xml.MarshalIndent(bom, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal CycloneDX XML: %w", err)
		}
		data = append([]byte(xml.Header), data...)
	default:
		return fmt.Errorf("unsupported format %q (supported: json, xml)", opts.Format)
	}

	if outputPath == "-" {
		_, err = os.Stdout.Write(data)
		if err == nil {
			_, err = os.Stdout.WriteString("\n")
		}
		return err
	}

	return os.WriteFile(outputPath, append(data, '\n'), 0644)
}

func buildJSONBOM(components []*model.Component, deps []model.Dependency, opts Options) cdxBOM {
	cdxComps := make([]cdxComponent, 0, len(components))
	for _, c := range components {
		comp := cdxComponent{
			Type:        c.Type,
			Name:        c.Name,
			Version:     c.Version,
			Publisher:   c.Publisher,
			Description: c.Description,
			PURL:        c.PURL,
		}
		for _, h := range c.Hashes {
			comp.Hashes = append(comp.Hashes, cdxHash{Alg: string(h.Algorithm), Content: h.Value})
		}
		for _, l := range c.Licenses {
			comp.Licenses = append(comp.Licenses, cdxLicenseChoice{License: cdxLicense{Name: l.License.Name}})
		}
		cdxComps = append(cdxComps, comp)
	}

	cdxDeps := make([]cdxDependency, 0, len(deps))
	for _, d := range deps {
		cdxDeps = append(cdxDeps, cdxDependency{Ref: d.Ref, DependsOn: d.DependsOn})
	}

	return cdxBOM{
		BOMFormat:    "CycloneDX",
		SpecVersion:  "1.4",
		Version:      1,
		SerialNumber: serialNumber(components, deps, opts.Reproducible),
		Metadata: cdxMetadata{
			Timestamp: timestamp(opts.Reproducible),
			Tools: []cdxTool{
				{Vendor: "CycloneDX", Name: "cyclonedx-python", Version: opts.ToolVersion},
			},
		},
		Components:   cdxComps,
		Dependencies: cdxDeps,
	}
}

func buildXMLBOM(components []*model.Component, deps []model.Dependency, opts Options) xmlBOM {
	xmlComps := make([]xmlComponent, 0, len(components))
	for _, c := range components {
		comp := xmlComponent{
			Type:        c.Type,
			Publisher:   c.Publisher,
			Name:        c.Name,
			Version:     c.Version,
			Description: c.Description,
			PURL:        c.PURL,
		}
		if len(c.Hashes) > 0 {
			hashes := &xmlHashes{}
			for _, h := range c.Hashes {
				hashes.Hash = append(hashes.Hash, xmlHash{Alg: string(h.Algorithm), Content: h.Value})
			}
			comp.Hashes = hashes
		}
		if len(c.Licenses) > 0 {
			licenses := &xmlLicenses{}
			for _, l := range c.Licenses {
				licenses.License = append(licenses.License, xmlLicense{Name: l.License.Name})
			}
			comp.Licenses = licenses
		}
		xmlComps = append(xmlComps, comp)
	}

	xmlDeps := make([]xmlDependency, 0, len(deps))
	for _, d := range deps {
		dep := xmlDependency{Ref: d.Ref}
		for _, ref := range d.DependsOn {
			dep.DependsOn = append(dep.DependsOn, xmlDependencyRef{Ref: ref})
		}
		xmlDeps = append(xmlDeps, dep)
	}

	return xmlBOM{
		XMLNS:        "http://cyclonedx.org/schema/bom/1.4",
		Version:      1,
		SerialNumber: serialNumber(components, deps, opts.Reproducible),
		Metadata: xmlMetadata{
			Timestamp: timestamp(opts.Reproducible),
			Tools: []xmlTool{
				{Vendor: "CycloneDX", Name: "cyclonedx-python", Version: opts.ToolVersion},
			},
		},
		Components:   xmlComponents{Component: xmlComps},
		Dependencies: xmlDependencies{Dependency: xmlDeps},
	}
}

// serialNumber returns the BOM serial URN. Reproducible mode derives a
// name-based UUID from the resolved content so identical inputs yield
// identical documents; otherwise a random v4 UUID is used.
func serialNumber(components []*model.Component, deps []model.Dependency, reproducible bool) string {
	if !reproducible {
		return "urn:uuid:" + uuid.New().String()
	}

	var seed strings.Builder
	for _, c := range components {
		seed.WriteString(c.PURL)
		seed.WriteByte('\n')
		for _, h := range c.Hashes {
			seed.WriteString(string(h.Algorithm))
			seed.WriteByte(':')
			seed.WriteString(h.Value)
			seed.WriteByte('\n')
		}
	}
	for _, d := range deps {
		seed.WriteString(d.Ref)
		seed.WriteString(" -> ")
		seed.WriteString(strings.Join(d.DependsOn, ","))
		seed.WriteByte('\n')
	}
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed.String())).String()
}

func timestamp(reproducible bool) string {
	if reproducible {
		return ""
	}
	return time.Now().UTC().Format(time.RFC3339)
}
