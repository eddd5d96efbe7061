// Package model defines the internal data structures used by the SBOM engine.
package model

import "sort"

// HashAlgorithm is a CycloneDX hash algorithm tag.
type HashAlgorithm string

const (
	HashMD5    HashAlgorithm = "MD5"
	HashSHA1   HashAlgorithm = "SHA-1"
	HashSHA256 HashAlgorithm = "SHA-256"
	HashSHA512 HashAlgorithm = "SHA-512"
)

// Hash is one content digest of a release artifact.
type Hash struct {
	Algorithm HashAlgorithm
	Value     string
}

// License is a license name as reported by the registry. The name is free
// text; no SPDX normalization is performed.
type License struct {
	Name string
}

// ComponentLicense wraps a License chosen for a component, mirroring the
// CycloneDX licenses[].license nesting.
type ComponentLicense struct {
	License License
}

// Component is one resolved package entry in the output SBOM.
type Component struct {
	Name        string
	Version     string
	PURL        string // Package URL (pkg:pypi/requests@2.31.0), used as the dedup key
	Type        string // always "library" for registry packages
	Publisher   string
	Description string

	// RequiresDist holds the declared transitive requirement strings exactly
	// as the registry reports them (e.g. "chardet (<3.1.0,>=3.0.2)").
	RequiresDist []string

	Licenses []ComponentLicense
	Hashes   []Hash
}

// Dependency is one node in the dependency graph: the owning component's
// PURL and the PURLs it depends on. DependsOn is never nil: a component
// without dependencies gets an empty set, not an absent record.
type Dependency struct {
	Ref       string
	DependsOn []string
}

// SortHashes orders hashes by algorithm name so serialized output is
// deterministic.
func SortHashes(hashes []Hash) {
	sort.Slice(hashes, func(i, j int) bool {
		return hashes[i].Algorithm < hashes[j].Algorithm
	})
}
