// Package purl builds canonical package URLs for registry packages.
package purl

import "github.com/package-url/packageurl-go"

// FromNameVersion returns the canonical pkg:pypi purl for a package name and
// version. It is a pure function: identical inputs always yield byte-identical
// identifiers, which is what makes the purl usable as a deduplication key.
// Namespace, qualifiers and subpath are always empty for registry packages.
func FromNameVersion(name, version string) string {
	return packageurl.NewPackageURL(packageurl.TypePyPi, "", name, version, nil, "").ToString()
}
