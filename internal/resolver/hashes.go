package resolver

import (
	"github.com/mgrajesh1/cyclonedx-python/internal/model"
	"github.com/mgrajesh1/cyclonedx-python/internal/registry"
)

const (
	typeWheel = "bdist_wheel"
	typeSdist = "sdist"
)

// digestAlgorithms maps the registry's digest keys to CycloneDX algorithm
// tags. Digests under any other key are dropped.
var digestAlgorithms = map[string]model.HashAlgorithm{
	"md5":    model.HashMD5,
	"sha1":   model.HashSHA1,
	"sha256": model.HashSHA256,
	"sha512": model.HashSHA512,
}

// SelectHashes picks the canonical digests from a release's published
// artifacts.
//
// Installers prefer wheels over source distributions, so when any artifact is
// a wheel only wheels are considered; otherwise only sdists are. Other
// package types never contribute. Among the kept artifacts, the last one
// providing a given algorithm wins. That last-wins rule is a quirk, but it is
// the established behavior and changing it would alter existing BOMs, so it
// is kept for reproducibility.
//
// The result is sorted by algorithm name for deterministic serialization.
func SelectHashes(artifacts []registry.ReleaseArtifact) []model.Hash {
	hasWheel := false
	for _, a := range artifacts {
		if a.PackageType == typeWheel {
			hasWheel = true
			break
		}
	}

	keepType := typeSdist
	if hasWheel {
		keepType = typeWheel
	}

	byAlg := make(map[model.HashAlgorithm]string)
	for _, a := range artifacts {
		if a.PackageType != keepType {
			continue
		}
		for key, digest := range a.Digests {
			if alg, ok := digestAlgorithms[key]; ok {
				byAlg[alg] = digest
			}
		}
	}

	hashes := make([]model.Hash, 0, len(byAlg))
	for alg, digest := range byAlg {
		hashes = append(hashes, model.Hash{Algorithm: alg, Value: digest})
	}
	model.SortHashes(hashes)
	return hashes
}
