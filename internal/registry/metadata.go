package registry

// Metadata is the typed decoding of the registry's per-release JSON document.
// Nothing past this boundary inspects raw JSON maps.
type Metadata struct {
	Info     Info                         `json:"info"`
	Releases map[string][]ReleaseArtifact `json:"releases"`
}

// Info carries the package-level metadata fields the resolver consumes.
type Info struct {
	Name         string   `json:"name"`
	Author       string   `json:"author"`
	Summary      string   `json:"summary"`
	License      string   `json:"license"`
	RequiresDist []string `json:"requires_dist"`
}

// ReleaseArtifact is one published distribution file for a release: its
// package type ("bdist_wheel", "sdist", ...) and its digests keyed by the
// registry's algorithm names ("md5", "sha256", ...).
type ReleaseArtifact struct {
	PackageType string            `json:"packagetype"`
	Digests     map[string]string `json:"digests"`
}

// ReleaseKeys returns the release index keys. Order is unspecified; callers
// that need determinism sort.
func (m *Metadata) ReleaseKeys() []string {
	keys := make([]string, 0, len(m.Releases))
	for k := range m.Releases {
		keys = append(keys, k)
	}
	return keys
}
