// Package resolver turns parsed requirements into fully-populated SBOM
// components and derives the dependency graph between them.
package resolver

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mgrajesh1/cyclonedx-python/internal/model"
	"github.com/mgrajesh1/cyclonedx-python/internal/purl"
	"github.com/mgrajesh1/cyclonedx-python/internal/pyversion"
	"github.com/mgrajesh1/cyclonedx-python/internal/registry"
	"github.com/mgrajesh1/cyclonedx-python/internal/requirements"
)

// Registry is the metadata lookup the resolver depends on. *registry.Client
// implements it; tests substitute fakes.
type Registry interface {
	Lookup(ctx context.Context, name, version string) (*registry.Metadata, error)
}

// Options configure a Resolver.
type Options struct {
	// Lenient downgrades the version-index inconsistency error (a special
	// version with no equivalent release key at all) to a warning, emitting
	// the component without release data. The default is fail-fast: that
	// condition means the registry's own data is inconsistent, and
	// continuing silently could produce a wrong SBOM entry.
	Lenient bool

	Logger zerolog.Logger
}

// Resolver resolves requirements into components, one at a time, in manifest
// order.
type Resolver struct {
	registry Registry
	lenient  bool
	log      zerolog.Logger
}

// New creates a Resolver.
func New(reg Registry, opts Options) *Resolver {
	return &Resolver{
		registry: reg,
		lenient:  opts.Lenient,
		log:      opts.Logger,
	}
}

// Resolve resolves every requirement sequentially and returns the
// deduplicated component list in first-seen manifest order. Skipped
// requirements contribute nothing; duplicate purls keep the first resolution.
func (r *Resolver) Resolve(ctx context.Context, reqs []requirements.Requirement) ([]*model.Component, error) {
	// Ordered dedup: purl -> seen, plus a slice preserving insertion order.
	seen := make(map[string]bool, len(reqs))
	components := make([]*model.Component, 0, len(reqs))

	for _, req := range reqs {
		component, err := r.resolveOne(ctx, req, seen)
		if err != nil {
			return nil, err
		}
		if component == nil {
			continue
		}
		seen[component.PURL] = true
		components = append(components, component)
	}

	return components, nil
}

// resolveOne resolves a single requirement. A nil component with a nil error
// means the requirement was skipped; each skip emits exactly one warning.
// Requirements whose purl is already in seen are duplicates of a resolved
// component and return nil without querying the registry.
func (r *Resolver) resolveOne(ctx context.Context, req requirements.Requirement, seen map[string]bool) (*model.Component, error) {
	if req.LocalFile {
		r.log.Warn().Str("path", req.Path).Msg("local file does not have versions, skipping")
		return nil, nil
	}
	if len(req.Specs) == 0 {
		r.log.Warn().Str("package", req.Name).Msg("no version specified, skipping")
		return nil, nil
	}
	spec := req.Specs[0]
	if spec.Op == "" || spec.Version == "" {
		r.log.Warn().Str("package", req.Name).Str("spec", req.Raw).Msg("malformed version specifier, skipping")
		return nil, nil
	}

	component := &model.Component{
		Name:    req.Name,
		Version: spec.Version,
		PURL:    purl.FromNameVersion(req.Name, spec.Version),
		Type:    "library",
	}

	// Duplicate of an already-resolved component: the first resolution is
	// kept, so another registry round trip would only be thrown away.
	if seen[component.PURL] {
		return nil, nil
	}

	if spec.Op != "==" {
		r.log.Warn().Str("package", req.Name).Str("version", spec.Version).
			Msg("not pinned to a specific version, using declared version")
	}

	meta, err := r.registry.Lookup(ctx, component.Name, component.Version)
	if err != nil {
		r.log.Warn().Str("package", component.Name).Err(err).
			Msg("could not retrieve package metadata")
		return component, nil
	}

	component.Publisher = meta.Info.Author
	component.Description = meta.Info.Summary
	component.RequiresDist = meta.Info.RequiresDist
	if name := licenseName(meta.Info.License); name != "" {
		component.Licenses = append(component.Licenses, model.ComponentLicense{
			License: model.License{Name: name},
		})
	}

	key, ok, err := pyversion.FindRelease(component.Name, component.Version, meta.ReleaseKeys())
	if err != nil {
		if !r.lenient {
			return nil, err
		}
		r.log.Warn().Str("package", component.Name).Str("version", component.Version).
			Msg("version matches no release in the registry index, omitting hashes")
		return component, nil
	}
	if !ok {
		r.log.Warn().Str("package", component.Name).Str("version", component.Version).
			Msg("release not found in the registry index, omitting hashes")
		return component, nil
	}

	component.Hashes = SelectHashes(meta.Releases[key])
	return component, nil
}

// licenseName filters the registry's license field: empty, whitespace-only
// and "UNKNOWN" values all mean no license information.
func licenseName(license string) string {
	license = strings.TrimSpace(license)
	if license == "" || license == "UNKNOWN" {
		return ""
	}
	return license
}
