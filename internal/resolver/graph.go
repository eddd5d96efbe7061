package resolver

import (
	"github.com/mgrajesh1/cyclonedx-python/internal/model"
	"github.com/mgrajesh1/cyclonedx-python/internal/requirements"
)

// BuildDependencies derives the dependency graph from each component's
// declared requirement strings.
//
// Every component gets exactly one record, dependency-free components
// included (their DependsOn is empty, not absent). Each requires_dist string
// is parsed down to a bare package name and matched case-sensitively against
// the resolved set; the first match in list order wins, and names outside the
// resolved set are dropped without creating a synthetic node. Target order
// follows requires_dist order.
func BuildDependencies(components []*model.Component) []model.Dependency {
	deps := make([]model.Dependency, 0, len(components))

	for _, component := range components {
		dep := model.Dependency{
			Ref:       component.PURL,
			DependsOn: []string{},
		}
		for _, raw := range component.RequiresDist {
			req, ok := requirements.ParseLine(raw)
			if !ok || req.Name == "" {
				continue
			}
			if target := findByName(components, req.Name); target != nil {
				dep.DependsOn = append(dep.DependsOn, target.PURL)
			}
		}
		deps = append(deps, dep)
	}

	return deps
}

func findByName(components []*model.Component, name string) *model.Component {
	for _, c := range components {
		if c.Name == name {
			return c
		}
	}
	return nil
}
