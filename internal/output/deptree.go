// Package output provides SBOM serializers.
package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mgrajesh1/cyclonedx-python/internal/model"
)

// TreeNode is one node of the standalone dependency-tree view. Each node
// carries its component identity plus a "children" array of the components it
// depends on. Children are emitted one level deep per reference; a child that
// itself has dependencies appears again as a root.
type TreeNode struct {
	Name     string      `json:"name"`
	Version  string      `json:"version"`
	PURL     string      `json:"purl,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// WriteDependencyTree serializes the resolved graph as a plain JSON tree and
// writes it to the given output path. If outputPath is "-", it writes to
// stdout. This is a human-oriented companion view; the CycloneDX document is
// the canonical output.
func WriteDependencyTree(components []*model.Component, deps []model.Dependency, outputPath string) error {
	byPURL := make(map[string]*model.Component, len(components))
	for _, c := range components {
		byPURL[c.PURL] = c
	}

	roots := make([]*TreeNode, 0, len(deps))
	for _, d := range deps {
		owner := byPURL[d.Ref]
		if owner == nil {
			continue
		}
		node := &TreeNode{
			Name:    owner.Name,
			Version: owner.Version,
			PURL:    owner.PURL,
		}
		for _, ref := range d.DependsOn {
			child := byPURL[ref]
			if child == nil {
				continue
			}
			node.Children = append(node.Children, &TreeNode{
				Name:    child.Name,
				Version: child.Version,
				PURL:    child.PURL,
			})
		}
		roots = append(roots, node)
	}

	if len(roots) == 0 {
		// Emit an empty array rather than null
		return writeJSON(outputPath, []struct{}{})
	}
	return writeJSON(outputPath, roots)
}

// writeJSON marshals v as indented JSON and writes it to outputPath (or stdout if "-").
func writeJSON(outputPath string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dependency tree JSON: %w", err)
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
