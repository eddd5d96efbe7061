// Package requirements parses pip requirements files into structured
// requirement records. It covers the subset of the requirements format the
// SBOM pipeline needs: name, version specs, extras, environment markers and
// local-file references. Index options (-r, --index-url, ...) are skipped.
package requirements

import (
	"bufio"
	"io"
	"strings"
)

// Spec is one version constraint: an operator and a version string.
type Spec struct {
	Op      string
	Version string
}

// Requirement is one parsed requirement line.
type Requirement struct {
	Name  string
	Specs []Spec

	// LocalFile marks requirements that reference a path, URL or editable
	// install instead of a registry package. They carry no resolvable version.
	LocalFile bool
	Path      string

	Raw string
}

// operators ordered longest first so "==" is not read as "=" + "=", and
// ">=" is not read as ">".
var operators = []string{"===", "==", "~=", ">=", "<=", "!=", ">", "<"}

// Parse reads a requirements file and returns one Requirement per requirement
// line. Comments, blank lines and option lines produce no record.
func Parse(r io.Reader) ([]Requirement, error) {
	var reqs []Requirement
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		req, ok := ParseLine(scanner.Text())
		if ok {
			reqs = append(reqs, req)
		}
	}
	return reqs, scanner.Err()
}

// ParseLine parses a single requirement string. The second return value is
// false when the line carries no requirement at all (blank, comment, or an
// option line such as "-r other.txt" or "--index-url ...").
//
// The dependency graph builder reuses this on single requires_dist strings,
// which use a parenthesized spec form: "chardet (<3.1.0,>=3.0.2)".
func ParseLine(line string) (Requirement, bool) {
	raw := line

	// Strip comments and environment markers.
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, ";"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return Requirement{}, false
	}

	// Editable installs reference a local path or VCS URL.
	if strings.HasPrefix(line, "-e ") || strings.HasPrefix(line, "--editable ") {
		path := strings.TrimSpace(line[strings.Index(line, " ")+1:])
		return Requirement{LocalFile: true, Path: path, Raw: raw}, true
	}

	// Other option lines (-r, -c, --index-url, --hash, ...) carry no package.
	if strings.HasPrefix(line, "-") {
		return Requirement{}, false
	}

	// Paths and URLs have no resolvable registry version.
	if isLocalReference(line) {
		return Requirement{LocalFile: true, Path: line, Raw: raw}, true
	}

	// requires_dist strings wrap specs in parentheses; drop them.
	line = strings.ReplaceAll(line, "(", " ")
	line = strings.ReplaceAll(line, ")", " ")

	name, rest := splitName(line)
	if name == "" {
		return Requirement{}, false
	}

	// Strip extras: requests[security] -> requests
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}

	req := Requirement{Name: name, Raw: raw}
	for _, clause := range strings.Split(rest, ",") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		if spec, ok := parseSpec(clause); ok {
			req.Specs = append(req.Specs, spec)
		}
	}
	return req, true
}

func isLocalReference(line string) bool {
	if strings.Contains(line, "://") || strings.HasPrefix(line, "file:") {
		return true
	}
	return strings.HasPrefix(line, ".") || strings.HasPrefix(line, "/") ||
		strings.HasPrefix(line, "~")
}

// splitName splits a requirement into the name token and the remaining spec
// text. The name ends at the first whitespace or operator character.
func splitName(line string) (string, string) {
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == ' ' || c == '\t' || c == '<' || c == '>' || c == '=' || c == '!' || c == '~' {
			return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i:])
		}
	}
	return strings.TrimSpace(line), ""
}

func parseSpec(clause string) (Spec, bool) {
	for _, op := range operators {
		if strings.HasPrefix(clause, op) {
			version := strings.TrimSpace(clause[len(op):])
			return Spec{Op: op, Version: version}, true
		}
	}
	return Spec{}, false
}
