// Package pyversion normalizes Python package version strings against a
// registry's release index.
//
// Registries accept several spellings for the same release ("1.0.0rc1",
// "1.0.0-rc1", "1.0.0.rc1"), so a version pinned in a manifest does not
// always appear verbatim among the registry's release keys. This package
// canonicalizes those spellings and finds the release key a requested
// version actually refers to.
package pyversion

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// MatchError reports a special (pre/post/dev) version that matched nothing in
// the registry's own release index. This signals an inconsistency between the
// pinned version and the registry data, so it is surfaced as a typed error
// instead of being silently swallowed.
type MatchError struct {
	Package string
	Version string
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("no release of %s matches version %q in the registry index", e.Package, e.Version)
}

// preAliases maps pre-release tag spellings to their canonical form.
var preAliases = map[string]string{
	"a":       "a",
	"alpha":   "a",
	"b":       "b",
	"beta":    "b",
	"c":       "rc",
	"rc":      "rc",
	"pre":     "rc",
	"preview": "rc",
}

// IsSpecial reports whether v is a pre-release, post-release or development
// release. Semver-spelled versions ("1.0.0-rc1") are answered by the semver
// parser; registry spellings ("1.0.0rc1", "1.2.post3", "0.9.dev1") fall back
// to the canonicalizer.
func IsSpecial(v string) bool {
	if sv, err := semver.NewVersion(v); err == nil && sv.Prerelease() != "" {
		return true
	}
	_, tag := splitTag(v)
	return tag != ""
}

// Equivalent reports whether two version spellings refer to the same release.
// Raw equality is checked first, then semver comparison (which absorbs
// differences like "1.0" vs "1.0.0"), then canonical-form equality.
func Equivalent(a, b string) bool {
	if a == b {
		return true
	}
	if va, err := semver.NewVersion(a); err == nil {
		if vb, err := semver.NewVersion(b); err == nil {
			return va.Equal(vb)
		}
	}
	return Canonical(a) == Canonical(b)
}

// FindRelease maps a requested version to the registry's release key for it.
//
// If the requested version appears verbatim among the keys it is returned
// as-is. Otherwise, if it is a special release, the keys are scanned in
// sorted order and the first equivalent one wins; no equivalent at all is a
// hard *MatchError naming the package. A plain version with no verbatim key
// returns ok=false with a nil error: the caller omits release data with a
// warning, nothing more.
func FindRelease(pkg, requested string, releaseKeys []string) (string, bool, error) {
	for _, key := range releaseKeys {
		if key == requested {
			return key, true, nil
		}
	}

	if !IsSpecial(requested) {
		return "", false, nil
	}

	// JSON object keys arrive in undefined order; sort so the "first
	// equivalent" release is the same on every run.
	keys := make([]string, len(releaseKeys))
	copy(keys, releaseKeys)
	sort.Strings(keys)

	for _, key := range keys {
		if Equivalent(requested, key) {
			return key, true, nil
		}
	}

	return "", false, &MatchError{Package: pkg, Version: requested}
}

// Canonical returns the canonical spelling of a version string: lowercase,
// no "v" prefix, separators before pre/post/dev tags removed, tag aliases
// collapsed ("alpha" -> "a", "preview" -> "rc"). Strings that do not look
// like versions are returned lowercased and otherwise untouched.
func Canonical(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.TrimPrefix(v, "v")

	// Drop any local version segment ("1.0.0+local.3").
	if i := strings.Index(v, "+"); i >= 0 {
		v = v[:i]
	}

	release, tag := splitTag(v)
	return release + tag
}

// splitTag splits a version into its numeric release part and a canonical
// pre/post/dev tag ("" when the version is a plain release). "1.4.0.post2"
// yields ("1.4.0", "post2"); "1.0.0-rc1" yields ("1.0.0", "rc1").
func splitTag(v string) (string, string) {
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.TrimPrefix(v, "v")
	if i := strings.Index(v, "+"); i >= 0 {
		v = v[:i]
	}

	// Find the end of the numeric release segment: digits and dots.
	end := 0
	for end < len(v) && (isDigit(v[end]) || v[end] == '.') {
		end++
	}
	release := strings.TrimSuffix(v[:end], ".")
	rest := strings.Trim(v[end:], ".-_")
	if release == "" || rest == "" {
		return release, ""
	}

	// Split the tag into its letters and trailing number.
	letters := rest
	number := ""
	for i := 0; i < len(rest); i++ {
		if isDigit(rest[i]) {
			letters = strings.Trim(rest[:i], ".-_")
			number = rest[i:]
			break
		}
	}

	switch {
	case letters == "post" || letters == "rev" || letters == "r":
		return release, "post" + number
	case letters == "dev":
		return release, "dev" + number
	default:
		if canon, ok := preAliases[letters]; ok {
			return release, canon + number
		}
	}

	// Unrecognized suffix: keep it verbatim so distinct strings stay distinct.
	return release, rest
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
