// Package render substitutes {{KEY}} placeholders in the broker configuration
// template.
package render

import (
	"fmt"
	"maps"
	"regexp"
	"slices"

	"github.com/kbukum/kafkaboot/errors"
)

// Policy decides what happens to a placeholder whose key is not configured.
type Policy string

const (
	// PolicyError fails the render and reports every missing key.
	PolicyError Policy = "error"
	// PolicyKeep leaves the placeholder text untouched.
	PolicyKeep Policy = "keep"
	// PolicyEmpty substitutes the empty string.
	PolicyEmpty Policy = "empty"
)

// ParsePolicy validates a policy name. Empty selects PolicyError.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return PolicyError, nil
	case PolicyError, PolicyKeep, PolicyEmpty:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("render: unknown missing key policy %q", s)
	}
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Render replaces every placeholder with its configured value. Values are
// inserted literally and never re-scanned.
func Render(template string, cfg map[string]string, policy Policy) (string, error) {
	if policy == "" {
		policy = PolicyError
	}

	missing := make(map[string]struct{})
	out := placeholder.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholder.FindStringSubmatch(match)[1]
		if v, ok := cfg[key]; ok {
			return v
		}
		switch policy {
		case PolicyKeep:
			return match
		case PolicyEmpty:
			return ""
		default:
			missing[key] = struct{}{}
			return match
		}
	})

	if len(missing) > 0 {
		return "", errors.MissingPlaceholder(slices.Sorted(maps.Keys(missing)))
	}
	return out, nil
}

// Placeholders lists the distinct keys the template references, sorted.
func Placeholders(template string) []string {
	seen := make(map[string]struct{})
	for _, m := range placeholder.FindAllStringSubmatch(template, -1) {
		seen[m[1]] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Missing lists the referenced keys cfg does not define, sorted.
func Missing(template string, cfg map[string]string) []string {
	var out []string
	for _, key := range Placeholders(template) {
		if _, ok := cfg[key]; !ok {
			out = append(out, key)
		}
	}
	return out
}

// String returns the policy name.
func (p Policy) String() string { return string(p) }
