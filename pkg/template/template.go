// Package template provides helpers for the double-brace expression syntax
// used inside generated node configuration values.
package template

import (
	"regexp"
	"strings"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

var envReferencePattern = regexp.MustCompile(`^\{\{\s*ENV\.[A-Z][A-Z0-9_]*\s*\}\}$`)

// IsExpression reports whether the value contains template-expression
// syntax. Values carrying expressions are accepted by URL and field checks
// without further parsing, since they resolve at execution time.
func IsExpression(value string) bool {
	return strings.Contains(value, openDelim) && strings.Contains(value, closeDelim)
}

// Balanced reports whether every opening delimiter in the value has a
// matching closing delimiter in order.
func Balanced(value string) bool {
	depth := 0

	for i := 0; i+1 < len(value); i++ {
		switch value[i : i+2] {
		case openDelim:
			depth++
			i++
		case closeDelim:
			depth--
			i++

			if depth < 0 {
				return false
			}
		}
	}

	return depth == 0
}

// IsEnvReference reports whether the value is an accepted environment
// variable reference such as "{{ENV.SERVICE_API_KEY}}". These are the one
// placeholder-shaped form allowed in required fields.
func IsEnvReference(value string) bool {
	return envReferencePattern.MatchString(strings.TrimSpace(value))
}

// EnvReference builds an environment variable reference token for the
// given key. Non-alphanumeric characters are folded to underscores and the
// key is uppercased.
func EnvReference(key string) string {
	var builder strings.Builder

	for _, r := range strings.ToUpper(key) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		default:
			builder.WriteRune('_')
		}
	}

	name := strings.Trim(builder.String(), "_")
	if name == "" {
		name = "VALUE"
	}

	return openDelim + "ENV." + name + closeDelim
}

// EnvReferenceKey extracts the environment variable name from a
// reference token, or "" when the value is not one.
func EnvReferenceKey(value string) string {
	if !IsEnvReference(value) {
		return ""
	}

	inner := strings.TrimSpace(value)
	inner = strings.TrimPrefix(inner, openDelim)
	inner = strings.TrimSuffix(inner, closeDelim)
	inner = strings.TrimSpace(inner)

	return strings.TrimPrefix(inner, "ENV.")
}

// Passthrough returns the expression that forwards the upstream node's
// output unchanged. Used as the last-resort value for required free-form
// fields.
func Passthrough() string {
	return openDelim + "input" + closeDelim
}
