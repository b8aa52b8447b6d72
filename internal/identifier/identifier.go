package identifier

import (
	"regexp"
	"strings"
)

// TablePrefix namespaces every dynamically created table so generated names
// can never collide with the fixed application tables.
const TablePrefix = "arsip_"

var (
	safePattern    = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	unsafeRunes    = regexp.MustCompile(`[^a-z0-9]+`)
	repeatedScores = regexp.MustCompile(`_+`)
)

// Normalize lower-cases a free-text label and reduces it to [a-z0-9_],
// collapsing runs of other characters into single underscores.
func Normalize(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = unsafeRunes.ReplaceAllString(s, "_")
	s = repeatedScores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// DeriveTableName maps an archive type display name to its physical table
// name. Deterministic and idempotent under Normalize.
func DeriveTableName(displayName string) string {
	return TablePrefix + Normalize(displayName)
}

// DeriveColumnName maps a field label to its column name.
func DeriveColumnName(label string) string {
	return Normalize(label)
}

// IsSafeIdentifier reports whether s may be interpolated into SQL text as a
// table or column name. Values never go through this path; they are always
// parameter-bound.
func IsSafeIdentifier(s string) bool {
	return safePattern.MatchString(s)
}
