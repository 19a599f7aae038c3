package tenant

import "strings"

// Canonical is the one spelling of a school code used for storage keys,
// stored records and comparisons.
func Canonical(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// SameSchool reports whether two codes name the same school.
func SameSchool(a, b string) bool {
	return Canonical(a) == Canonical(b)
}

// Key builds a storage key namespaced by the given scope parts, e.g.
// Key("attendance", "ABC123", "grade-4", "east") -> "attendance:ABC123:grade-4:east".
// Empty parts are kept so that distinct scopes never collide.
func Key(prefix string, parts ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(strings.ReplaceAll(strings.TrimSpace(p), ":", "_"))
	}
	return b.String()
}

// SchoolKey is Key with the school code canonicalised as the first scope part.
func SchoolKey(prefix, schoolCode string, parts ...string) string {
	return Key(prefix, append([]string{Canonical(schoolCode)}, parts...)...)
}
