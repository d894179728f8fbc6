package models

import "fmt"

// Scope identifies one section's independent storage unit. Collections never
// reference data outside their scope; the only cross-scope traversal in the
// whole system is the login credential scan.
type Scope struct {
	Course  string `json:"course"`
	Year    string `json:"year"`
	Section string `json:"section"`
}

// NewScope builds a scope from its three path components.
func NewScope(course, year, section string) Scope {
	return Scope{Course: course, Year: year, Section: section}
}

// Key returns a stable identifier for lock and cache keys.
func (s Scope) Key() string {
	return fmt.Sprintf("%s/%s/%s", s.Course, s.Year, s.Section)
}

// IsZero reports whether any component is missing.
func (s Scope) IsZero() bool {
	return s.Course == "" || s.Year == "" || s.Section == ""
}

// Equal compares two scopes component-wise.
func (s Scope) Equal(other Scope) bool {
	return s.Course == other.Course && s.Year == other.Year && s.Section == other.Section
}
