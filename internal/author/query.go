// Package author provides author name parsing and matching for command-line lookups.
package author

import (
	"strings"
)

// Query represents a parsed author lookup.
type Query struct {
	First string // First name (may be empty for last-name-only queries)
	Last  string // Last name (required)
}

// ParseQuery parses an author lookup string into a structured Query.
//
// Supported formats:
//   - "Yu"           → last="Yu" (single word = last name only)
//   - "Timothy Yu"   → first="Timothy", last="Yu" (space-separated = First Last)
//   - "Yu, Timothy"  → first="Timothy", last="Yu" (comma = Last, First)
//
// Names are trimmed but case is preserved (matching is case-insensitive).
func ParseQuery(input string) Query {
	input = strings.TrimSpace(input)
	if input == "" {
		return Query{}
	}

	// Check for comma format: "Last, First"
	if idx := strings.Index(input, ","); idx > 0 {
		last := strings.TrimSpace(input[:idx])
		first := strings.TrimSpace(input[idx+1:])
		return Query{First: first, Last: last}
	}

	return splitDisplayName(input)
}

// splitDisplayName splits "First Middle Last" at the last word.
func splitDisplayName(name string) Query {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return Query{}
	case 1:
		return Query{Last: parts[0]}
	}
	return Query{
		First: strings.Join(parts[:len(parts)-1], " "),
		Last:  parts[len(parts)-1],
	}
}

// IsEmpty returns true for a query parsed from a blank string.
func (q Query) IsEmpty() bool {
	return q.Last == ""
}

// Matches checks if the query matches an author display name ("First Last").
//
// Matching rules:
//   - Last name: case-insensitive exact match (required)
//   - First name: case-insensitive prefix match (if query has first name)
//
// This lets "Tim Yu" match "Timothy C Yu" while keeping "Yu" from matching
// "Yujia Chen".
func (q Query) Matches(name string) bool {
	if q.IsEmpty() {
		return false
	}
	a := splitDisplayName(name)

	// Last name must match exactly (case-insensitive)
	if !strings.EqualFold(q.Last, a.Last) {
		return false
	}

	// If no first name in query, we're done
	if q.First == "" {
		return true
	}

	// First name uses prefix matching (case-insensitive)
	return strings.HasPrefix(
		strings.ToLower(a.First),
		strings.ToLower(q.First),
	)
}

// Resolve returns the names that q matches, in the given order.
// An exact case-insensitive match of the whole name wins over partial matches.
func (q Query) Resolve(input string, names []string) []string {
	input = strings.TrimSpace(input)
	for _, name := range names {
		if strings.EqualFold(name, input) {
			return []string{name}
		}
	}

	var matches []string
	for _, name := range names {
		if q.Matches(name) {
			matches = append(matches, name)
		}
	}
	return matches
}
