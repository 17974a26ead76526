// Package survey contains the pure column-selection, projection and
// batching logic for survey workbooks. Nothing here performs I/O.
package survey

import (
	"strings"

	"github.com/tallyline/survey-engine/pkg/models"
)

// AdmissionPolicy decides whether a column name is worth analyzing at all.
// Two policies exist across iterations of this tool and neither is clearly
// authoritative, so the choice is configuration rather than code.
type AdmissionPolicy interface {
	// Admit reports whether the named column passes the policy.
	Admit(columnName string) bool
	// Name identifies the policy in logs.
	Name() string
}

// MarkerSubstringPolicy admits only columns whose name contains the marker,
// case-insensitively. Everything else is assumed to be a multiple-choice or
// metadata column.
type MarkerSubstringPolicy struct {
	Marker string
}

func (p MarkerSubstringPolicy) Admit(columnName string) bool {
	return strings.Contains(strings.ToLower(columnName), strings.ToLower(p.Marker))
}

func (p MarkerSubstringPolicy) Name() string { return "marker-substring" }

// BlacklistPatternPolicy rejects columns whose name contains any of the
// listed fragments, case-insensitively, and admits the rest.
type BlacklistPatternPolicy struct {
	Patterns []string
}

func (p BlacklistPatternPolicy) Admit(columnName string) bool {
	lower := strings.ToLower(columnName)
	for _, pattern := range p.Patterns {
		if pattern == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return false
		}
	}
	return true
}

func (p BlacklistPatternPolicy) Name() string { return "blacklist-pattern" }

// Selector applies the admission policy plus a distinct-value cardinality
// rule to decide which columns get a dataset.
type Selector struct {
	Policy    AdmissionPolicy
	Threshold int    // minimum distinct normalized values
	Sentinel  string // literal treated as no answer
}

// IsAnalyzable reports whether the column should be analyzed. The policy
// predicate runs first; a column that passes it still needs at least
// Threshold distinct trimmed non-empty non-sentinel values. Pure predicate,
// no side effects.
func (s Selector) IsAnalyzable(columnName string, rows []models.RawRow) bool {
	if !s.Policy.Admit(columnName) {
		return false
	}
	return s.distinctValues(columnName, rows) >= s.Threshold
}

// distinctValues counts distinct normalized answers for the column.
func (s Selector) distinctValues(columnName string, rows []models.RawRow) int {
	seen := make(map[string]struct{})
	for _, row := range rows {
		value := Normalize(row[columnName])
		if value == "" || strings.EqualFold(value, s.Sentinel) {
			continue
		}
		seen[value] = struct{}{}
	}
	return len(seen)
}

// Normalize trims a cell value for comparison purposes.
func Normalize(value string) string {
	return strings.TrimSpace(value)
}
