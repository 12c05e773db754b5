package dataset

import (
	"strconv"
	"strings"
)

// normalizeCol strips parentheses and lowercases for cross-release column
// matching. "Site EUI (kBtu/ft²)" and "site eui kbtu/ft²" resolve the same.
func normalizeCol(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "(", "")
	s = strings.ReplaceAll(s, ")", "")
	return s
}

// mapColumnsNormalized builds a normalized column name → index map.
func mapColumnsNormalized(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		m[normalizeCol(col)] = i
	}
	return m
}

// getColN gets a column value by normalized name.
func getColN(record []string, colIdx map[string]int, name string) string {
	idx, ok := colIdx[normalizeCol(name)]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// firstNonEmpty returns the first non-empty value from the aliased columns.
// Column names drift across yearly releases; each canonical field carries
// every historical alias here.
func firstNonEmpty(record []string, colIdx map[string]int, names ...string) string {
	for _, name := range names {
		if v := getColN(record, colIdx, name); v != "" {
			return v
		}
	}
	return ""
}

// anyColumnPresent reports whether at least one alias exists in the header.
func anyColumnPresent(colIdx map[string]int, names ...string) bool {
	for _, name := range names {
		if _, ok := colIdx[normalizeCol(name)]; ok {
			return true
		}
	}
	return false
}

// notAvailable markers used by the source files for suppressed values.
var notAvailable = map[string]bool{
	"":              true,
	"n/a":           true,
	"na":            true,
	"not available": true,
	"null":          true,
}

// parseFloatPtr parses a numeric field tolerantly: thousands separators are
// stripped and empty or suppressed values yield nil, never zero.
func parseFloatPtr(s string) *float64 {
	s = strings.TrimSpace(s)
	if notAvailable[strings.ToLower(s)] {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseIntPtr parses an integer field with the same tolerance as
// parseFloatPtr. Values with a fractional part are truncated (source files
// encode floor counts like "51.0").
func parseIntPtr(s string) *int {
	f := parseFloatPtr(s)
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

// parseBoolYes returns a pointer for explicit Y/Yes or N/No answers and nil
// for anything else, preserving the unknown state.
func parseBoolYes(s string) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "true", "1":
		v := true
		return &v
	case "n", "no", "false", "0":
		v := false
		return &v
	default:
		return nil
	}
}

// containsFold reports whether substr occurs in s, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
