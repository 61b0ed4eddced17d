package domain

import (
	"fmt"
	"sort"
	"strings"
)

// SortField names a record attribute the listing can be ordered by.
type SortField string

const (
	SortNone   SortField = ""
	SortName   SortField = "name"
	SortSource SortField = "source"
	SortType   SortField = "type"
)

// ParseSortField validates a sort field name. Empty keeps feed order.
func ParseSortField(s string) (SortField, error) {
	switch SortField(s) {
	case SortNone, SortName, SortSource, SortType:
		return SortField(s), nil
	default:
		return "", fmt.Errorf("unknown sort field %q", s)
	}
}

// Query narrows and orders a record list the way the listing UI does.
// The zero Query returns records unchanged.
type Query struct {
	Filter     FilterState // nil shows every source
	Text       string      // case-insensitive match on name, description, source
	Sort       SortField
	Descending bool
}

// Apply returns the records matching q, in q's order. The input is not modified.
func (q Query) Apply(records []Record) []Record {
	needle := strings.ToLower(strings.TrimSpace(q.Text))

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if q.Filter != nil && !q.Filter.Visible(r.Source) {
			continue
		}
		if needle != "" && !matches(r, needle) {
			continue
		}
		out = append(out, r)
	}

	if q.Sort != SortNone {
		key := sortKey(q.Sort)
		sort.SliceStable(out, func(i, j int) bool {
			a, b := key(out[i]), key(out[j])
			if q.Descending {
				return a > b
			}
			return a < b
		})
	}
	return out
}

func matches(r Record, needle string) bool {
	return strings.Contains(strings.ToLower(r.Name), needle) ||
		strings.Contains(strings.ToLower(r.Description), needle) ||
		strings.Contains(string(r.Source), needle)
}

func sortKey(f SortField) func(Record) string {
	switch f {
	case SortSource:
		return func(r Record) string { return string(r.Source) }
	case SortType:
		return func(r Record) string { return string(r.Kind) }
	default:
		return func(r Record) string { return strings.ToLower(r.Name) }
	}
}
