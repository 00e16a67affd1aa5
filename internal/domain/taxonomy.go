package domain

import "strings"

// Taxonomy bundles the immutable per-domain vocabularies used by the screener.
type Taxonomy struct {
	Name         string
	Questions    []string
	Technologies []string
	Statuses     []string
}

// Clone returns a deep copy so callers cannot mutate shared slices.
func (t Taxonomy) Clone() Taxonomy {
	return Taxonomy{
		Name:         t.Name,
		Questions:    append([]string(nil), t.Questions...),
		Technologies: append([]string(nil), t.Technologies...),
		Statuses:     append([]string(nil), t.Statuses...),
	}
}

// ShortTechnology returns the vocabulary entry text before its first parenthetical.
func ShortTechnology(entry string) string {
	short, _, _ := strings.Cut(entry, " (")
	return strings.TrimSpace(short)
}

// ExpandTechnology maps an abbreviated technology value to its full
// vocabulary entry. Values with no matching short form are returned unchanged.
func ExpandTechnology(value string, vocabulary []string) string {
	trimmed := strings.TrimSpace(value)
	for _, entry := range vocabulary {
		if strings.EqualFold(ShortTechnology(entry), trimmed) {
			return entry
		}
	}
	return value
}
