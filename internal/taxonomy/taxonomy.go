package taxonomy

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"HeadlineScreener/internal/domain"
)

// ErrUnknownTaxonomy is returned by Lookup for unregistered names.
var ErrUnknownTaxonomy = errors.New("unknown taxonomy")

// Registry keeps immutable taxonomies keyed by lower-cased name.
type Registry struct {
	items map[string]domain.Taxonomy
}

// NewRegistry builds a registry from the built-in taxonomies overlaid with
// overrides. An override replaces only the vocabularies it sets.
func NewRegistry(overrides ...domain.Taxonomy) (*Registry, error) {
	r := &Registry{items: map[string]domain.Taxonomy{}}
	for _, t := range Defaults() {
		r.items[key(t.Name)] = t
	}

	for _, o := range overrides {
		name := key(o.Name)
		if name == "" {
			return nil, fmt.Errorf("taxonomy override without name")
		}

		merged := r.items[name]
		merged.Name = name
		if len(o.Questions) > 0 {
			merged.Questions = o.Questions
		}
		if len(o.Technologies) > 0 {
			merged.Technologies = o.Technologies
		}
		if len(o.Statuses) > 0 {
			merged.Statuses = o.Statuses
		}
		if len(merged.Statuses) == 0 {
			merged.Statuses = ProjectStatuses
		}
		if len(merged.Questions) == 0 {
			return nil, fmt.Errorf("taxonomy %s: no disqualification questions", name)
		}
		r.items[name] = merged.Clone()
	}

	return r, nil
}

// Lookup returns a copy of the named taxonomy.
func (r *Registry) Lookup(name string) (domain.Taxonomy, error) {
	t, ok := r.items[key(name)]
	if !ok {
		return domain.Taxonomy{}, fmt.Errorf("%w: %s", ErrUnknownTaxonomy, name)
	}
	return t.Clone(), nil
}

// Names lists registered taxonomies in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Technologies is the union of every registered technology vocabulary,
// taxonomies in name order, duplicates dropped.
func (r *Registry) Technologies() []string {
	var all []string
	seen := map[string]struct{}{}
	for _, name := range r.Names() {
		for _, tech := range r.items[name].Technologies {
			if _, dup := seen[tech]; dup {
				continue
			}
			seen[tech] = struct{}{}
			all = append(all, tech)
		}
	}
	return all
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
