package listing

import "strings"

const (
	// FacetAll is the sentinel facet value meaning "no constraint".
	FacetAll = "all"
	// FacetUnassigned matches records whose facet value is empty, for facets that allow it.
	FacetUnassigned = "unassigned"
)

// Criteria is a free-text search term plus exact-match facets keyed by facet name.
type Criteria struct {
	Search string
	Facets map[string]string
}

// IsZero reports whether no criterion constrains the result.
func (c Criteria) IsZero() bool {
	if normalize(c.Search) != "" {
		return false
	}
	for _, v := range c.Facets {
		if isActive(v) {
			return false
		}
	}
	return true
}

// Facet extracts the value a facet criterion is compared against.
type Facet[T any] struct {
	Value func(T) string
	// AllowUnassigned lets the "unassigned" sentinel match records with an empty value.
	AllowUnassigned bool
}

// Fields describes which parts of a record the filter engine looks at.
type Fields[T any] struct {
	Search []func(T) string
	Facets map[string]Facet[T]
}

// Filter returns the records matching every active criterion, in input order.
// The result never aliases the input slice.
func Filter[T any](records []T, c Criteria, fields Fields[T]) []T {
	out := make([]T, 0, len(records))
	if c.IsZero() {
		return append(out, records...)
	}
	for _, r := range records {
		if Matches(r, c, fields) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether a single record satisfies the criteria.
// Search is an OR across the search fields; facets are ANDed together and with the search.
// Facet keys with no definition in fields are ignored.
func Matches[T any](record T, c Criteria, fields Fields[T]) bool {
	if term := normalize(c.Search); term != "" {
		found := false
		for _, field := range fields.Search {
			if strings.Contains(strings.ToLower(field(record)), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for name, want := range c.Facets {
		if !isActive(want) {
			continue
		}
		facet, ok := fields.Facets[name]
		if !ok || facet.Value == nil {
			continue
		}
		got := normalize(facet.Value(record))
		want = normalize(want)
		if facet.AllowUnassigned && want == FacetUnassigned {
			if got != "" && got != FacetUnassigned {
				return false
			}
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

func isActive(v string) bool {
	v = normalize(v)
	return v != "" && v != FacetAll
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
