package listing

import "strings"

// Set is a set of record ids, used for the expanded parents of a hierarchical list.
type Set map[string]struct{}

// NewSet builds a Set from ids, skipping blanks.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

// ParseSet parses a comma separated list of ids, as sent in an "expanded" query parameter.
func ParseSet(csv string) Set {
	if strings.TrimSpace(csv) == "" {
		return Set{}
	}
	return NewSet(strings.Split(csv, ",")...)
}

// Has reports whether id is in the set. A nil set is empty.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Row is one display row of a flattened parent/child list.
type Row[T any] struct {
	Item       T      `json:"item"`
	IsChild    bool   `json:"is_child"`
	Parent     *T     `json:"-"`
	ParentID   string `json:"parent_id,omitempty"`
	Expandable bool   `json:"expandable"`
	Expanded   bool   `json:"expanded"`
}

// Flatten turns parents into display order: each parent followed by its
// children when the parent is expanded. Parents without children are never
// expandable, so callers must not render a toggle for them.
func Flatten[T any](parents []T, expanded Set, idOf func(T) string, childrenOf func(T) []T) []Row[T] {
	rows := make([]Row[T], 0, len(parents))
	for i := range parents {
		parent := parents[i]
		id := idOf(parent)
		children := childrenOf(parent)
		open := len(children) > 0 && expanded.Has(id)

		rows = append(rows, Row[T]{
			Item:       parent,
			Expandable: len(children) > 0,
			Expanded:   open,
		})
		if !open {
			continue
		}
		for _, child := range children {
			rows = append(rows, Row[T]{
				Item:     child,
				IsChild:  true,
				Parent:   &parents[i],
				ParentID: id,
			})
		}
	}
	return rows
}
