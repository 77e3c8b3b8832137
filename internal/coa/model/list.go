package model

import (
	"github.com/kpvarma/ecoas-forge-sub000/internal/listing"
	"github.com/kpvarma/ecoas-forge-sub000/utils"
)

// PageRequests builds the hierarchy of flat, keeps the envelopes that match q
// (an envelope matches when it or any of its documents does), pages them and
// flattens the page into display rows. By default the page is taken over
// envelopes and expanded documents follow their envelope, so a page may hold
// more rows than the page size. StrictPageSize pages over the flattened rows.
func PageRequests(flat []Request, q RequestQuery) ([]listing.Row[Request], PaginationDTO) {
	criteria := q.Criteria()
	matched := make([]Request, 0)
	for _, parent := range BuildHierarchy(flat) {
		if MatchesHierarchy(parent, criteria) {
			matched = append(matched, parent)
		}
	}

	page, size := utils.GetPageParams(q.Page, q.PageSize)
	expanded := listing.NewSet(q.Expanded...)
	idOf := func(r Request) string { return r.ID }
	childrenOf := func(r Request) []Request { return r.Children }

	if q.StrictPageSize {
		p := listing.Paginate(listing.Flatten(matched, expanded, idOf, childrenOf), page, size)
		return p.Items, NewPaginationDTO(p)
	}
	p := listing.Paginate(matched, page, size)
	return listing.Flatten(p.Items, expanded, idOf, childrenOf), NewPaginationDTO(p)
}

// NewRequestRows converts flattened rows to response rows, resolving owner
// display names from names.
func NewRequestRows(rows []listing.Row[Request], names map[string]string) []RequestRow {
	out := make([]RequestRow, 0, len(rows))
	for _, row := range rows {
		item := row.Item
		item.Children = nil
		item.Owner = names[item.OwnerIDValue()]
		out = append(out, RequestRow{
			Request:    item,
			IsChild:    row.IsChild,
			ParentID:   row.ParentID,
			Expandable: row.Expandable,
			Expanded:   row.Expanded,
			Badges:     item.Badges(),
		})
	}
	return out
}
