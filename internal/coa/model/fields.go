package model

import (
	"slices"
	"strconv"

	"github.com/kpvarma/ecoas-forge-sub000/internal/listing"
)

// Facet names accepted by the list filters.
const (
	FacetStatus        = "status"
	FacetRequestStatus = "request_status"
	FacetOwnerStatus   = "owner_status"
	FacetOwner         = "owner"
	FacetPlantID       = "plant_id"
	FacetPartNumber    = "part_number"
	FacetPartNo        = "part_no"
	FacetHINTL         = "hintl"
	FacetUserID        = "user_id"
	FacetRole          = "role"
	FacetDepartment    = "department"
)

// RequestFields is what the request filter searches and facets on.
var RequestFields = listing.Fields[Request]{
	Search: []func(Request) string{
		func(r Request) string { return r.ID },
		func(r Request) string { return r.DocumentName },
		func(r Request) string { return r.InitiatorEmail },
		func(r Request) string { return r.PlantID },
		func(r Request) string { return r.PartNumber },
	},
	Facets: map[string]listing.Facet[Request]{
		FacetStatus:        {Value: func(r Request) string { return string(r.Status) }},
		FacetRequestStatus: {Value: func(r Request) string { return string(r.RequestStatus) }},
		FacetOwnerStatus:   {Value: func(r Request) string { return string(r.OwnerStatus) }},
		FacetOwner:         {Value: Request.OwnerIDValue, AllowUnassigned: true},
		FacetPlantID:       {Value: func(r Request) string { return r.PlantID }},
		FacetPartNumber:    {Value: func(r Request) string { return r.PartNumber }},
	},
}

// Criteria converts the query into filter criteria.
func (q RequestQuery) Criteria() listing.Criteria {
	return listing.Criteria{
		Search: q.Search,
		Facets: map[string]string{
			FacetStatus:        q.Status,
			FacetRequestStatus: q.RequestStatus,
			FacetOwnerStatus:   q.OwnerStatus,
			FacetOwner:         q.Owner,
			FacetPlantID:       q.PlantID,
			FacetPartNumber:    q.PartNumber,
		},
	}
}

// documentFacets describe a document's reviewer. An envelope with documents
// has no reviewer of its own, so these facets are checked on the documents.
var documentFacets = []string{FacetOwner, FacetOwnerStatus}

// MatchesHierarchy reports whether an envelope or any of its documents matches.
func MatchesHierarchy(parent Request, c listing.Criteria) bool {
	if len(parent.Children) == 0 {
		return listing.Matches(parent, c, RequestFields)
	}
	for _, child := range parent.Children {
		if listing.Matches(child, c, RequestFields) {
			return true
		}
	}

	envelope, documents := splitDocumentFacets(c)
	if !listing.Matches(parent, envelope, RequestFields) {
		return false
	}
	if documents.IsZero() {
		return true
	}
	for _, child := range parent.Children {
		if listing.Matches(child, documents, RequestFields) {
			return true
		}
	}
	return false
}

func splitDocumentFacets(c listing.Criteria) (envelope, documents listing.Criteria) {
	envelope = listing.Criteria{Search: c.Search, Facets: make(map[string]string, len(c.Facets))}
	documents = listing.Criteria{Facets: make(map[string]string, len(documentFacets))}
	for name, v := range c.Facets {
		if slices.Contains(documentFacets, name) {
			documents.Facets[name] = v
			continue
		}
		envelope.Facets[name] = v
	}
	return envelope, documents
}

// TemplateFields is what the template filter searches and facets on.
var TemplateFields = listing.Fields[Template]{
	Search: []func(Template) string{
		func(t Template) string { return t.ID },
		func(t Template) string { return t.PartNumber },
		func(t Template) string { return t.PlantID },
		func(t Template) string { return t.XMLFile },
	},
	Facets: map[string]listing.Facet[Template]{
		FacetStatus:  {Value: func(t Template) string { return string(t.Status) }},
		FacetPlantID: {Value: func(t Template) string { return t.PlantID }},
		FacetPartNo:  {Value: func(t Template) string { return t.PartNumber }},
		FacetHINTL:   {Value: func(t Template) string { return strconv.FormatBool(t.HINTLEnabled) }},
	},
}

// Criteria converts the query into filter criteria.
func (q TemplateQuery) Criteria() listing.Criteria {
	return listing.Criteria{
		Search: q.Search,
		Facets: map[string]string{
			FacetStatus:  q.Status,
			FacetPlantID: q.PlantID,
			FacetPartNo:  q.PartNumber,
			FacetHINTL:   q.HINTL,
		},
	}
}

// ResponsibilityFields is what the responsibility filter searches and facets on.
// Search covers the resolved user, so users must be resolved before filtering.
var ResponsibilityFields = listing.Fields[Responsibility]{
	Search: []func(Responsibility) string{
		func(r Responsibility) string {
			if r.User == nil {
				return ""
			}
			return r.User.Name
		},
		func(r Responsibility) string {
			if r.User == nil {
				return ""
			}
			return r.User.Email
		},
		func(r Responsibility) string { return r.PartNumber },
		func(r Responsibility) string { return r.PlantID },
	},
	Facets: map[string]listing.Facet[Responsibility]{
		FacetStatus:     {Value: func(r Responsibility) string { return string(r.Status) }},
		FacetUserID:     {Value: func(r Responsibility) string { return r.UserID }},
		FacetPartNumber: {Value: func(r Responsibility) string { return r.PartNumber }},
		FacetPlantID:    {Value: func(r Responsibility) string { return r.PlantID }},
	},
}

// Criteria converts the query into filter criteria.
func (q ResponsibilityQuery) Criteria() listing.Criteria {
	return listing.Criteria{
		Search: q.Search,
		Facets: map[string]string{
			FacetStatus:     q.Status,
			FacetUserID:     q.UserID,
			FacetPartNumber: q.PartNumber,
			FacetPlantID:    q.PlantID,
		},
	}
}

// UserFields is what the user filter searches and facets on.
var UserFields = listing.Fields[User]{
	Search: []func(User) string{
		func(u User) string { return u.Name },
		func(u User) string { return u.Email },
	},
	Facets: map[string]listing.Facet[User]{
		FacetRole:       {Value: func(u User) string { return string(u.Role) }},
		FacetDepartment: {Value: func(u User) string { return u.Department }},
	},
}

// Criteria converts the query into filter criteria.
func (q UserQuery) Criteria() listing.Criteria {
	return listing.Criteria{
		Search: q.Search,
		Facets: map[string]string{
			FacetRole:       q.Role,
			FacetDepartment: q.Department,
		},
	}
}

// NewPaginationDTO describes a page for a list response.
func NewPaginationDTO[T any](p listing.Page[T]) PaginationDTO {
	return PaginationDTO{
		Page:        p.Page,
		PageSize:    p.PageSize,
		Total:       p.TotalItems,
		TotalPages:  p.TotalPages,
		StartIndex:  p.StartIndex,
		EndIndex:    p.EndIndex,
		ShowingFrom: p.ShowingFrom(),
		ShowingTo:   p.ShowingTo(),
		Window:      p.Window(),
	}
}
