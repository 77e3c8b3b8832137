package client

import (
	"slices"
	"strings"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/listing"
	"github.com/kpvarma/ecoas-forge-sub000/internal/mockdata"
	"github.com/kpvarma/ecoas-forge-sub000/utils"
)

// The fallback views apply the same filters and paging as the server so a
// stale page looks like the live one.

func userNames(ds *mockdata.Dataset) map[string]string {
	names := make(map[string]string, len(ds.Users))
	for _, u := range ds.Users {
		names[u.ID] = u.Name
	}
	return names
}

func templatePage(ds *mockdata.Dataset, q model.TemplateQuery) model.TemplateListResult {
	all := ds.TemplatesWithOwners()
	if !q.IncludeDeleted && !strings.EqualFold(q.Status, string(model.RecordStatusDeleted)) {
		all = slices.DeleteFunc(all, func(t model.Template) bool { return t.Status == model.RecordStatusDeleted })
	}
	page, size := utils.GetPageParams(q.Page, q.PageSize)
	p := listing.Paginate(listing.Filter(all, q.Criteria(), model.TemplateFields), page, size)
	return model.TemplateListResult{Items: p.Items, Pagination: model.NewPaginationDTO(p)}
}

func responsibilityPage(ds *mockdata.Dataset, q model.ResponsibilityQuery) model.ResponsibilityListResult {
	page, size := utils.GetPageParams(q.Page, q.PageSize)
	p := listing.Paginate(listing.Filter(ds.ResponsibilitiesWithUsers(), q.Criteria(), model.ResponsibilityFields), page, size)
	return model.ResponsibilityListResult{Items: p.Items, Pagination: model.NewPaginationDTO(p)}
}

func userPage(ds *mockdata.Dataset, q model.UserQuery) model.UserListResult {
	page, size := utils.GetPageParams(q.Page, q.PageSize)
	p := listing.Paginate(listing.Filter(slices.Clone(ds.Users), q.Criteria(), model.UserFields), page, size)
	return model.UserListResult{Items: p.Items, Pagination: model.NewPaginationDTO(p)}
}

func requestPage(ds *mockdata.Dataset, q model.RequestQuery) model.RequestListResult {
	rows, pagination := model.PageRequests(slices.Clone(ds.Requests), q)
	return model.RequestListResult{Rows: model.NewRequestRows(rows, userNames(ds)), Pagination: pagination}
}

func findByID[T interface{ GetID() string }](items []T, id string) (T, bool) {
	for _, v := range items {
		if v.GetID() == id {
			return v, true
		}
	}
	var zero T
	return zero, false
}
