package client

import (
	"context"
	"net/http"
	"net/url"
	"slices"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/mockdata"
)

type UsersClient struct {
	c *Client
}

func (uc *UsersClient) List(ctx context.Context, q model.UserQuery) Result[model.UserListResult] {
	values := url.Values{}
	setIf(values, "search", q.Search)
	setIf(values, "role", q.Role)
	setIf(values, "department", q.Department)
	pageValues(values, q.Page, q.PageSize)

	return read(ctx, uc.c, "users",
		func() (model.UserListResult, error) {
			var out model.UserListResult
			err := uc.c.do(ctx, http.MethodGet, "api/users", values, nil, &out)
			return out, err
		},
		func(ds *mockdata.Dataset) (model.UserListResult, bool) {
			return userPage(ds, q), true
		})
}

func (uc *UsersClient) Get(ctx context.Context, id string) Result[model.User] {
	return read(ctx, uc.c, "user",
		func() (model.User, error) {
			var out model.User
			err := uc.c.do(ctx, http.MethodGet, "api/users/"+url.PathEscape(id), nil, nil, &out)
			return out, err
		},
		func(ds *mockdata.Dataset) (model.User, bool) {
			return findByID(slices.Clone(ds.Users), id)
		})
}
