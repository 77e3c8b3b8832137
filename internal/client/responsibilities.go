package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/mockdata"
)

type ResponsibilitiesClient struct {
	c *Client
}

func (rc *ResponsibilitiesClient) List(ctx context.Context, q model.ResponsibilityQuery) Result[model.ResponsibilityListResult] {
	values := url.Values{}
	setIf(values, "search", q.Search)
	setIf(values, "status", q.Status)
	setIf(values, "user_id", q.UserID)
	setIf(values, "part_number", q.PartNumber)
	setIf(values, "plant_id", q.PlantID)
	pageValues(values, q.Page, q.PageSize)

	return read(ctx, rc.c, "responsibilities",
		func() (model.ResponsibilityListResult, error) {
			var out model.ResponsibilityListResult
			err := rc.c.do(ctx, http.MethodGet, "api/responsibilities", values, nil, &out)
			return out, err
		},
		func(ds *mockdata.Dataset) (model.ResponsibilityListResult, bool) {
			return responsibilityPage(ds, q), true
		})
}

func (rc *ResponsibilitiesClient) Get(ctx context.Context, id string) Result[model.Responsibility] {
	return read(ctx, rc.c, "responsibility",
		func() (model.Responsibility, error) {
			var out model.Responsibility
			err := rc.c.do(ctx, http.MethodGet, "api/responsibilities/"+url.PathEscape(id), nil, nil, &out)
			return out, err
		},
		func(ds *mockdata.Dataset) (model.Responsibility, bool) {
			return findByID(ds.ResponsibilitiesWithUsers(), id)
		})
}

func (rc *ResponsibilitiesClient) Create(ctx context.Context, dto model.CreateResponsibilityDTO) Result[model.Responsibility] {
	return write(func() (model.Responsibility, error) {
		var out model.Responsibility
		err := rc.c.do(ctx, http.MethodPost, "api/responsibilities", nil, dto, &out)
		return out, err
	})
}

func (rc *ResponsibilitiesClient) Update(ctx context.Context, id string, dto model.UpdateResponsibilityDTO) Result[model.Responsibility] {
	return write(func() (model.Responsibility, error) {
		var out model.Responsibility
		err := rc.c.do(ctx, http.MethodPut, "api/responsibilities/"+url.PathEscape(id), nil, dto, &out)
		return out, err
	})
}

// Delete removes a responsibility. The server refuses unless confirm is set.
func (rc *ResponsibilitiesClient) Delete(ctx context.Context, id string, confirm bool) Result[bool] {
	q := url.Values{}
	if confirm {
		q.Set("confirm", "true")
	}
	return write(func() (bool, error) {
		err := rc.c.do(ctx, http.MethodDelete, "api/responsibilities/"+url.PathEscape(id), q, nil, nil)
		return err == nil, err
	})
}
