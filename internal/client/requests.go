package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/mockdata"
)

type RequestsClient struct {
	c *Client
}

// List fetches one page of the request list. Strict is always sent so the
// fallback pages the same way the server did.
func (rc *RequestsClient) List(ctx context.Context, q model.RequestQuery) Result[model.RequestListResult] {
	values := url.Values{}
	setIf(values, "search", q.Search)
	setIf(values, "status", q.Status)
	setIf(values, "request_status", q.RequestStatus)
	setIf(values, "owner_status", q.OwnerStatus)
	setIf(values, "owner", q.Owner)
	setIf(values, "plant_id", q.PlantID)
	setIf(values, "part_number", q.PartNumber)
	if len(q.Expanded) > 0 {
		values.Set("expanded", strings.Join(q.Expanded, ","))
	}
	if q.StrictPageSize {
		values.Set("strict", "true")
	} else {
		values.Set("strict", "false")
	}
	pageValues(values, q.Page, q.PageSize)

	return read(ctx, rc.c, "requests",
		func() (model.RequestListResult, error) {
			var out model.RequestListResult
			err := rc.c.do(ctx, http.MethodGet, "api/requests", values, nil, &out)
			return out, err
		},
		func(ds *mockdata.Dataset) (model.RequestListResult, bool) {
			return requestPage(ds, q), true
		})
}

// Get fetches a request. Envelopes come with their documents.
func (rc *RequestsClient) Get(ctx context.Context, id string) Result[model.Request] {
	return read(ctx, rc.c, "request",
		func() (model.Request, error) {
			var out model.Request
			err := rc.c.do(ctx, http.MethodGet, "api/requests/"+url.PathEscape(id), nil, nil, &out)
			return out, err
		},
		func(ds *mockdata.Dataset) (model.Request, bool) {
			if r, ok := findByID(model.BuildHierarchy(ds.Requests), id); ok {
				return r, true
			}
			return findByID(ds.Requests, id)
		})
}

func (rc *RequestsClient) Create(ctx context.Context, dto model.CreateRequestDTO) Result[model.Request] {
	return rc.post(ctx, "api/requests", dto)
}

func (rc *RequestsClient) Assign(ctx context.Context, id, ownerID string) Result[model.Request] {
	return rc.post(ctx, "api/requests/"+url.PathEscape(id)+"/assign", model.AssignDTO{OwnerID: ownerID})
}

func (rc *RequestsClient) Approve(ctx context.Context, id, comment string) Result[model.Request] {
	return rc.post(ctx, "api/requests/"+url.PathEscape(id)+"/approve", model.ReviewDTO{Comment: comment})
}

// Reject needs a comment; the server answers 400 without one.
func (rc *RequestsClient) Reject(ctx context.Context, id, comment string) Result[model.Request] {
	return rc.post(ctx, "api/requests/"+url.PathEscape(id)+"/reject", model.ReviewDTO{Comment: comment})
}

func (rc *RequestsClient) Retry(ctx context.Context, id string) Result[model.Request] {
	return rc.post(ctx, "api/requests/"+url.PathEscape(id)+"/retry", nil)
}

func (rc *RequestsClient) Delete(ctx context.Context, id string) Result[bool] {
	return write(func() (bool, error) {
		err := rc.c.do(ctx, http.MethodDelete, "api/requests/"+url.PathEscape(id), nil, nil, nil)
		return err == nil, err
	})
}

func (rc *RequestsClient) post(ctx context.Context, endpoint string, body any) Result[model.Request] {
	return write(func() (model.Request, error) {
		var out model.Request
		err := rc.c.do(ctx, http.MethodPost, endpoint, nil, body, &out)
		return out, err
	})
}
