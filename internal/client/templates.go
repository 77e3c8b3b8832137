package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/mockdata"
)

// envelope is the {success, message, data} wrapper of the template API.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type TemplatesClient struct {
	c *Client
}

func (tc *TemplatesClient) List(ctx context.Context, q model.TemplateQuery) Result[model.TemplateListResult] {
	values := url.Values{}
	setIf(values, "search", q.Search)
	setIf(values, "status", q.Status)
	setIf(values, "plant_id", q.PlantID)
	setIf(values, "part_no", q.PartNumber)
	setIf(values, "hintl", q.HINTL)
	if q.IncludeDeleted {
		values.Set("include_deleted", "true")
	}
	pageValues(values, q.Page, q.PageSize)

	return read(ctx, tc.c, "templates",
		func() (model.TemplateListResult, error) {
			var out envelope[model.TemplateListResult]
			err := tc.c.do(ctx, http.MethodGet, "api/template", values, nil, &out)
			return out.Data, err
		},
		func(ds *mockdata.Dataset) (model.TemplateListResult, bool) {
			return templatePage(ds, q), true
		})
}

func (tc *TemplatesClient) Get(ctx context.Context, id string) Result[model.Template] {
	return read(ctx, tc.c, "template",
		func() (model.Template, error) {
			var out envelope[model.Template]
			err := tc.c.do(ctx, http.MethodGet, "api/template/"+url.PathEscape(id), nil, nil, &out)
			return out.Data, err
		},
		func(ds *mockdata.Dataset) (model.Template, bool) {
			t, ok := findByID(ds.TemplatesWithOwners(), id)
			return t, ok && t.Status != model.RecordStatusDeleted
		})
}

func (tc *TemplatesClient) Create(ctx context.Context, dto model.CreateTemplateDTO) Result[model.Template] {
	return write(func() (model.Template, error) {
		var out envelope[model.Template]
		err := tc.c.do(ctx, http.MethodPost, "api/template", nil, dto, &out)
		return out.Data, err
	})
}

func (tc *TemplatesClient) Update(ctx context.Context, id string, dto model.UpdateTemplateDTO) Result[model.Template] {
	return write(func() (model.Template, error) {
		var out envelope[model.Template]
		err := tc.c.do(ctx, http.MethodPut, "api/template/"+url.PathEscape(id), nil, dto, &out)
		return out.Data, err
	})
}

// SaveXML replaces the XML document of a template.
func (tc *TemplatesClient) SaveXML(ctx context.Context, id, xml string) Result[model.Template] {
	return write(func() (model.Template, error) {
		var out envelope[model.Template]
		body := map[string]string{"xml_content": xml}
		err := tc.c.do(ctx, http.MethodPut, "api/template/"+url.PathEscape(id)+"/xml", nil, body, &out)
		return out.Data, err
	})
}

// Delete soft deletes a template, or removes it when hard is set.
func (tc *TemplatesClient) Delete(ctx context.Context, id string, hard bool) Result[bool] {
	q := url.Values{}
	if hard {
		q.Set("hard", strconv.FormatBool(hard))
	}
	return write(func() (bool, error) {
		err := tc.c.do(ctx, http.MethodDelete, "api/template/"+url.PathEscape(id), q, nil, nil)
		return err == nil, err
	})
}

// XML downloads the raw XML document of a template. It has no fallback.
func (tc *TemplatesClient) XML(ctx context.Context, id string) Result[[]byte] {
	return write(func() ([]byte, error) {
		return tc.c.raw(ctx, "api/template/"+url.PathEscape(id)+"/xml")
	})
}

func (c *Client) raw(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(endpoint, nil), nil)
	if err != nil {
		return nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}
	return io.ReadAll(resp.Body)
}
