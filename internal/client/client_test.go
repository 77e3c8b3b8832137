package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpvarma/ecoas-forge-sub000/internal/auth"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/mockdata"
	"github.com/kpvarma/ecoas-forge-sub000/internal/uploads"
	"github.com/kpvarma/ecoas-forge-sub000/internal/uploads/drivers"
)

func intPtr(v int) *int { return &v }

// newLiveServer serves the full API backed by memory stores seeded with ds.
func newLiveServer(t *testing.T, ds mockdata.Dataset) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	driver, err := drivers.NewLocalFSDriver(t.TempDir(), "/api/files")
	require.NoError(t, err)
	m := coa.NewManager(coa.NewMemoryStores(), uploads.NewUploadService(driver, 1<<20),
		auth.NewTokenIssuer("test-secret", "ecoa-test", time.Hour), false)
	_, err = m.Seed(context.Background(), ds, false)
	require.NoError(t, err)

	e := gin.New()
	m.RegisterRoutes(e.Group("/api"))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func testDataset() mockdata.Dataset {
	return mockdata.New(7, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)).Dataset(12)
}

func TestClient_LiveRoundTrip(t *testing.T) {
	ds := testDataset()
	srv := newLiveServer(t, ds)
	ctx := context.Background()

	c := New(srv.URL)
	user, err := c.Login(ctx, ds.Users[0].Email)
	require.NoError(t, err)
	assert.Equal(t, model.RoleSuperuser, user.Role)
	assert.NotEmpty(t, c.Token)

	list := c.Requests().List(ctx, model.RequestQuery{Page: intPtr(2), PageSize: intPtr(10)})
	require.True(t, list.OK(), list.Err)
	assert.Equal(t, 12, list.Value.Pagination.Total)
	assert.Equal(t, 11, list.Value.Pagination.ShowingFrom)
	assert.Len(t, list.Value.Rows, 2)

	parent := list.Value.Rows[0].Request
	got := c.Requests().Get(ctx, parent.ID)
	require.True(t, got.OK(), got.Err)
	assert.Equal(t, parent.ID, got.Value.ID)

	tpls := c.Templates().List(ctx, model.TemplateQuery{})
	require.True(t, tpls.OK(), tpls.Err)
	assert.NotEmpty(t, tpls.Value.Items)

	tpl := c.Templates().Get(ctx, tpls.Value.Items[0].ID)
	require.True(t, tpl.OK(), tpl.Err)
	assert.Equal(t, tpls.Value.Items[0].PartNumber, tpl.Value.PartNumber)

	users := c.Users().List(ctx, model.UserQuery{})
	require.True(t, users.OK(), users.Err)
	assert.Equal(t, len(ds.Users), users.Value.Pagination.Total)
}

func TestClient_TemplateWritesUnwrapEnvelope(t *testing.T) {
	ds := testDataset()
	srv := newLiveServer(t, ds)
	ctx := context.Background()
	c := New(srv.URL)
	_, err := c.Login(ctx, ds.Users[0].Email)
	require.NoError(t, err)

	created := c.Templates().Create(ctx, model.CreateTemplateDTO{
		PartNumber: "PN-CLIENT-1",
		PlantID:    "PLANT-9",
		XMLContent: `<coaTemplate partNumber="PN-CLIENT-1"/>`,
	})
	require.True(t, created.OK(), created.Err)
	assert.Equal(t, "PN-CLIENT-1", created.Value.PartNumber)
	assert.NotEmpty(t, created.Value.ID)

	xml := c.Templates().XML(ctx, created.Value.ID)
	require.True(t, xml.OK(), xml.Err)
	assert.Contains(t, string(xml.Value), "PN-CLIENT-1")

	bad := c.Templates().SaveXML(ctx, created.Value.ID, "<unclosed>")
	assert.Equal(t, SourceFailed, bad.Source)

	del := c.Templates().Delete(ctx, created.Value.ID, false)
	require.True(t, del.OK(), del.Err)
	gone := c.Templates().Get(ctx, created.Value.ID)
	assert.True(t, IsNotFound(gone.Err))
}

func TestClient_ResponsibilityDeleteNeedsConfirm(t *testing.T) {
	ds := testDataset()
	srv := newLiveServer(t, ds)
	ctx := context.Background()
	c := New(srv.URL)
	_, err := c.Login(ctx, ds.Users[0].Email)
	require.NoError(t, err)

	id := ds.Responsibilities[0].ID
	res := c.Responsibilities().Delete(ctx, id, false)
	assert.Equal(t, SourceFailed, res.Source)
	var apiErr *APIError
	require.ErrorAs(t, res.Err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	res = c.Responsibilities().Delete(ctx, id, true)
	assert.True(t, res.OK(), res.Err)
	assert.True(t, IsNotFound(c.Responsibilities().Get(ctx, id).Err))
}

func TestClient_FallbackWhenServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	res := c.Requests().List(ctx, model.RequestQuery{})
	require.Equal(t, SourceFallback, res.Source)
	assert.True(t, res.Stale())
	assert.Error(t, res.Err)
	assert.Equal(t, 12, res.Value.Pagination.Total)
	assert.Len(t, res.Value.Rows, 10)

	fb := mockdata.Fallback()
	tpl := c.Templates().Get(ctx, fb.Templates[0].ID)
	assert.True(t, tpl.Stale())
	assert.Equal(t, fb.Templates[0].PartNumber, tpl.Value.PartNumber)

	user := c.Users().Get(ctx, "no-such-user")
	assert.Equal(t, SourceFailed, user.Source, "unknown ids are not invented")

	approve := c.Requests().Approve(ctx, fb.Requests[0].ID, "")
	assert.Equal(t, SourceFailed, approve.Source, "writes never fall back")
}

func TestClient_FallbackOnServerErrorOnly(t *testing.T) {
	var status atomic.Int64
	status.Store(http.StatusInternalServerError)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`{"error":"boom","message":"something broke"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	res := c.Responsibilities().List(ctx, model.ResponsibilityQuery{PageSize: intPtr(2)})
	require.True(t, res.Stale())
	assert.Len(t, res.Value.Items, 2)
	var apiErr *APIError
	require.ErrorAs(t, res.Err, &apiErr)
	assert.Equal(t, "something broke", apiErr.Message)

	status.Store(http.StatusForbidden)
	res = c.Responsibilities().List(ctx, model.ResponsibilityQuery{})
	assert.Equal(t, SourceFailed, res.Source)
	require.ErrorAs(t, res.Err, &apiErr)
	assert.Equal(t, "boom", apiErr.Code)
}

func TestClient_NoFallbackWhenDisabled(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := New(srv.URL)
	c.Fallback = nil
	res := c.Templates().List(context.Background(), model.TemplateQuery{})
	assert.Equal(t, SourceFailed, res.Source)
	assert.Empty(t, res.Value.Items)
}

func TestClient_CanceledContextDoesNotFallBack(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := New(srv.URL).Users().List(ctx, model.UserQuery{})
	assert.Equal(t, SourceFailed, res.Source)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestClient_NewSetsHTTPClient(t *testing.T) {
	c := New("http://localhost")
	require.NotNil(t, c.HTTPClient)
	assert.Equal(t, DefaultTimeout, c.HTTPClient.Timeout)
}

func TestClient_SharedAcrossGoroutines(t *testing.T) {
	ds := testDataset()
	srv := newLiveServer(t, ds)
	ctx := context.Background()

	login := New(srv.URL)
	_, err := login.Login(ctx, ds.Users[0].Email)
	require.NoError(t, err)

	c := &Client{BaseURL: srv.URL, Token: login.Token}
	var wg sync.WaitGroup
	var failed atomic.Int64
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res := c.Requests().List(ctx, model.RequestQuery{}); !res.OK() {
				failed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, failed.Load())
	assert.Nil(t, c.HTTPClient, "requests do not mutate the client")
}
