package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
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

func newAPIServer(t *testing.T) (*httptest.Server, mockdata.Dataset) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	driver, err := drivers.NewLocalFSDriver(t.TempDir(), "/api/files")
	require.NoError(t, err)
	m := coa.NewManager(coa.NewMemoryStores(), uploads.NewUploadService(driver, 1<<20),
		auth.NewTokenIssuer("cli-secret", "ecoa-test", time.Hour), false)
	ds := mockdata.New(3, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)).Dataset(15)
	_, err = m.Seed(context.Background(), ds, false)
	require.NoError(t, err)

	e := gin.New()
	m.RegisterRoutes(e.Group("/api"))
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, ds
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(&stdout, &stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRequestsList(t *testing.T) {
	srv, ds := newAPIServer(t)

	out, errOut, err := run(t, "requests", "list", "--url", srv.URL, "--email", ds.Users[0].Email, "--page", "2")
	require.NoError(t, err, errOut)
	assert.Empty(t, errOut)
	assert.Contains(t, out, "Showing 11 to 15 of 15 results")
	assert.Contains(t, out, "Page 2 of 2: 1 [2]")
}

func TestRequestsListWithoutLoginFails(t *testing.T) {
	srv, _ := newAPIServer(t)

	_, _, err := run(t, "requests", "list", "--url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestListFallsBackWhenServerIsDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	out, errOut, err := run(t, "templates", "list", "--url", srv.URL, "--timeout", "1s")
	require.NoError(t, err)
	assert.Contains(t, errOut, "offline sample data")
	assert.Contains(t, out, "Showing 1 to")
}

func TestRejectNeedsComment(t *testing.T) {
	_, _, err := run(t, "requests", "reject", "REQ-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"comment" not set`)
}

func TestRenderPagination(t *testing.T) {
	var buf bytes.Buffer
	renderPagination(&buf, model.PaginationDTO{
		Page: 4, PageSize: 10, Total: 95, TotalPages: 10,
		ShowingFrom: 31, ShowingTo: 40, Window: []int{2, 3, 4, 5, 6},
	})
	assert.Equal(t, "Showing 31 to 40 of 95 results\nPage 4 of 10: 2 3 [4] 5 6\n", buf.String())
}

func TestRenderRequestsMarksHierarchy(t *testing.T) {
	parentID := "REQ-2024-001"
	parent := model.Request{BaseModel: model.BaseModel{ID: parentID}, DocumentName: "Envelope", Status: model.StatusPending}
	child := model.Request{BaseModel: model.BaseModel{ID: "CoA-2024-001-1"}, ParentID: &parentID, DocumentName: "Doc", Status: model.StatusCompleted}
	parent.Children = []model.Request{child}

	var buf bytes.Buffer
	renderRequest(&buf, parent)
	assert.Contains(t, buf.String(), "▾ REQ-2024-001")
	assert.Contains(t, buf.String(), "└ CoA-2024-001-1")
	assert.Contains(t, buf.String(), "Completed")
}
