package coa

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpvarma/ecoas-forge-sub000/internal/auth"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/mockdata"
	"github.com/kpvarma/ecoas-forge-sub000/internal/uploads"
	"github.com/kpvarma/ecoas-forge-sub000/internal/uploads/drivers"
)

func newTestManager(t *testing.T) (*Manager, Stores) {
	t.Helper()
	driver, err := drivers.NewLocalFSDriver(t.TempDir(), "/api/files")
	require.NoError(t, err)
	stores := NewMemoryStores()
	tokens := auth.NewTokenIssuer("test-secret", "ecoa-test", time.Hour)
	return NewManager(stores, uploads.NewUploadService(driver, 1<<20), tokens, false), stores
}

func TestManager_SeedIsIdempotent(t *testing.T) {
	m, stores := newTestManager(t)
	ctx := context.Background()
	ds := mockdata.New(11, time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)).Dataset(4)

	report, err := m.Seed(ctx, ds, true)
	require.NoError(t, err)
	assert.Equal(t, len(ds.Users), report.Users)
	assert.Equal(t, len(ds.Requests), report.Requests)
	assert.Equal(t, 0, report.Skipped)
	assert.Positive(t, report.Files)

	docs, err := stores.Requests.List(ctx)
	require.NoError(t, err)
	for _, d := range docs {
		if d.IsChild() {
			assert.NotEmpty(t, d.DocumentKey, d.ID)
		}
	}
	tpl, err := stores.Templates.Get(ctx, ds.Templates[0].ID)
	require.NoError(t, err)
	data, err := m.uploads.ReadAll(ctx, tpl.XMLFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "coaTemplate")

	again, err := m.Seed(ctx, ds, false)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Users+again.Requests+again.Templates+again.Responsibilities)
	assert.Equal(t, len(ds.Users)+len(ds.Requests)+len(ds.Templates)+len(ds.Responsibilities), again.Skipped)
}

func TestManager_RoutesWithLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m, _ := newTestManager(t)
	ds := mockdata.New(5, time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)).Dataset(12)
	_, err := m.Seed(context.Background(), ds, false)
	require.NoError(t, err)

	e := gin.New()
	m.RegisterRoutes(e.Group("/api"))

	body, _ := json.Marshal(map[string]string{"email": ds.Users[0].Email})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login auth.LoginResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	assert.Equal(t, model.RoleSuperuser, login.User.Role)

	req = httptest.NewRequest(http.MethodGet, "/api/requests?page=2", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	w = httptest.NewRecorder()
	e.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list model.RequestListResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 12, list.Pagination.Total)
	assert.Equal(t, 11, list.Pagination.ShowingFrom)
	assert.Equal(t, 12, list.Pagination.ShowingTo)
	assert.Len(t, list.Rows, 2)

	req = httptest.NewRequest(http.MethodGet, "/api/requests", nil)
	w = httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
