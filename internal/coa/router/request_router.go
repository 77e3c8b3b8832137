package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kpvarma/ecoas-forge-sub000/internal/auth"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/service"
)

type RequestRouter struct {
	rs *service.RequestService
	// strictPaging is used when the list query does not set strict.
	strictPaging bool
}

func NewRequestRouter(rs *service.RequestService, strictPaging bool) *RequestRouter {
	return &RequestRouter{rs: rs, strictPaging: strictPaging}
}

// RegisterRoutes mounts the request endpoints under /requests.
func (rr *RequestRouter) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/requests", auth.RequireAuth())
	g.GET("", rr.HandleList)
	g.GET("/:id", rr.HandleGet)
	g.POST("", auth.RequireRole(model.RoleSuperuser, model.RoleTemplateAdmin), rr.HandleCreate)
	g.DELETE("/:id", auth.RequireRole(model.RoleSuperuser), rr.HandleDelete)
	g.POST("/:id/assign", auth.RequireRole(model.RoleSuperuser, model.RoleTemplateAdmin), rr.HandleAssign)
	g.POST("/:id/approve", rr.HandleApprove)
	g.POST("/:id/reject", rr.HandleReject)
	g.POST("/:id/retry", rr.HandleRetry)
	g.POST("/:id/document", auth.RequireRole(model.RoleSuperuser, model.RoleTemplateAdmin), rr.HandleAttachDocument)
}

// HandleList handles GET /api/requests
// Query params: search, status, request_status, owner_status, owner, plant_id,
// part_number, page, page_size, expanded (comma separated ids), strict
func (rr *RequestRouter) HandleList(c *gin.Context) {
	page, pageSize, err := pageQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	strict, err := boolQuery(c, "strict", rr.strictPaging)
	if err != nil {
		badRequest(c, err)
		return
	}
	var expanded []string
	for _, v := range c.QueryArray("expanded") {
		expanded = append(expanded, strings.Split(v, ",")...)
	}

	res, err := rr.rs.List(c.Request.Context(), model.RequestQuery{
		Search:         c.Query("search"),
		Status:         c.Query("status"),
		RequestStatus:  c.Query("request_status"),
		OwnerStatus:    c.Query("owner_status"),
		Owner:          c.Query("owner"),
		PlantID:        c.Query("plant_id"),
		PartNumber:     c.Query("part_number"),
		Page:           page,
		PageSize:       pageSize,
		Expanded:       expanded,
		StrictPageSize: strict,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleGet handles GET /api/requests/:id
func (rr *RequestRouter) HandleGet(c *gin.Context) {
	r, err := rr.rs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// HandleCreate handles POST /api/requests
func (rr *RequestRouter) HandleCreate(c *gin.Context) {
	var dto model.CreateRequestDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	r, err := rr.rs.Create(c.Request.Context(), dto)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// HandleDelete handles DELETE /api/requests/:id
func (rr *RequestRouter) HandleDelete(c *gin.Context) {
	if err := rr.rs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleAssign handles POST /api/requests/:id/assign
func (rr *RequestRouter) HandleAssign(c *gin.Context) {
	var dto model.AssignDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	r, err := rr.rs.Assign(c.Request.Context(), c.Param("id"), dto.OwnerID, auth.FromGin(c).User)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// HandleApprove handles POST /api/requests/:id/approve with an optional {comment}
func (rr *RequestRouter) HandleApprove(c *gin.Context) {
	var dto model.ReviewDTO
	if err := bindOptionalJSON(c, &dto); err != nil {
		badRequest(c, err)
		return
	}
	r, err := rr.rs.Approve(c.Request.Context(), c.Param("id"), auth.FromGin(c).User, dto.Comment)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// HandleReject handles POST /api/requests/:id/reject with a mandatory {comment}
func (rr *RequestRouter) HandleReject(c *gin.Context) {
	var dto model.ReviewDTO
	if err := bindOptionalJSON(c, &dto); err != nil {
		badRequest(c, err)
		return
	}
	r, err := rr.rs.Reject(c.Request.Context(), c.Param("id"), auth.FromGin(c).User, dto.Comment)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// HandleRetry handles POST /api/requests/:id/retry
func (rr *RequestRouter) HandleRetry(c *gin.Context) {
	r, err := rr.rs.Retry(c.Request.Context(), c.Param("id"), auth.FromGin(c).User)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// HandleAttachDocument handles POST /api/requests/:id/document (multipart field "file")
func (rr *RequestRouter) HandleAttachDocument(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	r, err := rr.rs.AttachDocument(c.Request.Context(), c.Param("id"), fh.Filename, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
