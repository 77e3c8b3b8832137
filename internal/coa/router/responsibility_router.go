package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kpvarma/ecoas-forge-sub000/internal/auth"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/service"
)

type ResponsibilityRouter struct {
	rs *service.ResponsibilityService
}

func NewResponsibilityRouter(rs *service.ResponsibilityService) *ResponsibilityRouter {
	return &ResponsibilityRouter{rs: rs}
}

// RegisterRoutes mounts the responsibility endpoints under /responsibilities.
func (rr *ResponsibilityRouter) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/responsibilities", auth.RequireAuth())
	admin := auth.RequireRole(model.RoleSuperuser)

	g.GET("", rr.HandleList)
	g.GET("/:id", rr.HandleGet)
	g.POST("", admin, rr.HandleCreate)
	g.PUT("/:id", admin, rr.HandleUpdate)
	g.DELETE("/:id", admin, rr.HandleDelete)
}

// HandleList handles GET /api/responsibilities
// Query params: search, status, user_id, part_number, plant_id, page, page_size
func (rr *ResponsibilityRouter) HandleList(c *gin.Context) {
	page, pageSize, err := pageQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	res, err := rr.rs.List(c.Request.Context(), model.ResponsibilityQuery{
		Search:     c.Query("search"),
		Status:     c.Query("status"),
		UserID:     c.Query("user_id"),
		PartNumber: c.Query("part_number"),
		PlantID:    c.Query("plant_id"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleGet handles GET /api/responsibilities/:id
func (rr *ResponsibilityRouter) HandleGet(c *gin.Context) {
	r, err := rr.rs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// HandleCreate handles POST /api/responsibilities
func (rr *ResponsibilityRouter) HandleCreate(c *gin.Context) {
	var dto model.CreateResponsibilityDTO
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

// HandleUpdate handles PUT /api/responsibilities/:id
func (rr *ResponsibilityRouter) HandleUpdate(c *gin.Context) {
	var dto model.UpdateResponsibilityDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	r, err := rr.rs.Update(c.Request.Context(), c.Param("id"), dto)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// HandleDelete handles DELETE /api/responsibilities/:id?confirm=true
func (rr *ResponsibilityRouter) HandleDelete(c *gin.Context) {
	confirm, err := boolQuery(c, "confirm", false)
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := rr.rs.Delete(c.Request.Context(), c.Param("id"), confirm); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
