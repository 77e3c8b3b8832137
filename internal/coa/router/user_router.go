package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kpvarma/ecoas-forge-sub000/internal/auth"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/service"
)

type UserRouter struct {
	us *service.UserService
}

func NewUserRouter(us *service.UserService) *UserRouter {
	return &UserRouter{us: us}
}

// RegisterRoutes mounts the user endpoints under /users. Writes are superuser only.
func (ur *UserRouter) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/users", auth.RequireAuth())
	admin := auth.RequireRole(model.RoleSuperuser)

	g.GET("", ur.HandleList)
	g.GET("/:id", ur.HandleGet)
	g.POST("", admin, ur.HandleCreate)
	g.PUT("/:id", admin, ur.HandleUpdate)
	g.DELETE("/:id", admin, ur.HandleDelete)
}

// HandleList handles GET /api/users?search=&role=&department=&page=&page_size=
func (ur *UserRouter) HandleList(c *gin.Context) {
	page, pageSize, err := pageQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	res, err := ur.us.List(c.Request.Context(), model.UserQuery{
		Search:     c.Query("search"),
		Role:       c.Query("role"),
		Department: c.Query("department"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// HandleGet handles GET /api/users/:id
func (ur *UserRouter) HandleGet(c *gin.Context) {
	u, err := ur.us.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// HandleCreate handles POST /api/users
func (ur *UserRouter) HandleCreate(c *gin.Context) {
	var dto model.CreateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	u, err := ur.us.Create(c.Request.Context(), dto)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// HandleUpdate handles PUT /api/users/:id
func (ur *UserRouter) HandleUpdate(c *gin.Context) {
	var dto model.UpdateUserDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		badRequest(c, err)
		return
	}
	u, err := ur.us.Update(c.Request.Context(), c.Param("id"), dto)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// HandleDelete handles DELETE /api/users/:id
func (ur *UserRouter) HandleDelete(c *gin.Context) {
	if c.Param("id") == auth.FromGin(c).UserID() {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict", Message: "cannot delete the signed-in user"})
		return
	}
	if err := ur.us.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
