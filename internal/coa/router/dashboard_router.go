package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kpvarma/ecoas-forge-sub000/internal/auth"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/service"
	"github.com/kpvarma/ecoas-forge-sub000/internal/display"
)

type DashboardRouter struct {
	ds *service.DashboardService
}

func NewDashboardRouter(ds *service.DashboardService) *DashboardRouter {
	return &DashboardRouter{ds: ds}
}

// RegisterRoutes mounts GET /dashboard (authenticated) and GET /display/badge.
func (dr *DashboardRouter) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", auth.RequireAuth(), dr.HandleSummary)
	rg.GET("/display/badge", dr.HandleBadge)
}

// HandleSummary handles GET /api/dashboard
func (dr *DashboardRouter) HandleSummary(c *gin.Context) {
	sum, err := dr.ds.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// HandleBadge handles GET /api/display/badge?kind=&status=
// Unknown statuses map to the neutral badge; unknown kinds are rejected.
func (dr *DashboardRouter) HandleBadge(c *gin.Context) {
	kind, ok := display.ParseKind(c.DefaultQuery("kind", string(display.KindStatus)))
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: "unknown badge kind " + c.Query("kind")})
		return
	}
	status := c.Query("status")
	c.JSON(http.StatusOK, gin.H{
		"kind":   kind,
		"status": status,
		"known":  display.Known(status, kind),
		"badge":  display.ColorAndLabel(status, kind),
	})
}
