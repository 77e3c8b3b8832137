package router

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kpvarma/ecoas-forge-sub000/internal/auth"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/model"
	"github.com/kpvarma/ecoas-forge-sub000/internal/coa/service"
)

type TemplateRouter struct {
	ts *service.TemplateService
}

func NewTemplateRouter(ts *service.TemplateService) *TemplateRouter {
	return &TemplateRouter{ts: ts}
}

// RegisterRoutes mounts the template endpoints under /template.
// All responses use the {success, message, data} envelope.
func (tr *TemplateRouter) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/template", auth.RequireAuth())
	write := auth.RequireRole(model.RoleSuperuser, model.RoleTemplateAdmin)

	g.GET("", tr.HandleList)
	g.GET("/:id", tr.HandleGet)
	g.GET("/:id/xml", tr.HandleGetXML)
	g.POST("", write, tr.HandleCreate)
	g.PUT("/:id", write, tr.HandleUpdate)
	g.PUT("/:id/xml", write, tr.HandleSaveXML)
	g.DELETE("/:id", write, tr.HandleDelete)
}

func (tr *TemplateRouter) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: err.Error()})
}

// HandleList handles GET /api/template
// Query params: search, status, plant_id, part_no, hintl, include_deleted, page, page_size
func (tr *TemplateRouter) HandleList(c *gin.Context) {
	page, pageSize, err := pageQuery(c)
	if err != nil {
		tr.badRequest(c, err)
		return
	}
	includeDeleted, err := boolQuery(c, "include_deleted", false)
	if err != nil {
		tr.badRequest(c, err)
		return
	}
	res, err := tr.ts.List(c.Request.Context(), model.TemplateQuery{
		Search:         c.Query("search"),
		Status:         c.Query("status"),
		PlantID:        c.Query("plant_id"),
		PartNumber:     c.Query("part_no"),
		HINTL:          c.Query("hintl"),
		IncludeDeleted: includeDeleted,
		Page:           page,
		PageSize:       pageSize,
	})
	if err != nil {
		writeEnvelopeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Envelope{Success: true, Data: res})
}

// HandleGet handles GET /api/template/:id
func (tr *TemplateRouter) HandleGet(c *gin.Context) {
	tpl, err := tr.ts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeEnvelopeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Envelope{Success: true, Data: tpl})
}

// HandleCreate handles POST /api/template.
// Accepts JSON with xml_content, or a multipart form with an optional "file" part.
func (tr *TemplateRouter) HandleCreate(c *gin.Context) {
	var (
		dto      model.CreateTemplateDTO
		filename string
		content  []byte
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if err := c.ShouldBind(&dto); err != nil {
			tr.badRequest(c, err)
			return
		}
		if fh, err := c.FormFile("file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				writeEnvelopeError(c, err)
				return
			}
			content, err = io.ReadAll(f)
			f.Close()
			if err != nil {
				writeEnvelopeError(c, fmt.Errorf("failed to read upload: %w", err))
				return
			}
			filename = fh.Filename
		}
	} else if err := c.ShouldBindJSON(&dto); err != nil {
		tr.badRequest(c, err)
		return
	}

	tpl, err := tr.ts.Create(c.Request.Context(), dto, filename, content)
	if err != nil {
		writeEnvelopeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: "Template created", Data: tpl})
}

// HandleUpdate handles PUT /api/template/:id
func (tr *TemplateRouter) HandleUpdate(c *gin.Context) {
	var dto model.UpdateTemplateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		tr.badRequest(c, err)
		return
	}
	tpl, err := tr.ts.Update(c.Request.Context(), c.Param("id"), dto)
	if err != nil {
		writeEnvelopeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Envelope{Success: true, Message: "Template updated", Data: tpl})
}

// HandleGetXML handles GET /api/template/:id/xml and returns the raw document.
func (tr *TemplateRouter) HandleGetXML(c *gin.Context) {
	data, err := tr.ts.XML(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeEnvelopeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", data)
}

type saveXMLRequest struct {
	XMLContent string `json:"xml_content" binding:"required"`
}

// HandleSaveXML handles PUT /api/template/:id/xml.
// The body is either raw XML or JSON {"xml_content": "..."}.
func (tr *TemplateRouter) HandleSaveXML(c *gin.Context) {
	var content []byte
	if c.ContentType() == gin.MIMEJSON {
		var req saveXMLRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			tr.badRequest(c, err)
			return
		}
		content = []byte(req.XMLContent)
	} else {
		raw, err := c.GetRawData()
		if err != nil {
			tr.badRequest(c, err)
			return
		}
		content = raw
	}

	tpl, err := tr.ts.SaveXML(c.Request.Context(), c.Param("id"), content)
	if err != nil {
		writeEnvelopeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Envelope{Success: true, Message: "Template XML saved", Data: tpl})
}

// HandleDelete handles DELETE /api/template/:id.
// A soft delete marks the template deleted; ?hard=true (superuser only) removes it.
func (tr *TemplateRouter) HandleDelete(c *gin.Context) {
	hard, err := boolQuery(c, "hard", false)
	if err != nil {
		tr.badRequest(c, err)
		return
	}
	if hard && !auth.FromGin(c).IsSuperuser() {
		c.JSON(http.StatusForbidden, Envelope{Success: false, Message: "only a superuser may permanently delete templates"})
		return
	}
	if err := tr.ts.Delete(c.Request.Context(), c.Param("id"), hard); err != nil {
		writeEnvelopeError(c, err)
		return
	}
	c.JSON(http.StatusOK, Envelope{Success: true, Message: "Template deleted"})
}
