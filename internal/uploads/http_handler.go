package uploads

import (
	"errors"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// HTTPHandler serves stored files to the PDF viewer and the XML editor.
type HTTPHandler struct {
	Service *UploadService
}

func NewHTTPHandler(service *UploadService) *HTTPHandler {
	return &HTTPHandler{Service: service}
}

// RegisterRoutes mounts GET /files/*key on rg.
func (h *HTTPHandler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/files/*key", h.Download)
}

// Download streams the file named by the wildcard key inline.
func (h *HTTPHandler) Download(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	reader, contentType, err := h.Service.Download(c.Request.Context(), key)
	switch {
	case errors.Is(err, ErrInvalidKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file key"})
		return
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	case err != nil:
		slog.ErrorContext(c.Request.Context(), "download failed", "key", key, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "download failed"})
		return
	}
	defer reader.Close()

	headers := map[string]string{
		"Content-Disposition": `inline; filename="` + path.Base(key) + `"`,
		"Cache-Control":       "private, max-age=300",
	}
	c.DataFromReader(http.StatusOK, -1, contentType, reader, headers)
}
