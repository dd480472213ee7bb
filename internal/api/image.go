package api

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/service"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

// MaxImageUploadBytes bounds the multipart image field
const MaxImageUploadBytes = 10 << 20

// ImageHandler accepts picture uploads from the recipe form ahead of saving
type ImageHandler struct {
	images  service.IImageService
	limiter gin.HandlerFunc
}

// NewImageHandler creates a new image handler. limiter may be nil.
func NewImageHandler(images service.IImageService, limiter gin.HandlerFunc) *ImageHandler {
	return &ImageHandler{images: images, limiter: limiter}
}

// RegisterRoutes registers the image routes
func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	handlers := []gin.HandlerFunc{}
	if h.limiter != nil {
		handlers = append(handlers, h.limiter)
	}
	handlers = append(handlers, h.Upload)
	router.POST("/image-upload", handlers...)
}

// Upload reads the multipart "image" field and returns the stored renditions
func (h *ImageHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxImageUploadBytes+1<<20)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, "No image provided")
		return
	}
	defer file.Close()

	if header.Size > MaxImageUploadBytes {
		_ = c.Error(models.NewValidationError(fmt.Sprintf("Image must be at most %dMB", MaxImageUploadBytes>>20), nil))
		return
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		_ = c.Error(models.NewValidationError("Could not read the uploaded image", err))
		return
	}

	renditions, err := h.images.Upload(c.Request.Context(), &types.ImageInput{
		FileName: header.Filename,
		FileType: header.Header.Get("Content-Type"),
		Encoded:  base64.StdEncoding.EncodeToString(raw),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, renditions)
}
