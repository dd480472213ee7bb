package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kitchenkin/recipes/backend/internal/models"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ErrorHandler turns errors attached with c.Error into a JSON response and
// recovers panics as 500s
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[ErrorHandler] Panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, rec)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error: "Internal server error",
					Code:  string(models.KindInternal),
				})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := models.AsAppError(c.Errors.Last().Err)
		if appErr.Code == models.KindInternal {
			log.Printf("[ErrorHandler] %s %s: %v", c.Request.Method, c.Request.URL.Path, c.Errors.Last().Err)
		}
		c.JSON(appErr.HTTPStatus(), ErrorResponse{Error: appErr.Message, Code: string(appErr.Code)})
	}
}
