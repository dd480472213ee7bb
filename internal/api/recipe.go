package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kitchenkin/recipes/backend/internal/formdiff"
	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/service"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

// RecipeHandler accepts recipe form submissions
type RecipeHandler struct {
	recipes service.IRecipeService
	limiter gin.HandlerFunc
}

// NewRecipeHandler creates a new recipe handler. limiter may be nil.
func NewRecipeHandler(recipes service.IRecipeService, limiter gin.HandlerFunc) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, limiter: limiter}
}

// RegisterRoutes registers the recipe routes
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	handlers := []gin.HandlerFunc{}
	if h.limiter != nil {
		handlers = append(handlers, h.limiter)
	}
	handlers = append(handlers, h.SubmitForm)
	router.PATCH("/recipes/:id/form", handlers...)
}

// SubmitForm applies an edit form: only the fields the form marked dirty
// are sent to the update
func (h *RecipeHandler) SubmitForm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// unknown recipes are reported as forbidden by the update itself
		id = uuid.Nil
	}

	var sub types.RecipeFormSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		_ = c.Error(models.NewValidationError("Invalid form submission", err))
		return
	}

	input, err := formdiff.Diff(id, sub.DirtyFields, sub.Values)
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}
