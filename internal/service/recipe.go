package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/observability"
	"github.com/kitchenkin/recipes/backend/internal/repository"
	"github.com/kitchenkin/recipes/backend/internal/types"
	"github.com/kitchenkin/recipes/backend/internal/validation"
)

// RecipeService creates, updates and deletes recipes and answers recipe queries
type RecipeService struct {
	recipes   repository.RecipeRepository
	guard     *Guard
	effects   *SideEffectCoordinator
	remover   ImageRemover
	validator *validation.RecipeValidator
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(recipes repository.RecipeRepository, effects *SideEffectCoordinator, remover ImageRemover) *RecipeService {
	return &RecipeService{
		recipes:   recipes,
		guard:     NewGuard(recipes),
		effects:   effects,
		remover:   remover,
		validator: validation.NewRecipeValidator(),
	}
}

// CreateRecipe stores a new recipe authored by the acting user
func (s *RecipeService) CreateRecipe(ctx context.Context, input *types.CreateRecipeInput) (recipe *models.Recipe, err error) {
	defer func() { recordMutation("create", err) }()

	userID, err := s.guard.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateCreate(input); err != nil {
		return nil, err
	}

	effects, err := s.effects.Resolve(ctx, SideEffectRequest{
		Image:           input.Image,
		DetectAllergens: true,
		Title:           input.Title,
		Ingredients:     input.Ingredients,
	})
	if err != nil {
		s.discardImage(ctx, effects)
		return nil, err
	}
	keys := ResolveIngredients(input.Ingredients)

	created := &models.Recipe{
		Title:        input.Title,
		Description:  input.Description,
		PrepTime:     input.PrepTime,
		CookTime:     input.CookTime,
		Servings:     input.Servings,
		Instructions: models.StringList(input.Instructions),
		Allergens:    models.AllergenList(effects.Allergens),
		Embedding:    RecipeEmbedding(input.Title, input.Description),
		CategoryID:   input.CategoryID,
		AuthorID:     userID,
	}

	err = s.recipes.Transaction(ctx, func(tx repository.RecipeTx) error {
		if err := requireCategory(ctx, tx, input.CategoryID); err != nil {
			return err
		}
		if err := tx.CreateRecipe(ctx, created); err != nil {
			return err
		}
		ingredients, err := tx.UpsertIngredients(ctx, keys)
		if err != nil {
			return err
		}
		if err := tx.LinkIngredients(ctx, created.ID, ingredients); err != nil {
			return err
		}
		if effects.Image != nil {
			effects.Image.RecipeID = created.ID
			return tx.CreateImage(ctx, effects.Image)
		}
		return nil
	})
	if err != nil {
		if effects.Image != nil {
			s.removeRemote(ctx, effects.Image.ContentID)
		}
		return nil, toServiceError(err)
	}

	log.Printf("[RecipeService] Created recipe %s for user %s", created.ID, userID)
	return s.GetRecipe(ctx, created.ID)
}

// UpdateRecipe applies the changed fields of input to a recipe the acting
// user authored. Changed ingredients replace the whole set; a changed image
// replaces or clears the current one.
func (s *RecipeService) UpdateRecipe(ctx context.Context, input *types.UpdateRecipeInput) (recipe *models.Recipe, err error) {
	defer func() { recordMutation("update", err) }()

	if _, err := s.guard.RequireAuthor(ctx, input.ID); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateUpdate(input); err != nil {
		return nil, err
	}

	var current *models.Recipe
	needsCurrent := (input.NeedsAllergenDetection() && !(input.Title.IsChanged() && input.Ingredients.IsChanged())) ||
		(input.Title.IsChanged() != input.Description.IsChanged())
	if needsCurrent {
		if current, err = s.recipes.FindByID(ctx, input.ID); err != nil {
			return nil, toServiceError(err)
		}
	}

	req := SideEffectRequest{DetectAllergens: input.NeedsAllergenDetection()}
	if img, ok := input.Image.Get(); ok {
		req.Image = img
	}
	if req.DetectAllergens {
		req.Title = pick(input.Title, func() string { return current.Title })
		req.Ingredients = pick(input.Ingredients, func() []types.IngredientInput { return ingredientInputs(current.Ingredients) })
	}

	effects, err := s.effects.Resolve(ctx, req)
	if err != nil {
		s.discardImage(ctx, effects)
		return nil, err
	}

	fields := scalarChanges(input)
	if req.DetectAllergens {
		fields["allergens"] = models.AllergenList(effects.Allergens)
	}
	if input.Title.IsChanged() || input.Description.IsChanged() {
		title := pick(input.Title, func() string { return current.Title })
		description := pick(input.Description, func() string { return current.Description })
		fields["embedding"] = RecipeEmbedding(title, description)
	}

	var replaced *models.Image
	err = s.recipes.Transaction(ctx, func(tx repository.RecipeTx) error {
		// The old image row goes first: a recipe holds at most one image.
		if input.Image.IsChanged() {
			old, err := tx.DeleteImage(ctx, input.ID)
			if err != nil {
				return err
			}
			replaced = old
		}
		if err := tx.UpdateFields(ctx, input.ID, fields); err != nil {
			return err
		}
		if categoryID, ok := input.CategoryID.Get(); ok {
			if err := requireCategory(ctx, tx, categoryID); err != nil {
				return err
			}
			if err := tx.SetCategory(ctx, input.ID, categoryID); err != nil {
				return err
			}
		}
		if lines, ok := input.Ingredients.Get(); ok {
			if err := tx.UnlinkIngredients(ctx, input.ID); err != nil {
				return err
			}
			ingredients, err := tx.UpsertIngredients(ctx, ResolveIngredients(lines))
			if err != nil {
				return err
			}
			if err := tx.LinkIngredients(ctx, input.ID, ingredients); err != nil {
				return err
			}
		}
		if effects.Image != nil {
			effects.Image.RecipeID = input.ID
			return tx.CreateImage(ctx, effects.Image)
		}
		return nil
	})
	if err != nil {
		if effects.Image != nil {
			s.removeRemote(ctx, effects.Image.ContentID)
		}
		return nil, toServiceError(err)
	}

	if replaced != nil && (effects.Image == nil || effects.Image.ContentID != replaced.ContentID) {
		s.removeRemote(ctx, replaced.ContentID)
	}

	log.Printf("[RecipeService] Updated recipe %s fields=%v", input.ID, input.ChangedFields())
	return s.GetRecipe(ctx, input.ID)
}

// DeleteRecipe removes a recipe the acting user authored and returns it as
// it was. Remote image cleanup runs alongside the row delete and its
// failure is only logged.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id uuid.UUID) (recipe *models.Recipe, err error) {
	defer func() { recordMutation("delete", err) }()

	if _, err := s.guard.RequireAuthor(ctx, id); err != nil {
		return nil, err
	}

	recipe, err = s.recipes.FindByID(ctx, id)
	if err != nil {
		return nil, toServiceError(err)
	}

	var g errgroup.Group
	if recipe.Image != nil {
		contentID := recipe.Image.ContentID
		g.Go(func() error {
			s.removeRemote(ctx, contentID)
			return nil
		})
	}
	g.Go(func() error {
		return s.recipes.Transaction(ctx, func(tx repository.RecipeTx) error {
			return tx.DeleteRecipe(ctx, id)
		})
	})
	if err := g.Wait(); err != nil {
		return nil, toServiceError(err)
	}

	log.Printf("[RecipeService] Deleted recipe %s", id)
	return recipe, nil
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		return nil, toServiceError(err)
	}
	return recipe, nil
}

// ListRecipes pages through recipes ordered by id
func (s *RecipeService) ListRecipes(ctx context.Context, opts repository.ListOptions) ([]*models.Recipe, error) {
	recipes, err := s.recipes.List(ctx, opts)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

// SearchRecipes matches query against titles and descriptions
func (s *RecipeService) SearchRecipes(ctx context.Context, query string, offset, limit int) ([]*models.Recipe, error) {
	vec := GenerateEmbedding(query)
	recipes, err := s.recipes.Search(ctx, repository.SearchOptions{
		Query:     query,
		Embedding: &vec,
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

// MyRecipes lists the acting user's recipes
func (s *RecipeService) MyRecipes(ctx context.Context, after *uuid.UUID, limit int) ([]*models.Recipe, error) {
	userID, err := s.guard.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	return s.ListRecipes(ctx, repository.ListOptions{AuthorID: &userID, After: after, Limit: limit})
}

// FavoriteRecipes lists the recipes the acting user marked as favorite
func (s *RecipeService) FavoriteRecipes(ctx context.Context, after *uuid.UUID, limit int) ([]*models.Recipe, error) {
	userID, err := s.guard.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	return s.ListRecipes(ctx, repository.ListOptions{FavoritedBy: &userID, After: after, Limit: limit})
}

// FavoriteRecipe marks a recipe as a favorite of the acting user
func (s *RecipeService) FavoriteRecipe(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	userID, err := s.guard.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	recipe, err := s.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.recipes.AddFavorite(ctx, userID, recipeID); err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipe, nil
}

// UnfavoriteRecipe removes a recipe from the acting user's favorites
func (s *RecipeService) UnfavoriteRecipe(ctx context.Context, recipeID uuid.UUID) (*models.Recipe, error) {
	userID, err := s.guard.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	recipe, err := s.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.recipes.RemoveFavorite(ctx, userID, recipeID); err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipe, nil
}

// discardImage removes an image that was ingested for a mutation that then failed
func (s *RecipeService) discardImage(ctx context.Context, effects *SideEffects) {
	if effects != nil && effects.Image != nil {
		s.removeRemote(ctx, effects.Image.ContentID)
	}
}

func (s *RecipeService) removeRemote(ctx context.Context, contentID string) {
	if s.remover == nil || contentID == "" {
		return
	}
	start := time.Now()
	err := s.remover.Remove(ctx, contentID)
	observability.ObserveCollaborator("image_delete", start, err)
	if err != nil {
		observability.RemoteCleanupFailures.Inc()
		log.Printf("[RecipeService] Failed to delete remote image %s: %v", contentID, err)
	}
}

func requireCategory(ctx context.Context, tx repository.RecipeTx, id uuid.UUID) error {
	ok, err := tx.CategoryExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewValidationError("categoryId does not reference an existing category", nil)
	}
	return nil
}

// scalarChanges maps the changed scalar fields onto their column names
func scalarChanges(in *types.UpdateRecipeInput) map[string]interface{} {
	fields := make(map[string]interface{})
	if v, ok := in.Title.Get(); ok {
		fields["title"] = v
	}
	if v, ok := in.Description.Get(); ok {
		fields["description"] = v
	}
	if v, ok := in.PrepTime.Get(); ok {
		fields["prep_time"] = v
	}
	if v, ok := in.CookTime.Get(); ok {
		fields["cook_time"] = v
	}
	if v, ok := in.Servings.Get(); ok {
		fields["servings"] = v
	}
	if v, ok := in.Instructions.Get(); ok {
		fields["instructions"] = models.StringList(v)
	}
	return fields
}

func pick[T any](p types.Patch[T], fallback func() T) T {
	if v, ok := p.Get(); ok {
		return v
	}
	return fallback()
}

func ingredientInputs(ingredients []models.Ingredient) []types.IngredientInput {
	out := make([]types.IngredientInput, 0, len(ingredients))
	for _, ing := range ingredients {
		out = append(out, types.IngredientInput{Name: ing.Name, Amount: ing.Amount, Unit: ing.Unit})
	}
	return out
}

func toServiceError(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewNotFoundError("Recipe")
	}
	return models.NewInternalError(err)
}

func recordMutation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(models.KindOf(err))
	}
	observability.RecipeMutations.WithLabelValues(operation, outcome).Inc()
}
