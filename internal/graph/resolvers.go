package graph

import (
	"encoding/base64"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"

	"github.com/kitchenkin/recipes/backend/internal/models"
	"github.com/kitchenkin/recipes/backend/internal/repository"
	"github.com/kitchenkin/recipes/backend/internal/service"
	"github.com/kitchenkin/recipes/backend/internal/types"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Resolver answers GraphQL fields from the service layer
type Resolver struct {
	recipes    service.IRecipeService
	categories service.ICategoryService
	auth       service.IAuthService
}

// resolverError carries an AppError's public message and code to the client
// without the wrapped cause
type resolverError struct {
	app *models.AppError
}

func (e *resolverError) Error() string {
	return e.app.Message
}

func (e *resolverError) Extensions() map[string]interface{} {
	return e.app.Extensions()
}

func (e *resolverError) Unwrap() error {
	return e.app
}

func publicError(err error) error {
	app := models.AsAppError(err)
	if app.Code == models.KindInternal {
		log.Printf("[GraphQL] Internal error: %v", err)
	}
	return &resolverError{app: app}
}

// Queries

func (r *Resolver) listRecipes(p graphql.ResolveParams) (interface{}, error) {
	first, after, err := pageArgsFrom(p.Args)
	if err != nil {
		return nil, publicError(err)
	}
	recipes, err := r.recipes.ListRecipes(p.Context, repository.ListOptions{After: after, Limit: first + 1})
	if err != nil {
		return nil, publicError(err)
	}
	return idConnection(recipes, first), nil
}

func (r *Resolver) recipe(p graphql.ResolveParams) (interface{}, error) {
	id, err := idArg(p.Args, "id")
	if err != nil {
		return nil, publicError(err)
	}
	recipe, err := r.recipes.GetRecipe(p.Context, id)
	if err != nil {
		if models.KindOf(err) == models.KindNotFound {
			return nil, nil
		}
		return nil, publicError(err)
	}
	return recipe, nil
}

func (r *Resolver) searchRecipes(p graphql.ResolveParams) (interface{}, error) {
	first, err := pageSize(p.Args)
	if err != nil {
		return nil, publicError(err)
	}
	offset := 0
	if after, ok := p.Args["after"].(string); ok && after != "" {
		if offset, err = decodeOffset(after); err != nil {
			return nil, publicError(err)
		}
	}
	query, _ := p.Args["query"].(string)

	recipes, err := r.recipes.SearchRecipes(p.Context, strings.TrimSpace(query), offset, first+1)
	if err != nil {
		return nil, publicError(err)
	}

	hasNext := len(recipes) > first
	if hasNext {
		recipes = recipes[:first]
	}
	edges := make([]map[string]interface{}, len(recipes))
	for i, recipe := range recipes {
		edges[i] = map[string]interface{}{"cursor": encodeOffset(offset + i + 1), "node": recipe}
	}
	return connection(edges, hasNext), nil
}

func (r *Resolver) myRecipes(p graphql.ResolveParams) (interface{}, error) {
	first, after, err := pageArgsFrom(p.Args)
	if err != nil {
		return nil, publicError(err)
	}
	recipes, err := r.recipes.MyRecipes(p.Context, after, first+1)
	if err != nil {
		return nil, publicError(err)
	}
	return idConnection(recipes, first), nil
}

func (r *Resolver) favoriteRecipes(p graphql.ResolveParams) (interface{}, error) {
	first, after, err := pageArgsFrom(p.Args)
	if err != nil {
		return nil, publicError(err)
	}
	recipes, err := r.recipes.FavoriteRecipes(p.Context, after, first+1)
	if err != nil {
		return nil, publicError(err)
	}
	return idConnection(recipes, first), nil
}

func (r *Resolver) listCategories(p graphql.ResolveParams) (interface{}, error) {
	categories, err := r.categories.ListCategories(p.Context)
	if err != nil {
		return nil, publicError(err)
	}
	return categories, nil
}

func (r *Resolver) category(p graphql.ResolveParams) (interface{}, error) {
	id, err := idArg(p.Args, "id")
	if err != nil {
		return nil, publicError(err)
	}
	category, err := r.categories.GetCategory(p.Context, id)
	if err != nil {
		if models.KindOf(err) == models.KindNotFound {
			return nil, nil
		}
		return nil, publicError(err)
	}
	return category, nil
}

func (r *Resolver) categoryRecipes(p graphql.ResolveParams) (interface{}, error) {
	category, ok := p.Source.(*models.Category)
	if !ok {
		return nil, nil
	}
	first, after, err := pageArgsFrom(p.Args)
	if err != nil {
		return nil, publicError(err)
	}
	recipes, err := r.recipes.ListRecipes(p.Context, repository.ListOptions{
		After:      after,
		Limit:      first + 1,
		CategoryID: &category.ID,
	})
	if err != nil {
		return nil, publicError(err)
	}
	return idConnection(recipes, first), nil
}

func (r *Resolver) me(p graphql.ResolveParams) (interface{}, error) {
	if types.IdentityFromContext(p.Context) == nil {
		return nil, nil
	}
	user, err := r.auth.CurrentUser(p.Context)
	if err != nil {
		return nil, publicError(err)
	}
	return user, nil
}

// userEmail is only visible to the user it belongs to
func (r *Resolver) userEmail(p graphql.ResolveParams) (interface{}, error) {
	user, ok := p.Source.(*models.User)
	if !ok {
		return nil, nil
	}
	identity := types.IdentityFromContext(p.Context)
	if identity == nil || identity.ID != user.ID {
		return nil, nil
	}
	return user.Email, nil
}

// Mutations

func (r *Resolver) createRecipe(p graphql.ResolveParams) (interface{}, error) {
	data, _ := p.Args["data"].(map[string]interface{})
	recipe, err := r.recipes.CreateRecipe(p.Context, createInputFrom(data))
	if err != nil {
		return nil, publicError(err)
	}
	return recipe, nil
}

func (r *Resolver) updateRecipe(p graphql.ResolveParams) (interface{}, error) {
	data, _ := p.Args["data"].(map[string]interface{})
	input, err := updateInputFrom(data)
	if err != nil {
		return nil, publicError(err)
	}
	recipe, err := r.recipes.UpdateRecipe(p.Context, input)
	if err != nil {
		return nil, publicError(err)
	}
	return recipe, nil
}

func (r *Resolver) deleteRecipe(p graphql.ResolveParams) (interface{}, error) {
	recipe, err := r.recipes.DeleteRecipe(p.Context, lenientID(p.Args["id"]))
	if err != nil {
		return nil, publicError(err)
	}
	return recipe, nil
}

func (r *Resolver) favoriteRecipe(p graphql.ResolveParams) (interface{}, error) {
	recipe, err := r.recipes.FavoriteRecipe(p.Context, lenientID(p.Args["id"]))
	if err != nil {
		return nil, publicError(err)
	}
	return recipe, nil
}

func (r *Resolver) unfavoriteRecipe(p graphql.ResolveParams) (interface{}, error) {
	recipe, err := r.recipes.UnfavoriteRecipe(p.Context, lenientID(p.Args["id"]))
	if err != nil {
		return nil, publicError(err)
	}
	return recipe, nil
}

// Input conversion

func createInputFrom(data map[string]interface{}) *types.CreateRecipeInput {
	in := &types.CreateRecipeInput{
		Title:        stringValue(data["title"]),
		Description:  stringValue(data["description"]),
		PrepTime:     stringValue(data["prepTime"]),
		CookTime:     stringValue(data["cookTime"]),
		Servings:     intValue(data["servings"]),
		CategoryID:   lenientID(data["categoryId"]),
		Instructions: stringList(data["instructions"]),
		Ingredients:  ingredientList(data["ingredients"]),
	}
	if img, ok := data["image"].(map[string]interface{}); ok {
		in.Image = imageValue(img)
	}
	return in
}

func updateInputFrom(data map[string]interface{}) (*types.UpdateRecipeInput, error) {
	in := &types.UpdateRecipeInput{ID: lenientID(data["id"])}

	if v, ok := present(data, "title"); ok {
		in.Title = types.Changed(stringValue(v))
	}
	if v, ok := present(data, "description"); ok {
		in.Description = types.Changed(stringValue(v))
	}
	if v, ok := present(data, "prepTime"); ok {
		in.PrepTime = types.Changed(stringValue(v))
	}
	if v, ok := present(data, "cookTime"); ok {
		in.CookTime = types.Changed(stringValue(v))
	}
	if v, ok := present(data, "servings"); ok {
		in.Servings = types.Changed(intValue(v))
	}
	if v, ok := present(data, "categoryId"); ok {
		in.CategoryID = types.Changed(lenientID(v))
	}
	if v, ok := present(data, "instructions"); ok {
		in.Instructions = types.Changed(stringList(v))
	}
	if v, ok := present(data, "ingredients"); ok {
		in.Ingredients = types.Changed(ingredientList(v))
	}

	clearImage, _ := data["clearImage"].(bool)
	img, hasImage := data["image"].(map[string]interface{})
	switch {
	case clearImage && hasImage:
		return nil, models.NewValidationError("image and clearImage cannot be combined", nil)
	case clearImage:
		in.Image = types.Changed[*types.ImageInput](nil)
	case hasImage:
		in.Image = types.Changed(imageValue(img))
	}
	return in, nil
}

func present(data map[string]interface{}, key string) (interface{}, bool) {
	v, ok := data[key]
	return v, ok && v != nil
}

func idArg(args map[string]interface{}, key string) (uuid.UUID, error) {
	raw, _ := args[key].(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, models.NewValidationError(fmt.Sprintf("%s must be a valid id", key), err)
	}
	return id, nil
}

// lenientID maps malformed ids to uuid.Nil so mutations still run their
// authentication and authorization checks before rejecting the input
func lenientID(v interface{}) uuid.UUID {
	id, err := uuid.Parse(stringValue(v))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

func intValue(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}

func stringList(v interface{}) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, stringValue(item))
	}
	return out
}

func ingredientList(v interface{}) []types.IngredientInput {
	items, _ := v.([]interface{})
	out := make([]types.IngredientInput, 0, len(items))
	for _, item := range items {
		m, _ := item.(map[string]interface{})
		out = append(out, types.IngredientInput{
			Name:   stringValue(m["name"]),
			Amount: stringValue(m["amount"]),
			Unit:   stringValue(m["unit"]),
		})
	}
	return out
}

func imageValue(m map[string]interface{}) *types.ImageInput {
	return &types.ImageInput{
		FileName: stringValue(m["fileName"]),
		FileType: stringValue(m["fileType"]),
		Encoded:  stringValue(m["encoded"]),
	}
}

// Paging

func pageSize(args map[string]interface{}) (int, error) {
	first := defaultPageSize
	if v, ok := args["first"]; ok && v != nil {
		first = intValue(v)
	}
	if first < 1 {
		return 0, models.NewValidationError("first must be greater than 0", nil)
	}
	if first > maxPageSize {
		first = maxPageSize
	}
	return first, nil
}

func pageArgsFrom(args map[string]interface{}) (int, *uuid.UUID, error) {
	first, err := pageSize(args)
	if err != nil {
		return 0, nil, err
	}
	after, ok := args["after"].(string)
	if !ok || after == "" {
		return first, nil, nil
	}
	id, err := uuid.Parse(after)
	if err != nil {
		return 0, nil, models.NewValidationError("after is not a valid cursor", err)
	}
	return first, &id, nil
}

// idConnection pages recipes ordered by id, using the id as cursor. The
// caller fetches one extra row to learn whether another page exists.
func idConnection(recipes []*models.Recipe, first int) map[string]interface{} {
	hasNext := len(recipes) > first
	if hasNext {
		recipes = recipes[:first]
	}
	edges := make([]map[string]interface{}, len(recipes))
	for i, recipe := range recipes {
		edges[i] = map[string]interface{}{"cursor": recipe.ID.String(), "node": recipe}
	}
	return connection(edges, hasNext)
}

func connection(edges []map[string]interface{}, hasNext bool) map[string]interface{} {
	var endCursor interface{}
	if len(edges) > 0 {
		endCursor = edges[len(edges)-1]["cursor"]
	}
	return map[string]interface{}{
		"edges": edges,
		"pageInfo": map[string]interface{}{
			"hasNextPage": hasNext,
			"endCursor":   endCursor,
		},
	}
}

func encodeOffset(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte("offset:" + strconv.Itoa(offset)))
}

func decodeOffset(cursor string) (int, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err == nil {
		if n, convErr := strconv.Atoi(strings.TrimPrefix(string(raw), "offset:")); convErr == nil && n >= 0 {
			return n, nil
		}
	}
	return 0, models.NewValidationError("after is not a valid cursor", err)
}

// Field accessors

func recipeField(get func(*models.Recipe) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if r, ok := p.Source.(*models.Recipe); ok {
			return get(r), nil
		}
		return nil, nil
	}
}

func categoryField(get func(*models.Category) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if c, ok := p.Source.(*models.Category); ok {
			return get(c), nil
		}
		return nil, nil
	}
}

func userField(get func(*models.User) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if u, ok := p.Source.(*models.User); ok {
			return get(u), nil
		}
		return nil, nil
	}
}

func imageField(get func(*models.Image) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if i, ok := p.Source.(*models.Image); ok {
			return get(i), nil
		}
		return nil, nil
	}
}

func ingredientField(get func(*models.Ingredient) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if i, ok := p.Source.(*models.Ingredient); ok {
			return get(i), nil
		}
		return nil, nil
	}
}
